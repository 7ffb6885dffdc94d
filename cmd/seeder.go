package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/frahmantamala/hospital-admin/internal/auth"
	permissionDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/permission"
	userDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
	"github.com/frahmantamala/hospital-admin/internal/user"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	adminEmail    string
	adminName     string
	adminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with the bootstrap admin",
	Long: `Create the manage_permissions permission, bind it to the admin role and create the
first admin account. Safe to run more than once.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlxDB.Close()

		s := &seeder{
			db:     db,
			hasher: auth.NewBcryptHasher(cfg.Security.BCryptCost),
			now:    time.Now,
			out:    func(format string, args ...any) { fmt.Printf(format+"\n", args...) },
		}
		opts := seedOptions{
			Clear:         clearData,
			Samples:       seedSamples,
			AdminEmail:    adminEmail,
			AdminName:     adminName,
			AdminPassword: adminPassword,
		}
		if err := s.Run(cmd.Context(), opts); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
	},
}

type seedOptions struct {
	Clear         bool
	Samples       bool
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

type seeder struct {
	db     *gorm.DB
	hasher *auth.BcryptHasher
	now    func() time.Time
	out    func(format string, args ...any)
}

func (s *seeder) Run(ctx context.Context, opts seedOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	db := s.db.WithContext(ctx)

	return db.Transaction(func(tx *gorm.DB) error {
		if opts.Clear {
			if err := clearTables(tx); err != nil {
				return err
			}
			s.out("cleared users, permissions and bindings")
		}

		perm, err := s.ensurePermission(tx, auth.ManagePermissions, "Create, delete, assign and revoke permissions")
		if err != nil {
			return err
		}
		if err := s.ensureRoleBinding(tx, perm, role.Admin); err != nil {
			return err
		}

		if _, err := s.ensureUser(tx, opts.AdminName, opts.AdminEmail, opts.AdminPassword, role.Admin); err != nil {
			return err
		}

		if !opts.Samples {
			return nil
		}
		for _, r := range role.Operational() {
			email := r.String() + "@hospital.test"
			name := "Sample " + strings.ToUpper(r.String()[:1]) + r.String()[1:]
			if _, err := s.ensureUser(tx, name, email, opts.AdminPassword, r); err != nil {
				return err
			}
		}
		return nil
	})
}

func clearTables(tx *gorm.DB) error {
	// bindings first, they reference both permissions and users
	models := []interface{}{
		&permissionDatamodel.UserPermission{},
		&permissionDatamodel.RolePermission{},
		&permissionDatamodel.Permission{},
		&userDatamodel.User{},
	}
	for _, m := range models {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return fmt.Errorf("clear %T: %w", m, err)
		}
	}
	return nil
}

func (s *seeder) ensurePermission(tx *gorm.DB, name, description string) (*permissionDatamodel.Permission, error) {
	var perm permissionDatamodel.Permission
	result := tx.Where(permissionDatamodel.Permission{Name: name}).
		Attrs(permissionDatamodel.Permission{Description: &description}).
		FirstOrCreate(&perm)
	if result.Error != nil {
		return nil, fmt.Errorf("ensure permission %s: %w", name, result.Error)
	}
	if result.RowsAffected > 0 {
		s.out("seeded permission: %s", name)
	}
	return &perm, nil
}

func (s *seeder) ensureRoleBinding(tx *gorm.DB, perm *permissionDatamodel.Permission, r role.Role) error {
	var binding permissionDatamodel.RolePermission
	result := tx.Where(permissionDatamodel.RolePermission{PermissionID: perm.ID, Role: r.String()}).
		FirstOrCreate(&binding)
	if result.Error != nil {
		return fmt.Errorf("bind %s to %s: %w", perm.Name, r, result.Error)
	}
	if result.RowsAffected > 0 {
		s.out("granted %s to role %s", perm.Name, r)
	}
	return nil
}

// ensureUser leaves an existing account untouched, password included.
func (s *seeder) ensureUser(tx *gorm.DB, name, email, password string, r role.Role) (*userDatamodel.User, error) {
	var existing userDatamodel.User
	err := tx.Where("email = ?", email).Limit(1).Find(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", email, err)
	}
	if existing.ID != 0 {
		s.out("%s user already exists: %s", r, email)
		return &existing, nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password for %s: %w", email, err)
	}

	now := s.now()
	u := user.NewUser(name, email, r, user.NewHospitalID(now))
	u.EmailVerifiedAt = &now

	row := user.ToDataModel(u, hash)
	if err := tx.Create(row).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	s.out("seeded %s user: %s", r, email)
	return row, nil
}

func init() {
	seedCmd.Flags().StringVar(&adminEmail, "admin-email", "admin@hospital.test", "Email of the bootstrap admin")
	seedCmd.Flags().StringVar(&adminName, "admin-name", "Hospital Admin", "Name of the bootstrap admin")
	seedCmd.Flags().StringVar(&adminPassword, "admin-password", "password", "Password for seeded accounts")
}
