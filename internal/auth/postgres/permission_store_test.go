package postgres_test

import (
	"context"
	"errors"
	"regexp"

	"github.com/DATA-DOG/go-sqlmock"
	authPostgres "github.com/frahmantamala/hospital-admin/internal/auth/postgres"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("PermissionStore against postgres placeholders", func() {
	var (
		mock  sqlmock.Sqlmock
		store interface {
			HasDirectPermission(ctx context.Context, userID int64, permission string) (bool, error)
			HasRolePermission(ctx context.Context, roleName string, permission string) (bool, error)
		}
	)

	BeforeEach(func() {
		db, m, err := sqlmock.New()
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(db.Close)

		mock = m
		store = authPostgres.NewPermissionStore(sqlx.NewDb(db, "pgx"))
	})

	AfterEach(func() {
		Expect(mock.ExpectationsWereMet()).To(Succeed())
	})

	It("should bind user id and name as dollar placeholders", func() {
		mock.ExpectQuery(regexp.QuoteMeta("WHERE pu.user_id = $1 AND p.name = $2")).
			WithArgs(int64(7), "manage_permissions").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := store.HasDirectPermission(context.Background(), 7, "manage_permissions")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
	})

	It("should report a missing role grant", func() {
		mock.ExpectQuery(regexp.QuoteMeta("WHERE pr.role = $1 AND p.name = $2")).
			WithArgs("nurse", "manage_permissions").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		ok, err := store.HasRolePermission(context.Background(), "nurse", "manage_permissions")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("should wrap query failures", func() {
		mock.ExpectQuery("permission_role").WillReturnError(errors.New("connection reset"))

		_, err := store.HasRolePermission(context.Background(), "doctor", "manage_permissions")
		Expect(err).To(MatchError(ContainSubstring("role permission query: connection reset")))
	})
})
