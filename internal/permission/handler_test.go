package permission_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/auth"
	authPostgres "github.com/frahmantamala/hospital-admin/internal/auth/postgres"
	permissionDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/permission"
	userDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
	"github.com/frahmantamala/hospital-admin/internal/permission"
	permissionPostgres "github.com/frahmantamala/hospital-admin/internal/permission/postgres"
	"github.com/frahmantamala/hospital-admin/internal/transport"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var _ = Describe("Permission Handler Integration", func() {
	var (
		db      *gorm.DB
		router  chi.Router
		current *internal.Actor
		admin   *userDatamodel.User
		doctor  *userDatamodel.User
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	errorBody := func(w *httptest.ResponseRecorder) map[string]interface{} {
		var body struct {
			Error map[string]interface{} `json:"error"`
		}
		Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
		return body.Error
	}

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		sqlDB.SetMaxOpenConns(1)

		Expect(db.AutoMigrate(
			&userDatamodel.User{},
			&permissionDatamodel.Permission{},
			&permissionDatamodel.RolePermission{},
			&permissionDatamodel.UserPermission{},
		)).To(Succeed())

		admin = &userDatamodel.User{Name: "Ada", Email: "ada@hospital.test", Password: "x", Role: "admin", HospitalID: "H1"}
		doctor = &userDatamodel.User{Name: "Dre", Email: "dre@hospital.test", Password: "x", Role: "doctor", HospitalID: "H2"}
		Expect(db.Create(admin).Error).To(Succeed())
		Expect(db.Create(doctor).Error).To(Succeed())

		manage := &permissionDatamodel.Permission{Name: auth.ManagePermissions}
		Expect(db.Create(manage).Error).To(Succeed())
		Expect(db.Create(&permissionDatamodel.RolePermission{PermissionID: manage.ID, Role: "admin"}).Error).To(Succeed())

		store := authPostgres.NewPermissionStore(sqlx.NewDb(sqlDB, "sqlite3"))
		policy := auth.NewPermissionPolicy(auth.NewPermissionChecker(store, testLogger), auth.ManagePermissions, testLogger)
		service := permission.NewService(permissionPostgres.NewPermissionRepository(db), policy, nil, testLogger)
		handler := permission.NewHandler(&transport.BaseHandler{Logger: testLogger}, service)

		current = &internal.Actor{ID: admin.ID, Email: admin.Email, Role: role.Admin}

		r := chi.NewRouter()
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if current != nil {
					req = req.WithContext(internal.ContextWithActor(req.Context(), current))
				}
				next.ServeHTTP(w, req)
			})
		})
		r.Post("/admin/permissions", handler.CreatePermission)
		r.Get("/admin/permissions", handler.ListPermissions)
		r.Delete("/admin/permissions/{id}", handler.DeletePermission)
		r.Post("/admin/permissions/assign", handler.AssignToRole)
		r.Delete("/admin/permissions/revoke", handler.RevokeFromRole)
		r.Get("/admin/roles/{role}/permissions", handler.ListRolePermissions)
		r.Post("/admin/permissions/users/assign", handler.AssignToUser)
		r.Delete("/admin/permissions/users/revoke", handler.RevokeFromUser)
		router = r
	})

	It("should create a permission and answer 201", func() {
		w := do(http.MethodPost, "/admin/permissions", map[string]string{"name": "edit_users", "description": "Edit user details"})

		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

		var resp permission.PermissionResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Message).To(Equal("Permission created successfully."))
		Expect(resp.Permission.Name).To(Equal("edit_users"))
	})

	It("should answer 400 for a taken name", func() {
		w := do(http.MethodPost, "/admin/permissions", map[string]string{"name": auth.ManagePermissions})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("name has already been taken"))
	})

	It("should answer 403 for an actor without manage_permissions", func() {
		current = &internal.Actor{ID: doctor.ID, Email: doctor.Email, Role: role.Doctor}
		w := do(http.MethodGet, "/admin/permissions", nil)

		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(errorBody(w)["message"]).To(Equal("Unauthorized. You lack permission to manage permissions."))
	})

	It("should answer 403 when no actor is present", func() {
		current = nil
		w := do(http.MethodPost, "/admin/permissions", map[string]string{"name": "x"})
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should assign and revoke a role binding", func() {
		w := do(http.MethodPost, "/admin/permissions", map[string]string{"name": "view_reports"})
		var created permission.PermissionResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())
		binding := map[string]interface{}{"permission_id": created.Permission.ID, "role": "doctor"}

		w = do(http.MethodPost, "/admin/permissions/assign", binding)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Permission 'view_reports' assigned to role 'doctor' successfully."))

		w = do(http.MethodPost, "/admin/permissions/assign", binding)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(errorBody(w)["message"]).To(Equal("Permission is already assigned to this role."))

		w = do(http.MethodGet, "/admin/roles/doctor/permissions", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("view_reports"))

		w = do(http.MethodDelete, "/admin/permissions/revoke", binding)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("Permission 'view_reports' revoked from role 'doctor' successfully."))

		w = do(http.MethodDelete, "/admin/permissions/revoke", binding)
		Expect(w.Code).To(Equal(http.StatusNotFound))
	})

	It("should let a direct grant unlock management for a non-admin", func() {
		manage := &permissionDatamodel.Permission{}
		Expect(db.Where("name = ?", auth.ManagePermissions).First(manage).Error).To(Succeed())

		w := do(http.MethodPost, "/admin/permissions/users/assign", map[string]interface{}{"permission_id": manage.ID, "user_id": doctor.ID})
		Expect(w.Code).To(Equal(http.StatusOK))

		current = &internal.Actor{ID: doctor.ID, Email: doctor.Email, Role: role.Doctor}
		w = do(http.MethodGet, "/admin/permissions", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		current = &internal.Actor{ID: admin.ID, Email: admin.Email, Role: role.Admin}
		w = do(http.MethodDelete, "/admin/permissions/users/revoke", map[string]interface{}{"permission_id": manage.ID, "user_id": doctor.ID})
		Expect(w.Code).To(Equal(http.StatusOK))

		current = &internal.Actor{ID: doctor.ID, Email: doctor.Email, Role: role.Doctor}
		w = do(http.MethodGet, "/admin/permissions", nil)
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should answer 404 for an unknown permission id", func() {
		w := do(http.MethodPost, "/admin/permissions/assign", map[string]interface{}{"permission_id": 999, "role": "doctor"})
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(errorBody(w)["message"]).To(Equal("Permission not found."))
	})

	It("should answer 400 for a role outside the enumeration", func() {
		w := do(http.MethodPost, "/admin/permissions/assign", map[string]interface{}{"permission_id": 1, "role": "janitor"})
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_ROLE"))
	})

	It("should delete a permission by id", func() {
		w := do(http.MethodPost, "/admin/permissions", map[string]string{"name": "temp"})
		var created permission.PermissionResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &created)).To(Succeed())

		w = do(http.MethodDelete, "/admin/permissions/"+strconv.FormatInt(created.Permission.ID, 10), nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		w = do(http.MethodDelete, "/admin/permissions/"+strconv.FormatInt(created.Permission.ID, 10), nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))

		w = do(http.MethodDelete, "/admin/permissions/abc", nil)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})
})
