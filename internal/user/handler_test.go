package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/auth"
	permissionDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/permission"
	userDatamodel "github.com/frahmantamala/hospital-admin/internal/core/datamodel/user"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
	"github.com/frahmantamala/hospital-admin/internal/user"
	userPostgres "github.com/frahmantamala/hospital-admin/internal/user/postgres"
	"github.com/frahmantamala/hospital-admin/internal/verification"
	verificationPostgres "github.com/frahmantamala/hospital-admin/internal/verification/postgres"
	"github.com/frahmantamala/hospital-admin/pkg/mailer"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// outbox captures what the log mail driver would have written.
type outbox struct {
	bodies map[string]string
}

func (o *outbox) InfoContext(_ context.Context, _ string, args ...any) {
	var to, body string
	for i := 0; i+1 < len(args); i += 2 {
		switch args[i] {
		case "to":
			to, _ = args[i+1].(string)
		case "body":
			body, _ = args[i+1].(string)
		}
	}
	o.bodies[to] = body
}

var _ = Describe("User Handler Integration", func() {
	var (
		db      *gorm.DB
		router  chi.Router
		mail    *outbox
		current *internal.Actor
		admin   *userDatamodel.User
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
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
		Expect(db.AutoMigrate(&userDatamodel.User{}, &permissionDatamodel.Permission{}, &permissionDatamodel.UserPermission{})).To(Succeed())

		admin = &userDatamodel.User{Name: "Ada", Email: "ada@hospital.test", Password: "x", Role: "admin", HospitalID: "H1"}
		Expect(db.Create(admin).Error).To(Succeed())
		current = &internal.Actor{ID: admin.ID, Email: admin.Email, Role: role.Admin}

		mail = &outbox{bodies: map[string]string{}}
		dispatcher := verification.NewDispatcher(verificationPostgres.NewVerificationRepository(db), mailer.NewLogSender(mail), 0, testLogger)
		service := user.NewService(
			userPostgres.NewUserRepository(db),
			auth.NewRolePolicy(testLogger, role.Admin),
			auth.NewBcryptHasher(bcrypt.MinCost),
			dispatcher,
			nil,
			testLogger,
		)
		handler := user.NewHandler(service)
		verifyHandler := verification.NewHandler(dispatcher)

		r := chi.NewRouter()
		r.Post("/auth/verify-otp", verifyHandler.VerifyOTP)
		r.Group(func(r chi.Router) {
			r.Use(func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
					next.ServeHTTP(w, req.WithContext(internal.ContextWithActor(req.Context(), current)))
				})
			})
			r.Post("/admin/users", handler.AddUser)
			r.Get("/admin/users/{role}", handler.ListUsersByRole)
			r.Delete("/admin/users/{id}", handler.DeleteUser)
		})
		router = r
	})

	It("should add a user, mail the code and accept it", func() {
		w := do(http.MethodPost, "/admin/users", map[string]string{
			"name": "Dr. Grey", "email": "grey@hospital.test", "password": "secret1", "role": "doctor",
		})
		Expect(w.Code).To(Equal(http.StatusCreated))
		Expect(w.Body.String()).NotTo(ContainSubstring("password"))
		Expect(w.Body.String()).NotTo(ContainSubstring("otp"))

		var resp user.UserResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Message).To(Equal("User added successfully. OTP sent to the user's email."))
		Expect(resp.User.HospitalID).To(HavePrefix("H"))

		body := mail.bodies["grey@hospital.test"]
		Expect(body).To(MatchRegexp(`^Your OTP is \d{4}$`))
		code := strings.TrimPrefix(body, "Your OTP is ")

		w = do(http.MethodPost, "/auth/verify-otp", map[string]string{"email": "grey@hospital.test", "otp": code})
		Expect(w.Code).To(Equal(http.StatusOK))

		var stored userDatamodel.User
		Expect(db.Where("email = ?", "grey@hospital.test").First(&stored).Error).To(Succeed())
		Expect(stored.EmailVerifiedAt).NotTo(BeNil())
		Expect(bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret1"))).To(Succeed())
	})

	It("should list users by role", func() {
		do(http.MethodPost, "/admin/users", map[string]string{"name": "N", "email": "n@hospital.test", "password": "secret1", "role": "nurse"})

		w := do(http.MethodGet, "/admin/users/nurse", nil)
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp user.UsersResponse
		Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
		Expect(resp.Message).To(Equal("Users with role 'nurse' retrieved successfully."))
		Expect(resp.Users).To(HaveLen(1))

		Expect(do(http.MethodGet, "/admin/users/doctor", nil).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodGet, "/admin/users/admin", nil).Code).To(Equal(http.StatusBadRequest))
	})

	It("should delete users but never the caller", func() {
		do(http.MethodPost, "/admin/users", map[string]string{"name": "R", "email": "r@hospital.test", "password": "secret1", "role": "receptionist"})
		var target userDatamodel.User
		Expect(db.Where("email = ?", "r@hospital.test").First(&target).Error).To(Succeed())

		w := do(http.MethodDelete, "/admin/users/"+strconv.FormatInt(target.ID, 10), nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring("User deleted successfully."))

		Expect(do(http.MethodDelete, "/admin/users/"+strconv.FormatInt(target.ID, 10), nil).Code).To(Equal(http.StatusNotFound))
		Expect(do(http.MethodDelete, "/admin/users/"+strconv.FormatInt(admin.ID, 10), nil).Code).To(Equal(http.StatusForbidden))
	})

	It("should answer 403 to non-admins", func() {
		current = &internal.Actor{ID: 50, Email: "doc@hospital.test", Role: role.Doctor}
		w := do(http.MethodPost, "/admin/users", map[string]string{"name": "X", "email": "x@hospital.test", "password": "secret1", "role": "nurse"})
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(w.Body.String()).To(ContainSubstring("Only admins can add users."))
	})
})
