package auth_test

import (
	"context"
	"errors"
	"strconv"

	"github.com/frahmantamala/hospital-admin/internal"
	"github.com/frahmantamala/hospital-admin/internal/auth"
	"github.com/frahmantamala/hospital-admin/internal/core/role"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type bindingKey struct {
	subject    string
	permission string
}

// mockPermissionStore counts lookups so tests can see the order and that nothing is cached.
type mockPermissionStore struct {
	direct      map[bindingKey]bool
	roles       map[bindingKey]bool
	calls       []string
	directError error
	roleError   error
}

func newMockPermissionStore() *mockPermissionStore {
	return &mockPermissionStore{direct: map[bindingKey]bool{}, roles: map[bindingKey]bool{}}
}

func (m *mockPermissionStore) grantUser(userID string, permission string) {
	m.direct[bindingKey{userID, permission}] = true
}

func (m *mockPermissionStore) grantRole(r role.Role, permission string) {
	m.roles[bindingKey{r.String(), permission}] = true
}

func (m *mockPermissionStore) HasDirectPermission(_ context.Context, userID int64, permission string) (bool, error) {
	m.calls = append(m.calls, "direct")
	if m.directError != nil {
		return false, m.directError
	}
	return m.direct[bindingKey{strconv.FormatInt(userID, 10), permission}], nil
}

func (m *mockPermissionStore) HasRolePermission(_ context.Context, roleName string, permission string) (bool, error) {
	m.calls = append(m.calls, "role")
	if m.roleError != nil {
		return false, m.roleError
	}
	return m.roles[bindingKey{roleName, permission}], nil
}

var _ = Describe("PermissionChecker", func() {
	var (
		store   *mockPermissionStore
		checker *auth.DefaultPermissionChecker
		ctx     context.Context
		doctor  *internal.Actor
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newMockPermissionStore()
		checker = auth.NewPermissionChecker(store, testLogger)
		doctor = &internal.Actor{ID: 5, Email: "doc@hospital.test", Role: role.Doctor}
	})

	It("should deny an absent actor without touching storage", func() {
		ok, err := checker.HasPermission(ctx, nil, auth.ManagePermissions)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(store.calls).To(BeEmpty())
	})

	It("should grant through a direct binding without consulting the role", func() {
		store.grantUser("5", "view_reports")

		ok, err := checker.HasPermission(ctx, doctor, "view_reports")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(store.calls).To(Equal([]string{"direct"}))
	})

	It("should fall back to the role binding", func() {
		store.grantRole(role.Doctor, "view_reports")

		ok, err := checker.HasPermission(ctx, doctor, "view_reports")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(store.calls).To(Equal([]string{"direct", "role"}))
	})

	It("should deny when neither binding exists", func() {
		store.grantRole(role.Nurse, "view_reports")

		ok, err := checker.HasPermission(ctx, doctor, "view_reports")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("should match permission names exactly", func() {
		store.grantRole(role.Doctor, "view_reports")

		ok, err := checker.HasPermission(ctx, doctor, "View_Reports")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("should query storage on every call", func() {
		store.grantRole(role.Doctor, "view_reports")
		_, _ = checker.HasPermission(ctx, doctor, "view_reports")

		delete(store.roles, bindingKey{"doctor", "view_reports"})
		ok, err := checker.HasPermission(ctx, doctor, "view_reports")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(store.calls).To(HaveLen(4))
	})

	It("should propagate storage errors", func() {
		store.directError = errors.New("connection refused")
		_, err := checker.HasPermission(ctx, doctor, "view_reports")
		Expect(err).To(MatchError(ContainSubstring("connection refused")))

		store.directError = nil
		store.roleError = errors.New("timeout")
		_, err = checker.HasPermission(ctx, doctor, "view_reports")
		Expect(err).To(MatchError(ContainSubstring("timeout")))
	})
})

var _ = Describe("Policies", func() {
	var (
		store *mockPermissionStore
		ctx   context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newMockPermissionStore()
	})

	Describe("PermissionPolicy", func() {
		var policy *auth.PermissionPolicy

		BeforeEach(func() {
			policy = auth.NewPermissionPolicy(auth.NewPermissionChecker(store, testLogger), auth.ManagePermissions, testLogger)
		})

		It("should allow holders of the permission regardless of role", func() {
			store.grantUser("7", auth.ManagePermissions)
			nurse := &internal.Actor{ID: 7, Role: role.Nurse}
			Expect(policy.Authorize(ctx, nurse, "manage permissions")).To(Succeed())
		})

		It("should forbid an admin who lacks the permission", func() {
			admin := &internal.Actor{ID: 1, Role: role.Admin}
			err := policy.Authorize(ctx, admin, "manage permissions")

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
			Expect(appErr.Message).To(Equal("Unauthorized. You lack permission to manage permissions."))
		})

		It("should turn storage failures into internal errors", func() {
			store.directError = errors.New("boom")
			err := policy.Authorize(ctx, &internal.Actor{ID: 1, Role: role.Admin}, "manage permissions")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(500))
		})
	})

	Describe("RolePolicy", func() {
		var policy *auth.RolePolicy

		BeforeEach(func() {
			policy = auth.NewRolePolicy(testLogger, role.Admin)
		})

		It("should allow admins", func() {
			Expect(policy.Authorize(ctx, &internal.Actor{ID: 1, Role: role.Admin}, "add users")).To(Succeed())
		})

		It("should ignore permission bindings", func() {
			store.grantUser("3", auth.ManagePermissions)
			err := policy.Authorize(ctx, &internal.Actor{ID: 3, Role: role.Doctor}, "add users")
			Expect(err).To(MatchError("Unauthorized. Only admins can add users."))
		})

		It("should forbid a missing actor", func() {
			err := policy.Authorize(ctx, nil, "delete users")
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.StatusCode).To(Equal(403))
		})
	})
})
