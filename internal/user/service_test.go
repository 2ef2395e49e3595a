package user

import (
	"io"
	"log/slog"
	"testing"

	"github.com/eoffice/office-management/internal"
	"github.com/eoffice/office-management/internal/auth"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

func TestUser(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "User Module Suite")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// plainHasher marks passwords instead of hashing so tests can see exactly
// what reached storage.
type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

// mockRepository is an in-memory Repository keyed like the real schema.
type mockRepository struct {
	users     map[string]*User
	teams     map[string]*Team
	roles     map[int64]*Role
	rolePerms map[int64]map[string]bool
	nextID    int64
	failWith  error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:     make(map[string]*User),
		teams:     make(map[string]*Team),
		roles:     make(map[int64]*Role),
		rolePerms: make(map[int64]map[string]bool),
		nextID:    1,
	}
}

func (m *mockRepository) id() int64 {
	id := m.nextID
	m.nextID++
	return id
}

func (m *mockRepository) CreateUser(u *User) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, exists := m.users[u.Username]; exists {
		return ErrDuplicate
	}
	for _, other := range m.users {
		if other.Email == u.Email {
			return ErrDuplicate
		}
	}
	u.ID = m.id()
	m.users[u.Username] = u
	return nil
}

func (m *mockRepository) GetUserByUsername(username string) (*User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *mockRepository) SearchUsersByPrefix(prefix string) ([]*User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []*User
	for _, u := range m.users {
		if len(u.Username) >= len(prefix) && u.Username[:len(prefix)] == prefix {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockRepository) UpdateUser(u *User) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.users[u.Username]; !ok {
		return ErrNotFound
	}
	m.users[u.Username] = u
	return nil
}

func (m *mockRepository) DeleteUser(username string) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.users[username]; !ok {
		return ErrNotFound
	}
	delete(m.users, username)
	return nil
}

func (m *mockRepository) CreateTeam(t *Team) error {
	if _, exists := m.teams[t.Name]; exists {
		return ErrDuplicate
	}
	t.ID = m.id()
	m.teams[t.Name] = t
	return nil
}

func (m *mockRepository) GetTeamByName(name string) (*Team, error) {
	t, ok := m.teams[name]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (m *mockRepository) ListTeams() ([]*Team, error) {
	var out []*Team
	for _, t := range m.teams {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockRepository) UpdateTeam(t *Team) error {
	m.teams[t.Name] = t
	return nil
}

func (m *mockRepository) DeleteTeam(name string) error {
	t, ok := m.teams[name]
	if !ok {
		return ErrNotFound
	}
	for _, u := range m.users {
		if u.TeamID != nil && *u.TeamID == t.ID {
			return ErrReferenced
		}
	}
	delete(m.teams, name)
	return nil
}

func (m *mockRepository) CreateRole(r *Role) error {
	for _, other := range m.roles {
		if other.Name == r.Name {
			return ErrDuplicate
		}
	}
	r.ID = m.id()
	m.roles[r.ID] = r
	return nil
}

func (m *mockRepository) GetRoleByID(id int64) (*Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func (m *mockRepository) ListRoles() ([]*Role, error) {
	var out []*Role
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRepository) UpdateRole(r *Role) error {
	m.roles[r.ID] = r
	return nil
}

func (m *mockRepository) DeleteRole(id int64) error {
	if _, ok := m.roles[id]; !ok {
		return ErrNotFound
	}
	for _, u := range m.users {
		if u.RoleID != nil && *u.RoleID == id {
			return ErrReferenced
		}
	}
	delete(m.roles, id)
	return nil
}

func (m *mockRepository) CreateRolePermission(rp *RolePermission) error {
	perms := m.rolePerms[rp.RoleID]
	if perms == nil {
		perms = make(map[string]bool)
		m.rolePerms[rp.RoleID] = perms
	}
	if perms[rp.Permission] {
		return ErrDuplicate
	}
	perms[rp.Permission] = true
	return nil
}

func (m *mockRepository) GetRolePermission(roleID int64, permission string) (*RolePermission, error) {
	if m.rolePerms[roleID][permission] {
		return &RolePermission{RoleID: roleID, Permission: permission}, nil
	}
	return nil, ErrNotFound
}

func (m *mockRepository) ListRolePermissions() ([]*RolePermission, error) {
	var out []*RolePermission
	for roleID, perms := range m.rolePerms {
		for p := range perms {
			out = append(out, &RolePermission{RoleID: roleID, Permission: p})
		}
	}
	return out, nil
}

func (m *mockRepository) ListRolePermissionsByRole(roleID int64) ([]*RolePermission, error) {
	var out []*RolePermission
	for p := range m.rolePerms[roleID] {
		out = append(out, &RolePermission{RoleID: roleID, Permission: p})
	}
	return out, nil
}

func (m *mockRepository) DeleteRolePermission(roleID int64, permission string) error {
	if !m.rolePerms[roleID][permission] {
		return ErrNotFound
	}
	delete(m.rolePerms[roleID], permission)
	return nil
}

func expectAppError(err error, errType internal.ErrorType, status int) {
	appErr, ok := internal.IsAppError(err)
	gomega.ExpectWithOffset(1, ok).To(gomega.BeTrue(), "expected AppError, got %v", err)
	gomega.ExpectWithOffset(1, appErr.Type).To(gomega.Equal(errType))
	gomega.ExpectWithOffset(1, appErr.StatusCode).To(gomega.Equal(status))
}

var _ = ginkgo.Describe("UserService", func() {
	var (
		service *Service
		repo    *mockRepository
	)

	createDTO := func(username string) CreateUserDTO {
		return CreateUserDTO{
			Username:  username,
			Password:  "secret",
			FirstName: "Test",
			LastName:  "User",
			Email:     username + "@example.com",
		}
	}

	ginkgo.BeforeEach(func() {
		repo = newMockRepository()
		service = NewService(repo, plainHasher{}, testLogger())
	})

	ginkgo.Describe("CreateUser", func() {
		ginkgo.It("should store a hashed password and activate the account", func() {
			u, err := service.CreateUser(createDTO("alice"))

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(u.PasswordHash).To(gomega.Equal("hashed:secret"))
			gomega.Expect(u.IsActive).To(gomega.BeTrue())
			gomega.Expect(u.ID).ToNot(gomega.BeZero())
		})

		ginkgo.It("should reject a duplicate username as a bad request", func() {
			_, err := service.CreateUser(createDTO("alice"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.CreateUser(createDTO("alice"))
			expectAppError(err, internal.ErrorTypeConflict, 400)
		})

		ginkgo.It("should reject missing required fields", func() {
			_, err := service.CreateUser(CreateUserDTO{Username: "alice"})

			var vErr ValidationError
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(vErr))
		})

		ginkgo.It("should never expose the hash through the API view", func() {
			u, err := service.CreateUser(createDTO("alice"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			info := u.ToInfo()
			gomega.Expect(info.Username).To(gomega.Equal("alice"))
			// UserInfo has no hash field at all; spot-check a roundtrip value
			gomega.Expect(info.Email).To(gomega.Equal("alice@example.com"))
		})
	})

	ginkgo.Describe("UpdateUser", func() {
		ginkgo.BeforeEach(func() {
			_, err := service.CreateUser(createDTO("alice"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should only touch the supplied fields", func() {
			newFirst := "Alicia"
			updated, err := service.UpdateUser("alice", UpdateUserDTO{FirstName: &newFirst})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.FirstName).To(gomega.Equal("Alicia"))
			gomega.Expect(updated.LastName).To(gomega.Equal("User"))
			gomega.Expect(updated.Email).To(gomega.Equal("alice@example.com"))
			gomega.Expect(updated.PasswordHash).To(gomega.Equal("hashed:secret"))
		})

		ginkgo.It("should re-hash a supplied password", func() {
			newPassword := "rotated"
			updated, err := service.UpdateUser("alice", UpdateUserDTO{Password: &newPassword})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.PasswordHash).To(gomega.Equal("hashed:rotated"))
		})

		ginkgo.It("should allow deactivating an account", func() {
			inactive := false
			updated, err := service.UpdateUser("alice", UpdateUserDTO{IsActive: &inactive})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.IsActive).To(gomega.BeFalse())
		})

		ginkgo.It("should 404 for an unknown username", func() {
			_, err := service.UpdateUser("ghost", UpdateUserDTO{})
			expectAppError(err, internal.ErrorTypeNotFound, 404)
		})
	})

	ginkgo.Describe("DeleteUser", func() {
		ginkgo.It("should 404 for a missing user", func() {
			err := service.DeleteUser("ghost")
			expectAppError(err, internal.ErrorTypeNotFound, 404)
		})

		ginkgo.It("should remove an existing user", func() {
			_, err := service.CreateUser(createDTO("alice"))
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(service.DeleteUser("alice")).To(gomega.Succeed())

			_, err = service.GetUserByUsername("alice")
			expectAppError(err, internal.ErrorTypeNotFound, 404)
		})
	})

	ginkgo.Describe("Teams", func() {
		ginkgo.It("should reject a duplicate team name", func() {
			_, err := service.CreateTeam(CreateTeamDTO{Name: "platform"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.CreateTeam(CreateTeamDTO{Name: "platform"})
			expectAppError(err, internal.ErrorTypeConflict, 400)
		})

		ginkgo.It("should block deleting a team with members", func() {
			team, err := service.CreateTeam(CreateTeamDTO{Name: "platform"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			dto := createDTO("alice")
			dto.TeamID = &team.ID
			_, err = service.CreateUser(dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			err = service.DeleteTeam("platform")
			expectAppError(err, internal.ErrorTypeConflict, 400)
		})

		ginkgo.It("should update only the description", func() {
			_, err := service.CreateTeam(CreateTeamDTO{Name: "platform"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			desc := "infra and tooling"
			updated, err := service.UpdateTeam("platform", UpdateTeamDTO{Description: &desc})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(updated.Name).To(gomega.Equal("platform"))
			gomega.Expect(*updated.Description).To(gomega.Equal(desc))
		})
	})

	ginkgo.Describe("Roles and permissions", func() {
		var roleID int64

		ginkgo.BeforeEach(func() {
			role, err := service.CreateRole(CreateRoleDTO{Name: "approver"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			roleID = role.ID
		})

		ginkgo.It("should grant a known permission", func() {
			rp, err := service.CreateRolePermission(CreateRolePermissionDTO{
				RoleID:     roleID,
				Permission: string(auth.PermManageRequisition),
			})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(rp.RoleID).To(gomega.Equal(roleID))
		})

		ginkgo.It("should reject an unknown permission value", func() {
			_, err := service.CreateRolePermission(CreateRolePermissionDTO{
				RoleID:     roleID,
				Permission: "FLY_TO_MOON",
			})

			var vErr ValidationError
			gomega.Expect(err).To(gomega.BeAssignableToTypeOf(vErr))
		})

		ginkgo.It("should 404 when granting to a missing role", func() {
			_, err := service.CreateRolePermission(CreateRolePermissionDTO{
				RoleID:     9999,
				Permission: string(auth.PermManageUser),
			})
			expectAppError(err, internal.ErrorTypeNotFound, 404)
		})

		ginkgo.It("should reject a duplicate grant", func() {
			dto := CreateRolePermissionDTO{RoleID: roleID, Permission: string(auth.PermManageUser)}
			_, err := service.CreateRolePermission(dto)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.CreateRolePermission(dto)
			expectAppError(err, internal.ErrorTypeConflict, 400)
		})

		ginkgo.It("should block deleting a role that still has grants", func() {
			_, err := service.CreateRolePermission(CreateRolePermissionDTO{
				RoleID:     roleID,
				Permission: string(auth.PermManageUser),
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			err = service.DeleteRole(roleID)
			expectAppError(err, internal.ErrorTypeConflict, 400)
		})

		ginkgo.It("should delete a role after its grants are revoked", func() {
			_, err := service.CreateRolePermission(CreateRolePermissionDTO{
				RoleID:     roleID,
				Permission: string(auth.PermManageUser),
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(service.DeleteRolePermission(roleID, string(auth.PermManageUser))).To(gomega.Succeed())
			gomega.Expect(service.DeleteRole(roleID)).To(gomega.Succeed())
		})

		ginkgo.It("should 404 when revoking a grant that was never made", func() {
			err := service.DeleteRolePermission(roleID, string(auth.PermManageTicket))
			expectAppError(err, internal.ErrorTypeNotFound, 404)
		})

		ginkgo.It("should 404 when revoking from a missing role", func() {
			err := service.DeleteRolePermission(9999, string(auth.PermManageUser))
			expectAppError(err, internal.ErrorTypeNotFound, 404)
		})
	})
})
