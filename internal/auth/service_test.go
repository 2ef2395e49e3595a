package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

// Mock UserRepository for testing
type mockUserRepository struct {
	hashes      map[string]string
	users       map[string]*User
	rolePerms   map[int64][]Permission
	permsErr    error
	returnError bool
}

func newMockUserRepository() *mockUserRepository {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	roleID := int64(1)
	return &mockUserRepository{
		hashes: map[string]string{
			"alice": string(hash),
			"bob":   string(hash),
		},
		users: map[string]*User{
			"alice": {ID: 1, Username: "alice", Email: "alice@example.com", RoleID: &roleID, IsActive: true},
			"bob":   {ID: 2, Username: "bob", Email: "bob@example.com", IsActive: true},
		},
		rolePerms: map[int64][]Permission{
			1: {PermManageUser},
		},
	}
}

func (m *mockUserRepository) GetCredentials(username string) (string, *User, error) {
	if m.returnError {
		return "", nil, errors.New("storage down")
	}
	hash, ok := m.hashes[username]
	if !ok {
		return "", nil, errors.New("user not found")
	}
	return hash, m.users[username], nil
}

func (m *mockUserRepository) GetByUsername(username string) (*User, error) {
	if m.returnError {
		return nil, errors.New("storage down")
	}
	u, ok := m.users[username]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}

func (m *mockUserRepository) PermissionsForRole(roleID int64) ([]Permission, error) {
	if m.permsErr != nil {
		return nil, m.permsErr
	}
	return m.rolePerms[roleID], nil
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		service  *Service
		mockRepo *mockUserRepository
		tokenGen *JWTTokenGenerator
		secret   string        = "test-secret"
		tokenTTL time.Duration = 15 * time.Minute
		loginTTL time.Duration = 30 * time.Minute
	)

	ginkgo.BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(secret, tokenTTL)
		service = NewService(mockRepo, tokenGen, loginTTL, bcrypt.MinCost, testLogger())
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return the user", func() {
				user, err := service.Authenticate("alice", "correct_password")

				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(user.Username).To(gomega.Equal("alice"))
			})
		})

		ginkgo.Context("when the password is wrong", func() {
			ginkgo.It("should return invalid credentials", func() {
				_, err := service.Authenticate("alice", "wrong_password")

				gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
			})
		})

		ginkgo.Context("when the user does not exist", func() {
			ginkgo.It("should return the same error as a wrong password", func() {
				_, unknownErr := service.Authenticate("nobody", "whatever")
				_, wrongErr := service.Authenticate("alice", "wrong_password")

				gomega.Expect(unknownErr).To(gomega.MatchError(wrongErr))
			})
		})

		ginkgo.Context("when the repository fails", func() {
			ginkgo.It("should still report invalid credentials", func() {
				mockRepo.returnError = true

				_, err := service.Authenticate("alice", "correct_password")

				gomega.Expect(err).To(gomega.MatchError(ErrInvalidCredentials))
			})
		})
	})

	ginkgo.Describe("Login", func() {
		ginkgo.It("should issue a bearer token for valid credentials", func() {
			resp, err := service.Login(LoginDTO{Username: "alice", Password: "correct_password"})

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resp.AccessToken).ToNot(gomega.BeEmpty())
			gomega.Expect(resp.TokenType).To(gomega.Equal("bearer"))
		})

		ginkgo.It("should embed the username as the token subject", func() {
			resp, err := service.Login(LoginDTO{Username: "alice", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			subject, err := tokenGen.ValidateToken(resp.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(subject).To(gomega.Equal("alice"))
		})

		ginkgo.It("should reject empty credentials before touching storage", func() {
			_, err := service.Login(LoginDTO{})

			var vErr ValidationError
			gomega.Expect(errors.As(err, &vErr)).To(gomega.BeTrue())
		})
	})

	ginkgo.Describe("ResolveCurrentUser", func() {
		ginkgo.It("should resolve the user behind a fresh token", func() {
			token, err := tokenGen.GenerateToken("alice", 0)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			user, err := service.ResolveCurrentUser(token)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(user.ID).To(gomega.Equal(int64(1)))
		})

		ginkgo.It("should reject an expired token", func() {
			shortGen := NewJWTTokenGenerator(secret, time.Nanosecond)
			token, err := shortGen.GenerateToken("alice", time.Nanosecond)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			time.Sleep(10 * time.Millisecond)

			_, err = service.ResolveCurrentUser(token)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should reject a token signed with a different secret", func() {
			otherGen := NewJWTTokenGenerator("other-secret", tokenTTL)
			token, err := otherGen.GenerateToken("alice", tokenTTL)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ResolveCurrentUser(token)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should reject garbage", func() {
			_, err := service.ResolveCurrentUser("not-a-token")
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})

		ginkgo.It("should reject a valid token whose user vanished", func() {
			token, err := tokenGen.GenerateToken("ghost", tokenTTL)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ResolveCurrentUser(token)
			gomega.Expect(err).To(gomega.MatchError(ErrInvalidToken))
		})
	})

	ginkgo.Describe("Require", func() {
		ginkgo.It("should allow a granted permission", func() {
			alice := mockRepo.users["alice"]

			err := service.Require(alice, PermManageUser)

			gomega.Expect(err).ToNot(gomega.HaveOccurred())
		})

		ginkgo.It("should deny a permission the role does not grant", func() {
			alice := mockRepo.users["alice"]

			err := service.Require(alice, PermManageTicket)

			gomega.Expect(err).To(gomega.MatchError(ErrMissingPermission))
		})

		ginkgo.It("should fail for a user without a role", func() {
			bob := mockRepo.users["bob"]

			err := service.Require(bob, PermManageUser)

			gomega.Expect(err).To(gomega.MatchError(ErrNoRoleAssigned))
		})

		ginkgo.It("should treat a permission lookup failure as no role", func() {
			mockRepo.permsErr = errors.New("storage down")
			alice := mockRepo.users["alice"]

			err := service.Require(alice, PermManageUser)

			gomega.Expect(err).To(gomega.MatchError(ErrNoRoleAssigned))
		})

		ginkgo.It("should deny everything for an empty grant set", func() {
			mockRepo.rolePerms[1] = nil
			alice := mockRepo.users["alice"]

			for _, perm := range AllPermissions {
				gomega.Expect(service.Require(alice, perm)).To(gomega.MatchError(ErrMissingPermission))
			}
		})
	})

	ginkgo.Describe("permission changes", func() {
		ginkgo.It("should take effect on the next check without re-login", func() {
			alice := mockRepo.users["alice"]
			gomega.Expect(service.Require(alice, PermManageRequisition)).To(gomega.MatchError(ErrMissingPermission))

			mockRepo.rolePerms[1] = append(mockRepo.rolePerms[1], PermManageRequisition)

			gomega.Expect(service.Require(alice, PermManageRequisition)).ToNot(gomega.HaveOccurred())
		})
	})
})
