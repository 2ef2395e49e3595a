package auth_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/eoffice/office-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type stubService struct {
	loginErr   error
	resolveErr error
	requireErr error
	user       *auth.User
}

func (s *stubService) Login(dto auth.LoginDTO) (auth.TokenResponse, error) {
	if s.loginErr != nil {
		return auth.TokenResponse{}, s.loginErr
	}
	return auth.TokenResponse{AccessToken: "token", TokenType: "bearer"}, nil
}

func (s *stubService) Authenticate(username, password string) (*auth.User, error) {
	return s.user, s.loginErr
}

func (s *stubService) ResolveCurrentUser(tokenString string) (*auth.User, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.user, nil
}

func (s *stubService) PermissionsFor(user *auth.User) (auth.PermissionSet, error) {
	return auth.PermissionSet{}, nil
}

func (s *stubService) Require(user *auth.User, permission auth.Permission) error {
	return s.requireErr
}

func (s *stubService) HashPassword(password string) (string, error) {
	return password, nil
}

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeErrorBody(rec *httptest.ResponseRecorder) errorBody {
	var body errorBody
	ExpectWithOffset(1, json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body
}

var _ = Describe("Auth Handler", func() {
	var (
		svc     *stubService
		handler *auth.Handler
	)

	BeforeEach(func() {
		svc = &stubService{user: &auth.User{ID: 1, Username: "alice", IsActive: true}}
		handler = auth.NewHandler(svc)
	})

	loginRequest := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader("username=alice&password=secret"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req
	}

	Describe("Login", func() {
		It("should return a bearer token on success", func() {
			rec := httptest.NewRecorder()
			handler.Login(rec, loginRequest())

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("access_token"))
		})

		It("should answer bad credentials with a typed 401 and challenge header", func() {
			svc.loginErr = auth.ErrInvalidCredentials

			rec := httptest.NewRecorder()
			handler.Login(rec, loginRequest())

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))

			body := decodeErrorBody(rec)
			Expect(body.Error.Type).To(Equal("UNAUTHENTICATED"))
			Expect(body.Error.Code).To(Equal("INVALID_CREDENTIALS"))
			Expect(body.Error.Message).To(Equal("invalid username or password"))
		})
	})

	Describe("AuthMiddleware", func() {
		var (
			nextCalled bool
			guarded    http.Handler
		)

		BeforeEach(func() {
			nextCalled = false
			guarded = handler.AuthMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			}))
		})

		It("should reject a missing token with a typed 401", func() {
			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/me", nil))

			Expect(nextCalled).To(BeFalse())
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))

			body := decodeErrorBody(rec)
			Expect(body.Error.Code).To(Equal("INVALID_TOKEN"))
			Expect(body.Error.Message).To(Equal("missing authorization token"))
		})

		It("should reject a bad token without leaking the failure", func() {
			svc.resolveErr = auth.ErrInvalidToken

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			req.Header.Set("Authorization", "Bearer bogus")

			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, req)

			Expect(nextCalled).To(BeFalse())
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))

			body := decodeErrorBody(rec)
			Expect(body.Error.Code).To(Equal("INVALID_TOKEN"))
			Expect(body.Error.Message).To(Equal("could not validate credentials"))
		})
	})

	Describe("RequirePermission", func() {
		var (
			nextCalled bool
			guarded    http.Handler
		)

		BeforeEach(func() {
			nextCalled = false
			guarded = handler.RequirePermission(auth.PermManageUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			}))
		})

		requestWithUser := func(u *auth.User) *http.Request {
			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			return req.WithContext(auth.ContextWithUser(req.Context(), u))
		}

		It("should pass a granted caller through", func() {
			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, requestWithUser(svc.user))

			Expect(nextCalled).To(BeTrue())
		})

		It("should answer a missing grant with a typed 403", func() {
			svc.requireErr = auth.ErrMissingPermission

			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, requestWithUser(svc.user))

			Expect(nextCalled).To(BeFalse())
			Expect(rec.Code).To(Equal(http.StatusForbidden))

			body := decodeErrorBody(rec)
			Expect(body.Error.Type).To(Equal("FORBIDDEN"))
			Expect(body.Error.Code).To(Equal("MISSING_PERMISSION"))
			Expect(body.Error.Message).To(Equal("you do not have the necessary permissions"))
		})

		It("should answer a role-less caller with a typed 401", func() {
			svc.requireErr = auth.ErrNoRoleAssigned

			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, requestWithUser(svc.user))

			Expect(nextCalled).To(BeFalse())
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Header().Get("WWW-Authenticate")).To(Equal("Bearer"))

			body := decodeErrorBody(rec)
			Expect(body.Error.Code).To(Equal("NO_ROLE_ASSIGNED"))
		})
	})
})
