package auth

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the credential-store contract the service depends on.
type UserRepository interface {
	GetCredentials(username string) (passwordHash string, user *User, err error)
	GetByUsername(username string) (*User, error)
	PermissionsForRole(roleID int64) ([]Permission, error)
}

type ServiceAPI interface {
	Login(dto LoginDTO) (TokenResponse, error)
	Authenticate(username, password string) (*User, error)
	ResolveCurrentUser(tokenString string) (*User, error)
	PermissionsFor(user *User) (PermissionSet, error)
	Require(user *User, permission Permission) error
	HashPassword(password string) (string, error)
}

// Service performs authentication and authorization resolution.
type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	loginTokenTTL  time.Duration
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(userRepo UserRepository, tokenGen TokenGenerator, loginTokenTTL time.Duration, bcryptCost int, logger *slog.Logger) *Service {
	if loginTokenTTL <= 0 {
		loginTokenTTL = 30 * time.Minute
	}
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		loginTokenTTL:  loginTokenTTL,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(secret string, defaultTTL time.Duration) *JWTTokenGenerator {
	if defaultTTL <= 0 {
		defaultTTL = 15 * time.Minute
	}
	return &JWTTokenGenerator{
		Secret:     []byte(secret),
		DefaultTTL: defaultTTL,
	}
}

// Authenticate verifies credentials against the stored hash. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *Service) Authenticate(username, password string) (*User, error) {
	storedHash, user, err := s.userRepo.GetCredentials(username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login authenticates and issues a bearer token with subject = username.
func (s *Service) Login(dto LoginDTO) (TokenResponse, error) {
	if err := dto.Validate(); err != nil {
		return TokenResponse{}, err
	}

	user, err := s.Authenticate(dto.Username, dto.Password)
	if err != nil {
		return TokenResponse{}, err
	}

	token, err := s.tokenGenerator.GenerateToken(user.Username, s.loginTokenTTL)
	if err != nil {
		return TokenResponse{}, fmt.Errorf("generate token: %w", err)
	}

	return TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

// ResolveCurrentUser is the single per-request authentication gate.
func (s *Service) ResolveCurrentUser(tokenString string) (*User, error) {
	subject, err := s.tokenGenerator.ValidateToken(tokenString)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.userRepo.GetByUsername(subject)
	if err != nil {
		// principal vanished between issue and use
		return nil, ErrInvalidToken
	}

	return user, nil
}

// PermissionsFor loads the role's grants fresh from storage. No caching:
// role edits must take effect on the very next request.
func (s *Service) PermissionsFor(user *User) (PermissionSet, error) {
	if user == nil || user.RoleID == nil {
		return nil, ErrNoRoleAssigned
	}

	perms, err := s.userRepo.PermissionsForRole(*user.RoleID)
	if err != nil {
		s.logger.Error("permission lookup failed", "user_id", user.ID, "role_id", *user.RoleID, "error", err)
		return nil, ErrNoRoleAssigned
	}

	// An empty set is valid and simply grants nothing.
	return NewPermissionSet(perms), nil
}

// Require is the authorization guard called before any protected mutation.
func (s *Service) Require(user *User, permission Permission) error {
	set, err := s.PermissionsFor(user)
	if err != nil {
		return err
	}

	if !set.Has(permission) {
		return ErrMissingPermission
	}
	return nil
}

// HashPassword creates a bcrypt hash of the password.
func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GenerateToken creates a signed expiring token. A non-positive ttl gets
// the generator default.
func (j *JWTTokenGenerator) GenerateToken(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = j.DefaultTTL
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.Secret)
}

// ValidateToken verifies signature and expiry and returns the subject.
// Every failure collapses into ErrInvalidToken so callers cannot tell
// which check tripped.
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	})
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
