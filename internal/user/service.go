package user

import (
	"errors"
	"log/slog"
	"time"

	"github.com/eoffice/office-management/internal"
)

// Repository is the persistence contract for users, teams, roles and role
// permissions. Implementations translate driver errors into the package
// sentinels (ErrNotFound, ErrDuplicate, ErrReferenced).
type Repository interface {
	CreateUser(u *User) error
	GetUserByUsername(username string) (*User, error)
	SearchUsersByPrefix(prefix string) ([]*User, error)
	UpdateUser(u *User) error
	DeleteUser(username string) error

	CreateTeam(t *Team) error
	GetTeamByName(name string) (*Team, error)
	ListTeams() ([]*Team, error)
	UpdateTeam(t *Team) error
	DeleteTeam(name string) error

	CreateRole(r *Role) error
	GetRoleByID(id int64) (*Role, error)
	ListRoles() ([]*Role, error)
	UpdateRole(r *Role) error
	DeleteRole(id int64) error

	CreateRolePermission(rp *RolePermission) error
	GetRolePermission(roleID int64, permission string) (*RolePermission, error)
	ListRolePermissions() ([]*RolePermission, error)
	ListRolePermissionsByRole(roleID int64) ([]*RolePermission, error)
	DeleteRolePermission(roleID int64, permission string) error
}

// PasswordHasher hashes plaintext passwords before they reach storage.
type PasswordHasher interface {
	HashPassword(password string) (string, error)
}

type Service struct {
	repo   Repository
	hasher PasswordHasher
	logger *slog.Logger
}

func NewService(repo Repository, hasher PasswordHasher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		logger: logger,
	}
}

// ---- Users ----

func (s *Service) CreateUser(dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.HashPassword(dto.Password)
	if err != nil {
		return nil, internal.NewStorageError("failed to hash password", err)
	}

	now := time.Now()
	u := &User{
		Username:     dto.Username,
		FirstName:    dto.FirstName,
		LastName:     dto.LastName,
		Email:        dto.Email,
		PasswordHash: hash,
		TeamID:       dto.TeamID,
		RoleID:       dto.RoleID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.CreateUser(u); err != nil {
		switch {
		case errors.Is(err, ErrDuplicate):
			return nil, internal.NewConflictError("User with this username or email already exists", internal.ErrCodeUserAlreadyExists)
		case errors.Is(err, ErrReferenced):
			return nil, internal.NewConflictError("User references a team or role that does not exist", internal.ErrCodeReferencedByOthers)
		default:
			s.logger.Error("failed to create user", "username", dto.Username, "error", err)
			return nil, internal.NewStorageError("failed to create user", err)
		}
	}

	s.logger.Info("user created", "username", u.Username, "user_id", u.ID)
	return u, nil
}

func (s *Service) GetUserByUsername(username string) (*User, error) {
	u, err := s.repo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
		}
		return nil, internal.NewStorageError("failed to get user", err)
	}
	return u, nil
}

// SearchUsers returns users whose username starts with the given prefix.
func (s *Service) SearchUsers(prefix string) ([]*User, error) {
	users, err := s.repo.SearchUsersByPrefix(prefix)
	if err != nil {
		return nil, internal.NewStorageError("failed to search users", err)
	}
	return users, nil
}

func (s *Service) UpdateUser(username string, dto UpdateUserDTO) (*User, error) {
	u, err := s.repo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
		}
		return nil, internal.NewStorageError("failed to get user", err)
	}

	if dto.Password != nil {
		hash, err := s.hasher.HashPassword(*dto.Password)
		if err != nil {
			return nil, internal.NewStorageError("failed to hash password", err)
		}
		u.PasswordHash = hash
	}
	dto.ApplyTo(u)

	if err := s.repo.UpdateUser(u); err != nil {
		switch {
		case errors.Is(err, ErrDuplicate):
			return nil, internal.NewConflictError("User with this username or email already exists", internal.ErrCodeUserAlreadyExists)
		case errors.Is(err, ErrReferenced):
			return nil, internal.NewConflictError("User references a team or role that does not exist", internal.ErrCodeReferencedByOthers)
		default:
			s.logger.Error("failed to update user", "username", username, "error", err)
			return nil, internal.NewStorageError("failed to update user", err)
		}
	}

	return u, nil
}

func (s *Service) DeleteUser(username string) error {
	if err := s.repo.DeleteUser(username); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return internal.NewNotFoundError("User not found", internal.ErrCodeUserNotFound)
		case errors.Is(err, ErrReferenced):
			return internal.NewConflictError("User cannot be deleted as it is referenced by other records", internal.ErrCodeReferencedByOthers)
		default:
			s.logger.Error("failed to delete user", "username", username, "error", err)
			return internal.NewStorageError("failed to delete user", err)
		}
	}
	s.logger.Info("user deleted", "username", username)
	return nil
}

// ---- Teams ----

func (s *Service) CreateTeam(dto CreateTeamDTO) (*Team, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	t := &Team{
		Name:        dto.Name,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateTeam(t); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.NewConflictError("Team with this name already exists", internal.ErrCodeTeamAlreadyExists)
		}
		s.logger.Error("failed to create team", "name", dto.Name, "error", err)
		return nil, internal.NewStorageError("failed to create team", err)
	}

	return t, nil
}

func (s *Service) GetTeamByName(name string) (*Team, error) {
	t, err := s.repo.GetTeamByName(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Team not found", internal.ErrCodeTeamNotFound)
		}
		return nil, internal.NewStorageError("failed to get team", err)
	}
	return t, nil
}

func (s *Service) ListTeams() ([]*Team, error) {
	teams, err := s.repo.ListTeams()
	if err != nil {
		return nil, internal.NewStorageError("failed to list teams", err)
	}
	return teams, nil
}

func (s *Service) UpdateTeam(name string, dto UpdateTeamDTO) (*Team, error) {
	t, err := s.repo.GetTeamByName(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Team not found", internal.ErrCodeTeamNotFound)
		}
		return nil, internal.NewStorageError("failed to get team", err)
	}

	dto.ApplyTo(t)

	if err := s.repo.UpdateTeam(t); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.NewConflictError("Team with this name already exists", internal.ErrCodeTeamAlreadyExists)
		}
		s.logger.Error("failed to update team", "name", name, "error", err)
		return nil, internal.NewStorageError("failed to update team", err)
	}

	return t, nil
}

func (s *Service) DeleteTeam(name string) error {
	if err := s.repo.DeleteTeam(name); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return internal.NewNotFoundError("Team not found", internal.ErrCodeTeamNotFound)
		case errors.Is(err, ErrReferenced):
			return internal.NewConflictError("Team cannot be deleted as it is referenced by other records", internal.ErrCodeReferencedByOthers)
		default:
			s.logger.Error("failed to delete team", "name", name, "error", err)
			return internal.NewStorageError("failed to delete team", err)
		}
	}
	return nil
}

// ---- Roles ----

func (s *Service) CreateRole(dto CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	now := time.Now()
	r := &Role{
		Name:        dto.Name,
		Description: dto.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateRole(r); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.NewConflictError("Role with this name already exists", internal.ErrCodeRoleAlreadyExists)
		}
		s.logger.Error("failed to create role", "name", dto.Name, "error", err)
		return nil, internal.NewStorageError("failed to create role", err)
	}

	return r, nil
}

func (s *Service) ListRoles() ([]*Role, error) {
	roles, err := s.repo.ListRoles()
	if err != nil {
		return nil, internal.NewStorageError("failed to list roles", err)
	}
	return roles, nil
}

func (s *Service) UpdateRole(id int64, dto UpdateRoleDTO) (*Role, error) {
	r, err := s.repo.GetRoleByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Role not found", internal.ErrCodeRoleNotFound)
		}
		return nil, internal.NewStorageError("failed to get role", err)
	}

	dto.ApplyTo(r)

	if err := s.repo.UpdateRole(r); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.NewConflictError("Role with this name already exists", internal.ErrCodeRoleAlreadyExists)
		}
		s.logger.Error("failed to update role", "role_id", id, "error", err)
		return nil, internal.NewStorageError("failed to update role", err)
	}

	return r, nil
}

func (s *Service) DeleteRole(id int64) error {
	// A role still holding permissions must not disappear under them.
	perms, err := s.repo.ListRolePermissionsByRole(id)
	if err != nil {
		return internal.NewStorageError("failed to check role permissions", err)
	}
	if len(perms) > 0 {
		return internal.NewConflictError("Role cannot be deleted as it is referenced by role permissions", internal.ErrCodeReferencedByOthers)
	}

	if err := s.repo.DeleteRole(id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return internal.NewNotFoundError("Role not found", internal.ErrCodeRoleNotFound)
		case errors.Is(err, ErrReferenced):
			return internal.NewConflictError("Role cannot be deleted as it is referenced by other records", internal.ErrCodeReferencedByOthers)
		default:
			s.logger.Error("failed to delete role", "role_id", id, "error", err)
			return internal.NewStorageError("failed to delete role", err)
		}
	}
	return nil
}

// ---- Role permissions ----

func (s *Service) CreateRolePermission(dto CreateRolePermissionDTO) (*RolePermission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	// The role must pre-exist; FK errors on insert would surface as a
	// conflict, which misreports a missing role.
	if _, err := s.repo.GetRoleByID(dto.RoleID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Role not found", internal.ErrCodeRoleNotFound)
		}
		return nil, internal.NewStorageError("failed to get role", err)
	}

	rp := &RolePermission{
		RoleID:     dto.RoleID,
		Permission: dto.Permission,
	}

	if err := s.repo.CreateRolePermission(rp); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.NewConflictError("Role permission already exists for this role", internal.ErrCodeRolePermAlreadyExists)
		}
		s.logger.Error("failed to create role permission", "role_id", dto.RoleID, "permission", dto.Permission, "error", err)
		return nil, internal.NewStorageError("failed to create role permission", err)
	}

	return rp, nil
}

func (s *Service) ListRolePermissions() ([]*RolePermission, error) {
	perms, err := s.repo.ListRolePermissions()
	if err != nil {
		return nil, internal.NewStorageError("failed to list role permissions", err)
	}
	return perms, nil
}

func (s *Service) ListRolePermissionsByRole(roleID int64) ([]*RolePermission, error) {
	perms, err := s.repo.ListRolePermissionsByRole(roleID)
	if err != nil {
		return nil, internal.NewStorageError("failed to list role permissions", err)
	}
	return perms, nil
}

func (s *Service) DeleteRolePermission(roleID int64, permission string) error {
	// Look the grant up first so a bad role/permission pair 404s without
	// touching the delete path.
	if _, err := s.repo.GetRolePermission(roleID, permission); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.NewNotFoundError("Role permission not found", internal.ErrCodeRolePermNotFound)
		}
		return internal.NewStorageError("failed to get role permission", err)
	}

	if err := s.repo.DeleteRolePermission(roleID, permission); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.NewNotFoundError("Role permission not found", internal.ErrCodeRolePermNotFound)
		}
		s.logger.Error("failed to delete role permission", "role_id", roleID, "permission", permission, "error", err)
		return internal.NewStorageError("failed to delete role permission", err)
	}
	return nil
}
