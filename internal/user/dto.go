package user

import (
	"time"

	"github.com/eoffice/office-management/internal/auth"
)

// ValidationError is returned by DTO validation; handlers map it to 422.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

type CreateUserDTO struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	TeamID    *int64 `json:"team_id,omitempty"`
	RoleID    *int64 `json:"role_id,omitempty"`
}

func (d CreateUserDTO) Validate() error {
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	return nil
}

// UpdateUserDTO uses pointer fields so that absent fields stay untouched.
// Username is the identity key and cannot be updated.
type UpdateUserDTO struct {
	Password  *string `json:"password,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Email     *string `json:"email,omitempty"`
	TeamID    *int64  `json:"team_id,omitempty"`
	RoleID    *int64  `json:"role_id,omitempty"`
	IsActive  *bool   `json:"is_active,omitempty"`
}

// ApplyTo merges only the supplied fields. The password field carries a
// plaintext value and must be hashed by the service before this runs.
func (d UpdateUserDTO) ApplyTo(u *User) {
	if d.FirstName != nil {
		u.FirstName = *d.FirstName
	}
	if d.LastName != nil {
		u.LastName = *d.LastName
	}
	if d.Email != nil {
		u.Email = *d.Email
	}
	if d.TeamID != nil {
		u.TeamID = d.TeamID
	}
	if d.RoleID != nil {
		u.RoleID = d.RoleID
	}
	if d.IsActive != nil {
		u.IsActive = *d.IsActive
	}
	u.UpdatedAt = time.Now()
}

type CreateTeamDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (d CreateTeamDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	return nil
}

type UpdateTeamDTO struct {
	Description *string `json:"description,omitempty"`
}

func (d UpdateTeamDTO) ApplyTo(t *Team) {
	if d.Description != nil {
		t.Description = d.Description
	}
	t.UpdatedAt = time.Now()
}

type CreateRoleDTO struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (d CreateRoleDTO) Validate() error {
	if d.Name == "" {
		return ValidationError{Msg: "name is required"}
	}
	return nil
}

type UpdateRoleDTO struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (d UpdateRoleDTO) ApplyTo(r *Role) {
	if d.Name != nil {
		r.Name = *d.Name
	}
	if d.Description != nil {
		r.Description = d.Description
	}
	r.UpdatedAt = time.Now()
}

type CreateRolePermissionDTO struct {
	RoleID     int64  `json:"role_id"`
	Permission string `json:"permission"`
}

func (d CreateRolePermissionDTO) Validate() error {
	if d.RoleID == 0 {
		return ValidationError{Msg: "role_id is required"}
	}
	if d.Permission == "" {
		return ValidationError{Msg: "permission is required"}
	}
	if !auth.Permission(d.Permission).Valid() {
		return ValidationError{Msg: "unknown permission " + d.Permission}
	}
	return nil
}

// UserInfo is the API view of a user; it never carries the password hash.
type UserInfo struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	TeamID    *int64    `json:"team_id"`
	RoleID    *int64    `json:"role_id"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) ToInfo() UserInfo {
	return UserInfo{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		TeamID:    u.TeamID,
		RoleID:    u.RoleID,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
