package postgres

import (
	"errors"

	"github.com/eoffice/office-management/internal/auth"
	userDatamodel "github.com/eoffice/office-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// Repository backs the auth service with the users and role_permissions
// tables.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentials(username string) (string, *auth.User, error) {
	var row userDatamodel.User
	err := r.db.Where("username = ? AND is_active = ?", username, true).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, errors.New("user not found")
		}
		return "", nil, err
	}
	return row.PasswordHash, toAuthUser(&row), nil
}

func (r *Repository) GetByUsername(username string) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return toAuthUser(&row), nil
}

func (r *Repository) PermissionsForRole(roleID int64) ([]auth.Permission, error) {
	var rows []userDatamodel.RolePermission
	if err := r.db.Where("role_id = ?", roleID).Find(&rows).Error; err != nil {
		return nil, err
	}

	perms := make([]auth.Permission, 0, len(rows))
	for _, row := range rows {
		perms = append(perms, auth.Permission(row.Permission))
	}
	return perms, nil
}

func toAuthUser(row *userDatamodel.User) *auth.User {
	return &auth.User{
		ID:       row.ID,
		Username: row.Username,
		Email:    row.Email,
		RoleID:   row.RoleID,
		IsActive: row.IsActive,
	}
}
