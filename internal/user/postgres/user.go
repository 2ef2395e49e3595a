package postgres

import (
	"errors"

	userDatamodel "github.com/eoffice/office-management/internal/core/datamodel/user"
	"github.com/eoffice/office-management/internal/user"
	"gorm.io/gorm"
)

// Repository implements user.Repository using GORM. The *gorm.DB is opened
// with TranslateError so constraint violations arrive as
// gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) user.Repository {
	return &Repository{db: db}
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return user.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return user.ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return user.ErrReferenced
	default:
		return err
	}
}

// ---- Users ----

func (r *Repository) CreateUser(u *user.User) error {
	row := user.ToDataModel(u)
	if err := r.db.Create(row).Error; err != nil {
		return translate(err)
	}
	u.ID = row.ID
	return nil
}

func (r *Repository) GetUserByUsername(username string) (*user.User, error) {
	var row userDatamodel.User
	if err := r.db.Where("username = ?", username).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return user.FromDataModel(&row), nil
}

func (r *Repository) SearchUsersByPrefix(prefix string) ([]*user.User, error) {
	var rows []userDatamodel.User
	if err := r.db.Where("username LIKE ?", prefix+"%").Order("username ASC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}

	users := make([]*user.User, len(rows))
	for i := range rows {
		users[i] = user.FromDataModel(&rows[i])
	}
	return users, nil
}

func (r *Repository) UpdateUser(u *user.User) error {
	if err := r.db.Save(user.ToDataModel(u)).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *Repository) DeleteUser(username string) error {
	result := r.db.Where("username = ?", username).Delete(&userDatamodel.User{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

// ---- Teams ----

func (r *Repository) CreateTeam(t *user.Team) error {
	row := user.TeamToDataModel(t)
	if err := r.db.Create(row).Error; err != nil {
		return translate(err)
	}
	t.ID = row.ID
	return nil
}

func (r *Repository) GetTeamByName(name string) (*user.Team, error) {
	var row userDatamodel.Team
	if err := r.db.Where("name = ?", name).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return user.TeamFromDataModel(&row), nil
}

func (r *Repository) ListTeams() ([]*user.Team, error) {
	var rows []userDatamodel.Team
	if err := r.db.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}

	teams := make([]*user.Team, len(rows))
	for i := range rows {
		teams[i] = user.TeamFromDataModel(&rows[i])
	}
	return teams, nil
}

func (r *Repository) UpdateTeam(t *user.Team) error {
	if err := r.db.Save(user.TeamToDataModel(t)).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *Repository) DeleteTeam(name string) error {
	var row userDatamodel.Team
	if err := r.db.Where("name = ?", name).First(&row).Error; err != nil {
		return translate(err)
	}

	// Block deletion while users still point at the team, reported before
	// the delete rather than as a driver FK error.
	var refs int64
	if err := r.db.Model(&userDatamodel.User{}).Where("team_id = ?", row.ID).Count(&refs).Error; err != nil {
		return translate(err)
	}
	if refs > 0 {
		return user.ErrReferenced
	}

	if err := r.db.Delete(&row).Error; err != nil {
		return translate(err)
	}
	return nil
}

// ---- Roles ----

func (r *Repository) CreateRole(role *user.Role) error {
	row := user.RoleToDataModel(role)
	if err := r.db.Create(row).Error; err != nil {
		return translate(err)
	}
	role.ID = row.ID
	return nil
}

func (r *Repository) GetRoleByID(id int64) (*user.Role, error) {
	var row userDatamodel.Role
	if err := r.db.Where("id = ?", id).First(&row).Error; err != nil {
		return nil, translate(err)
	}
	return user.RoleFromDataModel(&row), nil
}

func (r *Repository) ListRoles() ([]*user.Role, error) {
	var rows []userDatamodel.Role
	if err := r.db.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, translate(err)
	}

	roles := make([]*user.Role, len(rows))
	for i := range rows {
		roles[i] = user.RoleFromDataModel(&rows[i])
	}
	return roles, nil
}

func (r *Repository) UpdateRole(role *user.Role) error {
	if err := r.db.Save(user.RoleToDataModel(role)).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *Repository) DeleteRole(id int64) error {
	var refs int64
	if err := r.db.Model(&userDatamodel.User{}).Where("role_id = ?", id).Count(&refs).Error; err != nil {
		return translate(err)
	}
	if refs > 0 {
		return user.ErrReferenced
	}

	result := r.db.Where("id = ?", id).Delete(&userDatamodel.Role{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}

// ---- Role permissions ----

func (r *Repository) CreateRolePermission(rp *user.RolePermission) error {
	row := &userDatamodel.RolePermission{
		RoleID:     rp.RoleID,
		Permission: rp.Permission,
	}
	if err := r.db.Create(row).Error; err != nil {
		return translate(err)
	}
	return nil
}

func (r *Repository) GetRolePermission(roleID int64, permission string) (*user.RolePermission, error) {
	var row userDatamodel.RolePermission
	err := r.db.Where("role_id = ? AND permission = ?", roleID, permission).First(&row).Error
	if err != nil {
		return nil, translate(err)
	}
	return user.RolePermissionFromDataModel(&row), nil
}

func (r *Repository) ListRolePermissions() ([]*user.RolePermission, error) {
	var rows []userDatamodel.RolePermission
	if err := r.db.Find(&rows).Error; err != nil {
		return nil, translate(err)
	}

	perms := make([]*user.RolePermission, len(rows))
	for i := range rows {
		perms[i] = user.RolePermissionFromDataModel(&rows[i])
	}
	return perms, nil
}

func (r *Repository) ListRolePermissionsByRole(roleID int64) ([]*user.RolePermission, error) {
	var rows []userDatamodel.RolePermission
	if err := r.db.Where("role_id = ?", roleID).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}

	perms := make([]*user.RolePermission, len(rows))
	for i := range rows {
		perms[i] = user.RolePermissionFromDataModel(&rows[i])
	}
	return perms, nil
}

func (r *Repository) DeleteRolePermission(roleID int64, permission string) error {
	result := r.db.Where("role_id = ? AND permission = ?", roleID, permission).Delete(&userDatamodel.RolePermission{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return user.ErrNotFound
	}
	return nil
}
