package user

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eoffice/office-management/internal/auth"
	"github.com/eoffice/office-management/internal/transport"
	"github.com/eoffice/office-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateUser(dto CreateUserDTO) (*User, error)
	GetUserByUsername(username string) (*User, error)
	SearchUsers(prefix string) ([]*User, error)
	UpdateUser(username string, dto UpdateUserDTO) (*User, error)
	DeleteUser(username string) error

	CreateTeam(dto CreateTeamDTO) (*Team, error)
	GetTeamByName(name string) (*Team, error)
	ListTeams() ([]*Team, error)
	UpdateTeam(name string, dto UpdateTeamDTO) (*Team, error)
	DeleteTeam(name string) error

	CreateRole(dto CreateRoleDTO) (*Role, error)
	ListRoles() ([]*Role, error)
	UpdateRole(id int64, dto UpdateRoleDTO) (*Role, error)
	DeleteRole(id int64) error

	CreateRolePermission(dto CreateRolePermissionDTO) (*RolePermission, error)
	ListRolePermissions() ([]*RolePermission, error)
	ListRolePermissionsByRole(roleID int64) ([]*RolePermission, error)
	DeleteRolePermission(roleID int64, permission string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	if _, ok := err.(ValidationError); ok {
		h.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	h.WriteAppError(w, err)
}

// ---- Users ----

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.CreateUser(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u.ToInfo())
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	u, err := h.Service.GetUserByUsername(username)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u.ToInfo())
}

// SearchUsers handles GET /users?username=<prefix>.
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("username")

	users, err := h.Service.SearchUsers(prefix)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	infos := make([]UserInfo, len(users))
	for i, u := range users {
		infos[i] = u.ToInfo()
	}
	h.WriteJSON(w, http.StatusOK, infos)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.UpdateUser(username, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u.ToInfo())
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := h.Service.DeleteUser(username); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "User " + username + " deleted successfully"})
}

// GetCurrentUser handles GET /users/me for the authenticated principal.
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Service.GetUserByUsername(principal.Username)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u.ToInfo())
}

// ---- Teams ----

func (h *Handler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var dto CreateTeamDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.CreateTeam(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.Service.ListTeams()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, teams)
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	t, err := h.Service.GetTeamByName(name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) UpdateTeam(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var dto UpdateTeamDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.UpdateTeam(name, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteTeam(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.Service.DeleteTeam(name); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Team " + name + " deleted successfully"})
}

// ---- Roles ----

func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var dto CreateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.CreateRole(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, roles)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusUnprocessableEntity, "invalid role id")
		return
	}

	var dto UpdateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.UpdateRole(id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, role)
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusUnprocessableEntity, "invalid role id")
		return
	}

	if err := h.Service.DeleteRole(id); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Role deleted successfully"})
}

// ---- Role permissions ----

func (h *Handler) CreateRolePermission(w http.ResponseWriter, r *http.Request) {
	var dto CreateRolePermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rp, err := h.Service.CreateRolePermission(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, rp)
}

func (h *Handler) ListRolePermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.Service.ListRolePermissions()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perms)
}

func (h *Handler) ListRolePermissionsByRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusUnprocessableEntity, "invalid role id")
		return
	}

	perms, err := h.Service.ListRolePermissionsByRole(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, perms)
}

func (h *Handler) DeleteRolePermission(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "roleID"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusUnprocessableEntity, "invalid role id")
		return
	}
	permission := chi.URLParam(r, "permission")

	if err := h.Service.DeleteRolePermission(id, permission); err != nil {
		h.writeServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Role permission deleted successfully"})
}
