package requisition

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
	CreateItemType(dto CreateItemTypeDTO) (*ItemType, error)
	GetItemType(id int64) (*ItemType, error)
	ListItemTypes() ([]*ItemType, error)
	UpdateItemType(id int64, dto UpdateItemTypeDTO) (*ItemType, error)
	DeleteItemType(id int64) error

	CreateItemBrand(dto CreateItemBrandDTO) (*ItemBrand, error)
	GetItemBrand(id int64) (*ItemBrand, error)
	ListItemBrands() ([]*ItemBrand, error)
	UpdateItemBrand(id int64, dto UpdateItemBrandDTO) (*ItemBrand, error)
	DeleteItemBrand(id int64) error

	CreateItem(dto CreateItemDTO) (*Item, error)
	GetItem(id int64) (*Item, error)
	ListItems() ([]*Item, error)
	UpdateItem(id int64, dto UpdateItemDTO) (*Item, error)
	DeleteItem(id int64) error

	CreateRequisition(createdBy int64) (*Requisition, error)
	GetRequisition(id int64) (*Requisition, error)
	ListRequisitions() ([]*Requisition, error)
	Transition(id int64, target string, actorID int64) (*Requisition, error)
	DeleteRequisition(id int64) error
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

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusUnprocessableEntity, "invalid "+param)
		return 0, false
	}
	return id, true
}

// ---- Item types ----

func (h *Handler) CreateItemType(w http.ResponseWriter, r *http.Request) {
	var dto CreateItemTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.CreateItemType(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) ListItemTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListItemTypes()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, types)
}

func (h *Handler) GetItemType(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "typeID")
	if !ok {
		return
	}

	t, err := h.Service.GetItemType(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) UpdateItemType(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "typeID")
	if !ok {
		return
	}

	var dto UpdateItemTypeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := h.Service.UpdateItemType(id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) DeleteItemType(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "typeID")
	if !ok {
		return
	}

	if err := h.Service.DeleteItemType(id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Item type deleted successfully"})
}

// ---- Item brands ----

func (h *Handler) CreateItemBrand(w http.ResponseWriter, r *http.Request) {
	var dto CreateItemBrandDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.CreateItemBrand(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) ListItemBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.Service.ListItemBrands()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, brands)
}

func (h *Handler) GetItemBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "brandID")
	if !ok {
		return
	}

	b, err := h.Service.GetItemBrand(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) UpdateItemBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "brandID")
	if !ok {
		return
	}

	var dto UpdateItemBrandDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.Service.UpdateItemBrand(id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}

func (h *Handler) DeleteItemBrand(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "brandID")
	if !ok {
		return
	}

	if err := h.Service.DeleteItemBrand(id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Item brand deleted successfully"})
}

// ---- Items ----

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var dto CreateItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	i, err := h.Service.CreateItem(dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, i)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.ListItems()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, items)
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}

	i, err := h.Service.GetItem(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, i)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}

	var dto UpdateItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	i, err := h.Service.UpdateItem(id, dto)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, i)
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "itemID")
	if !ok {
		return
	}

	if err := h.Service.DeleteItem(id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Item deleted successfully"})
}

// ---- Requisitions ----

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*auth.User, bool) {
	principal, ok := auth.UserFromContext(r.Context())
	if !ok || principal == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}
	return principal, true
}

func (h *Handler) CreateRequisition(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.actor(w, r)
	if !ok {
		return
	}

	req, err := h.Service.CreateRequisition(principal.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) ListRequisitions(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.Service.ListRequisitions()
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, reqs)
}

func (h *Handler) GetRequisition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "requisitionID")
	if !ok {
		return
	}

	req, err := h.Service.GetRequisition(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
}

// TransitionRequisition handles PATCH /requisitions/{requisitionID},
// stamping the actor from the request context.
func (h *Handler) TransitionRequisition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "requisitionID")
	if !ok {
		return
	}

	principal, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto TransitionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.writeServiceError(w, err)
		return
	}

	req, err := h.Service.Transition(id, dto.Status, principal.ID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, req)
}

func (h *Handler) DeleteRequisition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "requisitionID")
	if !ok {
		return
	}

	if err := h.Service.DeleteRequisition(id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "Requisition deleted successfully"})
}
