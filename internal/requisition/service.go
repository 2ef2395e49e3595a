package requisition

import (
	"errors"
	"log/slog"
	"time"

	"github.com/eoffice/office-management/internal"
)

// Repository is the persistence contract for the item catalog and the
// requisition ledger. Implementations translate driver errors into the
// package sentinels (ErrNotFound, ErrDuplicate, ErrReferenced).
type Repository interface {
	CreateItemType(t *ItemType) error
	GetItemTypeByID(id int64) (*ItemType, error)
	ListItemTypes() ([]*ItemType, error)
	UpdateItemType(t *ItemType) error
	DeleteItemType(id int64) error

	CreateItemBrand(b *ItemBrand) error
	GetItemBrandByID(id int64) (*ItemBrand, error)
	ListItemBrands() ([]*ItemBrand, error)
	UpdateItemBrand(b *ItemBrand) error
	DeleteItemBrand(id int64) error

	CreateItem(i *Item) error
	GetItemByID(id int64) (*Item, error)
	ListItems() ([]*Item, error)
	UpdateItem(i *Item) error
	DeleteItem(id int64) error

	CreateRequisition(r *Requisition) error
	GetRequisitionByID(id int64) (*Requisition, error)
	ListRequisitions() ([]*Requisition, error)
	UpdateRequisition(r *Requisition) error
	DeleteRequisition(id int64) error
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// ---- Item types ----

func (s *Service) CreateItemType(dto CreateItemTypeDTO) (*ItemType, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	t := &ItemType{
		ItemType:    dto.ItemType,
		Description: dto.Description,
	}

	if err := s.repo.CreateItemType(t); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.NewConflictError("Item type already exists", internal.ErrCodeCatalogAlreadyExists)
		}
		s.logger.Error("failed to create item type", "item_type", dto.ItemType, "error", err)
		return nil, internal.NewStorageError("failed to create item type", err)
	}

	return t, nil
}

func (s *Service) GetItemType(id int64) (*ItemType, error) {
	t, err := s.repo.GetItemTypeByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Item type not found", internal.ErrCodeItemTypeNotFound)
		}
		return nil, internal.NewStorageError("failed to get item type", err)
	}
	return t, nil
}

func (s *Service) ListItemTypes() ([]*ItemType, error) {
	types, err := s.repo.ListItemTypes()
	if err != nil {
		return nil, internal.NewStorageError("failed to list item types", err)
	}
	return types, nil
}

func (s *Service) UpdateItemType(id int64, dto UpdateItemTypeDTO) (*ItemType, error) {
	t, err := s.repo.GetItemTypeByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Item type not found", internal.ErrCodeItemTypeNotFound)
		}
		return nil, internal.NewStorageError("failed to get item type", err)
	}

	dto.ApplyTo(t)

	if err := s.repo.UpdateItemType(t); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.NewConflictError("Item type already exists", internal.ErrCodeCatalogAlreadyExists)
		}
		return nil, internal.NewStorageError("failed to update item type", err)
	}
	return t, nil
}

func (s *Service) DeleteItemType(id int64) error {
	if err := s.repo.DeleteItemType(id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return internal.NewNotFoundError("Item type not found", internal.ErrCodeItemTypeNotFound)
		case errors.Is(err, ErrReferenced):
			return internal.NewConflictError("Item type cannot be deleted as it is referenced by other records", internal.ErrCodeReferencedByOthers)
		default:
			return internal.NewStorageError("failed to delete item type", err)
		}
	}
	return nil
}

// ---- Item brands ----

func (s *Service) CreateItemBrand(dto CreateItemBrandDTO) (*ItemBrand, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	b := &ItemBrand{
		Brand:       dto.Brand,
		Description: dto.Description,
	}

	if err := s.repo.CreateItemBrand(b); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.NewConflictError("Item brand already exists", internal.ErrCodeCatalogAlreadyExists)
		}
		s.logger.Error("failed to create item brand", "brand", dto.Brand, "error", err)
		return nil, internal.NewStorageError("failed to create item brand", err)
	}

	return b, nil
}

func (s *Service) GetItemBrand(id int64) (*ItemBrand, error) {
	b, err := s.repo.GetItemBrandByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Item brand not found", internal.ErrCodeItemBrandNotFound)
		}
		return nil, internal.NewStorageError("failed to get item brand", err)
	}
	return b, nil
}

func (s *Service) ListItemBrands() ([]*ItemBrand, error) {
	brands, err := s.repo.ListItemBrands()
	if err != nil {
		return nil, internal.NewStorageError("failed to list item brands", err)
	}
	return brands, nil
}

func (s *Service) UpdateItemBrand(id int64, dto UpdateItemBrandDTO) (*ItemBrand, error) {
	b, err := s.repo.GetItemBrandByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Item brand not found", internal.ErrCodeItemBrandNotFound)
		}
		return nil, internal.NewStorageError("failed to get item brand", err)
	}

	dto.ApplyTo(b)

	if err := s.repo.UpdateItemBrand(b); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.NewConflictError("Item brand already exists", internal.ErrCodeCatalogAlreadyExists)
		}
		return nil, internal.NewStorageError("failed to update item brand", err)
	}
	return b, nil
}

func (s *Service) DeleteItemBrand(id int64) error {
	if err := s.repo.DeleteItemBrand(id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return internal.NewNotFoundError("Item brand not found", internal.ErrCodeItemBrandNotFound)
		case errors.Is(err, ErrReferenced):
			return internal.NewConflictError("Item brand cannot be deleted as it is referenced by other records", internal.ErrCodeReferencedByOthers)
		default:
			return internal.NewStorageError("failed to delete item brand", err)
		}
	}
	return nil
}

// ---- Items ----

// checkItemRefs verifies the catalog rows an item points at before any write
// reaches storage, so a dangling reference never persists a partial row.
func (s *Service) checkItemRefs(typeID int64, brandID *int64) error {
	if _, err := s.repo.GetItemTypeByID(typeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.NewNotFoundError("Item type not found", internal.ErrCodeItemTypeNotFound)
		}
		return internal.NewStorageError("failed to get item type", err)
	}
	if brandID != nil {
		if _, err := s.repo.GetItemBrandByID(*brandID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return internal.NewNotFoundError("Item brand not found", internal.ErrCodeItemBrandNotFound)
			}
			return internal.NewStorageError("failed to get item brand", err)
		}
	}
	return nil
}

func (s *Service) CreateItem(dto CreateItemDTO) (*Item, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if err := s.checkItemRefs(dto.TypeID, dto.BrandID); err != nil {
		return nil, err
	}

	i := &Item{
		TypeID:  dto.TypeID,
		BrandID: dto.BrandID,
		Model:   dto.Model,
	}

	if err := s.repo.CreateItem(i); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.NewConflictError("Item already exists", internal.ErrCodeCatalogAlreadyExists)
		}
		s.logger.Error("failed to create item", "type_id", dto.TypeID, "error", err)
		return nil, internal.NewStorageError("failed to create item", err)
	}

	return i, nil
}

func (s *Service) GetItem(id int64) (*Item, error) {
	i, err := s.repo.GetItemByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Item not found", internal.ErrCodeItemNotFound)
		}
		return nil, internal.NewStorageError("failed to get item", err)
	}
	return i, nil
}

func (s *Service) ListItems() ([]*Item, error) {
	items, err := s.repo.ListItems()
	if err != nil {
		return nil, internal.NewStorageError("failed to list items", err)
	}
	return items, nil
}

func (s *Service) UpdateItem(id int64, dto UpdateItemDTO) (*Item, error) {
	i, err := s.repo.GetItemByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Item not found", internal.ErrCodeItemNotFound)
		}
		return nil, internal.NewStorageError("failed to get item", err)
	}

	dto.ApplyTo(i)

	if err := s.checkItemRefs(i.TypeID, i.BrandID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateItem(i); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, internal.NewConflictError("Item already exists", internal.ErrCodeCatalogAlreadyExists)
		}
		return nil, internal.NewStorageError("failed to update item", err)
	}
	return i, nil
}

func (s *Service) DeleteItem(id int64) error {
	if err := s.repo.DeleteItem(id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return internal.NewNotFoundError("Item not found", internal.ErrCodeItemNotFound)
		case errors.Is(err, ErrReferenced):
			return internal.NewConflictError("Item cannot be deleted as it is referenced by other records", internal.ErrCodeReferencedByOthers)
		default:
			return internal.NewStorageError("failed to delete item", err)
		}
	}
	return nil
}

// ---- Requisitions ----

// CreateRequisition opens a requisition in the submitted state on behalf of
// the acting user. Approval and delivery fields stay empty until the matching
// transition stamps them.
func (s *Service) CreateRequisition(createdBy int64) (*Requisition, error) {
	r := &Requisition{
		Status:         StatusSubmitted,
		SubmissionDate: time.Now(),
		CreatedBy:      createdBy,
	}

	if err := s.repo.CreateRequisition(r); err != nil {
		s.logger.Error("failed to create requisition", "created_by", createdBy, "error", err)
		return nil, internal.NewStorageError("failed to create requisition", err)
	}

	s.logger.Info("requisition submitted", "requisition_id", r.ID, "created_by", createdBy)
	return r, nil
}

func (s *Service) GetRequisition(id int64) (*Requisition, error) {
	r, err := s.repo.GetRequisitionByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Requisition not found", internal.ErrCodeRequisitionNotFound)
		}
		return nil, internal.NewStorageError("failed to get requisition", err)
	}
	return r, nil
}

func (s *Service) ListRequisitions() ([]*Requisition, error) {
	reqs, err := s.repo.ListRequisitions()
	if err != nil {
		return nil, internal.NewStorageError("failed to list requisitions", err)
	}
	return reqs, nil
}

// Transition moves a requisition to the named target state, stamping the
// matching date and actor pair. Transitions are deliberately not guarded by
// the current state: re-approving or delivering a submitted requisition
// simply restamps the target fields.
func (s *Service) Transition(id int64, target string, actorID int64) (*Requisition, error) {
	r, err := s.repo.GetRequisitionByID(id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, internal.NewNotFoundError("Requisition not found", internal.ErrCodeRequisitionNotFound)
		}
		return nil, internal.NewStorageError("failed to get requisition", err)
	}

	now := time.Now()
	switch target {
	case StatusApproved:
		r.Approve(actorID, now)
	case StatusDelivered:
		r.Deliver(actorID, now)
	default:
		return nil, internal.NewValidationError("Invalid requisition status: "+target, internal.ErrCodeInvalidTransition)
	}

	if err := s.repo.UpdateRequisition(r); err != nil {
		return nil, internal.NewStorageError("failed to update requisition", err)
	}

	s.logger.Info("requisition transitioned", "requisition_id", r.ID, "status", r.Status, "actor_id", actorID)
	return r, nil
}

func (s *Service) DeleteRequisition(id int64) error {
	if err := s.repo.DeleteRequisition(id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return internal.NewNotFoundError("Requisition not found", internal.ErrCodeRequisitionNotFound)
		}
		return internal.NewStorageError("failed to delete requisition", err)
	}
	return nil
}
