package requisition

import (
	"errors"
	"time"

	datamodel "github.com/eoffice/office-management/internal/core/datamodel/requisition"
)

// Requisition lifecycle states.
const (
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusDelivered = "delivered"
)

// Storage sentinels translated by the repository layer.
var (
	ErrNotFound   = errors.New("record not found")
	ErrDuplicate  = errors.New("record already exists")
	ErrReferenced = errors.New("record is referenced by other records")
)

type ItemType struct {
	ID          int64   `json:"id"`
	ItemType    string  `json:"item_type"`
	Description *string `json:"description,omitempty"`
}

type ItemBrand struct {
	ID          int64   `json:"id"`
	Brand       string  `json:"brand"`
	Description *string `json:"description,omitempty"`
}

type Item struct {
	ID      int64   `json:"id"`
	TypeID  int64   `json:"type_id"`
	BrandID *int64  `json:"brand_id,omitempty"`
	Model   *string `json:"model,omitempty"`
}

type Requisition struct {
	ID             int64      `json:"id"`
	Status         string     `json:"status"`
	SubmissionDate time.Time  `json:"submission_date"`
	ApprovalDate   *time.Time `json:"approval_date,omitempty"`
	DeliveryDate   *time.Time `json:"delivery_date,omitempty"`
	CreatedBy      int64      `json:"created_by"`
	ApprovedBy     *int64     `json:"approved_by,omitempty"`
	DeliveredBy    *int64     `json:"delivered_by,omitempty"`
}

// Approve stamps the approval pair and moves the requisition to approved.
func (r *Requisition) Approve(actorID int64, at time.Time) {
	r.Status = StatusApproved
	r.ApprovalDate = &at
	r.ApprovedBy = &actorID
}

// Deliver stamps the delivery pair and moves the requisition to delivered.
func (r *Requisition) Deliver(actorID int64, at time.Time) {
	r.Status = StatusDelivered
	r.DeliveryDate = &at
	r.DeliveredBy = &actorID
}

func (t *ItemType) ToDataModel() *datamodel.ItemType {
	return &datamodel.ItemType{
		ID:          t.ID,
		ItemType:    t.ItemType,
		Description: t.Description,
	}
}

func ItemTypeFromDataModel(m *datamodel.ItemType) *ItemType {
	return &ItemType{
		ID:          m.ID,
		ItemType:    m.ItemType,
		Description: m.Description,
	}
}

func (b *ItemBrand) ToDataModel() *datamodel.ItemBrand {
	return &datamodel.ItemBrand{
		ID:          b.ID,
		Brand:       b.Brand,
		Description: b.Description,
	}
}

func ItemBrandFromDataModel(m *datamodel.ItemBrand) *ItemBrand {
	return &ItemBrand{
		ID:          m.ID,
		Brand:       m.Brand,
		Description: m.Description,
	}
}

func (i *Item) ToDataModel() *datamodel.Item {
	return &datamodel.Item{
		ID:      i.ID,
		TypeID:  i.TypeID,
		BrandID: i.BrandID,
		Model:   i.Model,
	}
}

func ItemFromDataModel(m *datamodel.Item) *Item {
	return &Item{
		ID:      m.ID,
		TypeID:  m.TypeID,
		BrandID: m.BrandID,
		Model:   m.Model,
	}
}

func (r *Requisition) ToDataModel() *datamodel.Requisition {
	return &datamodel.Requisition{
		ID:             r.ID,
		Status:         r.Status,
		SubmissionDate: r.SubmissionDate,
		ApprovalDate:   r.ApprovalDate,
		DeliveryDate:   r.DeliveryDate,
		CreatedBy:      r.CreatedBy,
		ApprovedBy:     r.ApprovedBy,
		DeliveredBy:    r.DeliveredBy,
	}
}

func RequisitionFromDataModel(m *datamodel.Requisition) *Requisition {
	return &Requisition{
		ID:             m.ID,
		Status:         m.Status,
		SubmissionDate: m.SubmissionDate,
		ApprovalDate:   m.ApprovalDate,
		DeliveryDate:   m.DeliveryDate,
		CreatedBy:      m.CreatedBy,
		ApprovedBy:     m.ApprovedBy,
		DeliveredBy:    m.DeliveredBy,
	}
}
