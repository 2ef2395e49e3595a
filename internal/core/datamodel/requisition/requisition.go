package requisition

import "time"

type ItemType struct {
	ID          int64   `gorm:"primaryKey"`
	ItemType    string  `gorm:"column:item_type;uniqueIndex;not null"`
	Description *string `gorm:"column:description"`
}

func (ItemType) TableName() string { return "item_types" }

type ItemBrand struct {
	ID          int64   `gorm:"primaryKey"`
	Brand       string  `gorm:"column:brand;uniqueIndex;not null"`
	Description *string `gorm:"column:description"`
}

func (ItemBrand) TableName() string { return "item_brands" }

type Item struct {
	ID      int64   `gorm:"primaryKey"`
	TypeID  int64   `gorm:"column:type_id;not null"`
	BrandID *int64  `gorm:"column:brand_id"`
	Model   *string `gorm:"column:model;uniqueIndex"`
}

func (Item) TableName() string { return "items" }

type Requisition struct {
	ID             int64      `gorm:"primaryKey"`
	Status         string     `gorm:"column:status;not null"`
	SubmissionDate time.Time  `gorm:"column:submission_date;not null"`
	ApprovalDate   *time.Time `gorm:"column:approval_date"`
	DeliveryDate   *time.Time `gorm:"column:delivery_date"`
	CreatedBy      int64      `gorm:"column:created_by;not null"`
	ApprovedBy     *int64     `gorm:"column:approved_by"`
	DeliveredBy    *int64     `gorm:"column:delivered_by"`
}

func (Requisition) TableName() string { return "requisitions" }
