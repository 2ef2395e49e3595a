package requisition

import "strings"

type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

type CreateItemTypeDTO struct {
	ItemType    string  `json:"item_type"`
	Description *string `json:"description"`
}

func (d CreateItemTypeDTO) Validate() error {
	if strings.TrimSpace(d.ItemType) == "" {
		return ValidationError{Msg: "item_type is required"}
	}
	return nil
}

// UpdateItemTypeDTO carries only the fields present in the request body;
// nil fields leave the stored value untouched.
type UpdateItemTypeDTO struct {
	ItemType    *string `json:"item_type"`
	Description *string `json:"description"`
}

func (d UpdateItemTypeDTO) ApplyTo(t *ItemType) {
	if d.ItemType != nil {
		t.ItemType = *d.ItemType
	}
	if d.Description != nil {
		t.Description = d.Description
	}
}

type CreateItemBrandDTO struct {
	Brand       string  `json:"brand"`
	Description *string `json:"description"`
}

func (d CreateItemBrandDTO) Validate() error {
	if strings.TrimSpace(d.Brand) == "" {
		return ValidationError{Msg: "brand is required"}
	}
	return nil
}

type UpdateItemBrandDTO struct {
	Brand       *string `json:"brand"`
	Description *string `json:"description"`
}

func (d UpdateItemBrandDTO) ApplyTo(b *ItemBrand) {
	if d.Brand != nil {
		b.Brand = *d.Brand
	}
	if d.Description != nil {
		b.Description = d.Description
	}
}

type CreateItemDTO struct {
	TypeID  int64   `json:"type_id"`
	BrandID *int64  `json:"brand_id"`
	Model   *string `json:"model"`
}

func (d CreateItemDTO) Validate() error {
	if d.TypeID <= 0 {
		return ValidationError{Msg: "type_id is required"}
	}
	return nil
}

type UpdateItemDTO struct {
	TypeID  *int64  `json:"type_id"`
	BrandID *int64  `json:"brand_id"`
	Model   *string `json:"model"`
}

func (d UpdateItemDTO) ApplyTo(i *Item) {
	if d.TypeID != nil {
		i.TypeID = *d.TypeID
	}
	if d.BrandID != nil {
		i.BrandID = d.BrandID
	}
	if d.Model != nil {
		i.Model = d.Model
	}
}

// TransitionDTO names the target lifecycle state for a requisition.
type TransitionDTO struct {
	Status string `json:"status"`
}

func (d TransitionDTO) Validate() error {
	if strings.TrimSpace(d.Status) == "" {
		return ValidationError{Msg: "status is required"}
	}
	return nil
}
