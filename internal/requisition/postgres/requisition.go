package postgres

import (
	"errors"

	datamodel "github.com/eoffice/office-management/internal/core/datamodel/requisition"
	"github.com/eoffice/office-management/internal/requisition"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// translate maps gorm errors onto the package sentinels so the service layer
// never imports gorm.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return requisition.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return requisition.ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return requisition.ErrReferenced
	default:
		return err
	}
}

// ---- Item types ----

func (r *Repository) CreateItemType(t *requisition.ItemType) error {
	m := t.ToDataModel()
	if err := r.db.Create(m).Error; err != nil {
		return translate(err)
	}
	t.ID = m.ID
	return nil
}

func (r *Repository) GetItemTypeByID(id int64) (*requisition.ItemType, error) {
	var m datamodel.ItemType
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return requisition.ItemTypeFromDataModel(&m), nil
}

func (r *Repository) ListItemTypes() ([]*requisition.ItemType, error) {
	var models []datamodel.ItemType
	if err := r.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, translate(err)
	}
	types := make([]*requisition.ItemType, len(models))
	for i := range models {
		types[i] = requisition.ItemTypeFromDataModel(&models[i])
	}
	return types, nil
}

func (r *Repository) UpdateItemType(t *requisition.ItemType) error {
	return translate(r.db.Save(t.ToDataModel()).Error)
}

func (r *Repository) DeleteItemType(id int64) error {
	// Count referencing items first so the conflict is reported before the
	// delete is attempted, independent of driver FK error shapes.
	var refs int64
	if err := r.db.Model(&datamodel.Item{}).Where("type_id = ?", id).Count(&refs).Error; err != nil {
		return translate(err)
	}
	if refs > 0 {
		return requisition.ErrReferenced
	}

	res := r.db.Delete(&datamodel.ItemType{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return requisition.ErrNotFound
	}
	return nil
}

// ---- Item brands ----

func (r *Repository) CreateItemBrand(b *requisition.ItemBrand) error {
	m := b.ToDataModel()
	if err := r.db.Create(m).Error; err != nil {
		return translate(err)
	}
	b.ID = m.ID
	return nil
}

func (r *Repository) GetItemBrandByID(id int64) (*requisition.ItemBrand, error) {
	var m datamodel.ItemBrand
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return requisition.ItemBrandFromDataModel(&m), nil
}

func (r *Repository) ListItemBrands() ([]*requisition.ItemBrand, error) {
	var models []datamodel.ItemBrand
	if err := r.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, translate(err)
	}
	brands := make([]*requisition.ItemBrand, len(models))
	for i := range models {
		brands[i] = requisition.ItemBrandFromDataModel(&models[i])
	}
	return brands, nil
}

func (r *Repository) UpdateItemBrand(b *requisition.ItemBrand) error {
	return translate(r.db.Save(b.ToDataModel()).Error)
}

func (r *Repository) DeleteItemBrand(id int64) error {
	var refs int64
	if err := r.db.Model(&datamodel.Item{}).Where("brand_id = ?", id).Count(&refs).Error; err != nil {
		return translate(err)
	}
	if refs > 0 {
		return requisition.ErrReferenced
	}

	res := r.db.Delete(&datamodel.ItemBrand{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return requisition.ErrNotFound
	}
	return nil
}

// ---- Items ----

func (r *Repository) CreateItem(i *requisition.Item) error {
	m := i.ToDataModel()
	if err := r.db.Create(m).Error; err != nil {
		return translate(err)
	}
	i.ID = m.ID
	return nil
}

func (r *Repository) GetItemByID(id int64) (*requisition.Item, error) {
	var m datamodel.Item
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return requisition.ItemFromDataModel(&m), nil
}

func (r *Repository) ListItems() ([]*requisition.Item, error) {
	var models []datamodel.Item
	if err := r.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, translate(err)
	}
	items := make([]*requisition.Item, len(models))
	for i := range models {
		items[i] = requisition.ItemFromDataModel(&models[i])
	}
	return items, nil
}

func (r *Repository) UpdateItem(i *requisition.Item) error {
	return translate(r.db.Save(i.ToDataModel()).Error)
}

func (r *Repository) DeleteItem(id int64) error {
	res := r.db.Delete(&datamodel.Item{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return requisition.ErrNotFound
	}
	return nil
}

// ---- Requisitions ----

func (r *Repository) CreateRequisition(req *requisition.Requisition) error {
	m := req.ToDataModel()
	if err := r.db.Create(m).Error; err != nil {
		return translate(err)
	}
	req.ID = m.ID
	return nil
}

func (r *Repository) GetRequisitionByID(id int64) (*requisition.Requisition, error) {
	var m datamodel.Requisition
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return requisition.RequisitionFromDataModel(&m), nil
}

func (r *Repository) ListRequisitions() ([]*requisition.Requisition, error) {
	var models []datamodel.Requisition
	if err := r.db.Order("id ASC").Find(&models).Error; err != nil {
		return nil, translate(err)
	}
	reqs := make([]*requisition.Requisition, len(models))
	for i := range models {
		reqs[i] = requisition.RequisitionFromDataModel(&models[i])
	}
	return reqs, nil
}

func (r *Repository) UpdateRequisition(req *requisition.Requisition) error {
	return translate(r.db.Save(req.ToDataModel()).Error)
}

func (r *Repository) DeleteRequisition(id int64) error {
	res := r.db.Delete(&datamodel.Requisition{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return requisition.ErrNotFound
	}
	return nil
}
