package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sobatmedia/smm-store/internal/product"
)

type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(p *product.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	return r.db.Create(p).Error
}

func (r *ProductRepository) GetByID(id string) (*product.Product, error) {
	var p product.Product
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) GetActiveByID(id string) (*product.Product, error) {
	var p product.Product
	if err := r.db.First(&p, "id = ? AND is_active = ?", id, true).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) ListActive(f product.ListFilter) ([]*product.Product, int64, error) {
	query := r.db.Model(&product.Product{}).Where("is_active = ?", true)

	if f.Platform != "" {
		query = query.Where("platform = ?", f.Platform)
	}
	if f.SubPlatform != "" {
		query = query.Where("sub_platform = ?", f.SubPlatform)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*product.Product
	offset := (f.Page - 1) * f.Limit
	err := query.
		Order(fmt.Sprintf("%s %s", f.SortBy, f.Order)).
		Limit(f.Limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductRepository) ListAll(f product.AdminListFilter) ([]*product.Product, int64, error) {
	query := r.db.Model(&product.Product{})

	if f.Platform != "" {
		query = query.Where("platform = ?", f.Platform)
	}
	if f.Search != "" {
		query = query.Where("name LIKE ?", "%"+f.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []*product.Product
	offset := (f.Page - 1) * f.Limit
	err := query.
		Order("created_at DESC").
		Limit(f.Limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductRepository) Update(p *product.Product) error {
	p.UpdatedAt = time.Now()
	result := r.db.Save(p)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProductRepository) SoftDelete(id string) error {
	result := r.db.Model(&product.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ProductRepository) CountActive() (int64, error) {
	var count int64
	err := r.db.Model(&product.Product{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

func (r *ProductRepository) Platforms() ([]string, error) {
	var platforms []string
	err := r.db.Model(&product.Product{}).
		Where("is_active = ?", true).
		Distinct("platform").
		Order("platform ASC").
		Pluck("platform", &platforms).Error
	return platforms, err
}

func (r *ProductRepository) SubPlatforms(platform string) ([]string, error) {
	query := r.db.Model(&product.Product{}).
		Where("is_active = ? AND sub_platform IS NOT NULL", true)
	if platform != "" {
		query = query.Where("platform = ?", platform)
	}

	var subs []string
	err := query.
		Distinct("sub_platform").
		Order("sub_platform ASC").
		Pluck("sub_platform", &subs).Error
	return subs, err
}
