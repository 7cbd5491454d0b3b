package postgres

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sobatmedia/smm-store/internal/admin"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(a *admin.AdminUser) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	return r.db.Create(a).Error
}

func (r *AdminRepository) GetByEmail(email string) (*admin.AdminUser, error) {
	var a admin.AdminUser
	if err := r.db.First(&a, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepository) GetByID(id string) (*admin.AdminUser, error) {
	var a admin.AdminUser
	if err := r.db.First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepository) RecordLogin(id string, at time.Time) error {
	return r.db.Model(&admin.AdminUser{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_login": at,
			"updated_at": at,
		}).Error
}
