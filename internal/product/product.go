package product

import (
	"time"

	"github.com/sobatmedia/smm-store/internal"
)

// Product is a catalog entry for one SMM service package. Products are never
// hard-deleted; IsActive=false hides them from the storefront while keeping
// existing orders resolvable.
type Product struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Platform    string    `json:"platform" gorm:"not null"`
	SubPlatform *string   `json:"sub_platform,omitempty" gorm:"column:sub_platform"`
	Description *string   `json:"description,omitempty"`
	Price       int64     `json:"price" gorm:"not null"`
	ImageURL    *string   `json:"image_url,omitempty" gorm:"column:image_url"`
	IsActive    bool      `json:"is_active" gorm:"column:is_active"`
	CreatedAt   time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"column:updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// Summary is the snapshot embedded in order responses.
type Summary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
	Price    int64  `json:"price"`
}

func (p *Product) Summarize() Summary {
	return Summary{
		ID:       p.ID,
		Name:     p.Name,
		Platform: p.Platform,
		Price:    p.Price,
	}
}

// ListFilter is the public catalog query: active products only.
type ListFilter struct {
	Platform    string
	SubPlatform string
	Page        int
	Limit       int
	SortBy      string
	Order       string
}

// AdminListFilter also sees inactive products and supports name search.
type AdminListFilter struct {
	Platform string
	Search   string
	Page     int
	Limit    int
}

// Repository defines the data access methods for products.
type Repository interface {
	Create(p *Product) error
	GetByID(id string) (*Product, error)
	GetActiveByID(id string) (*Product, error)
	ListActive(f ListFilter) ([]*Product, int64, error)
	ListAll(f AdminListFilter) ([]*Product, int64, error)
	Update(p *Product) error
	SoftDelete(id string) error
	CountActive() (int64, error)
	Platforms() ([]string, error)
	SubPlatforms(platform string) ([]string, error)
}

var ErrProductNotFound = internal.NewNotFoundError("Produk tidak ditemukan", internal.ErrCodeProductNotFound)
