package product

import (
	"github.com/sobatmedia/smm-store/internal"
	"github.com/sobatmedia/smm-store/internal/core/common/validation"
)

type CreateProductDTO struct {
	Name        string  `json:"name"`
	Platform    string  `json:"platform"`
	SubPlatform *string `json:"sub_platform,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       int64   `json:"price"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (d *CreateProductDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("name", d.Name).Required().MaxLength(150)
	validator.Field("platform", d.Platform).Required().MaxLength(50)
	validator.Field("price", d.Price).Required().MinInt(1, internal.ErrCodeInvalidPrice)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// UpdateProductDTO carries only the fields the caller wants changed.
type UpdateProductDTO struct {
	Name        *string `json:"name,omitempty"`
	Platform    *string `json:"platform,omitempty"`
	SubPlatform *string `json:"sub_platform,omitempty"`
	Description *string `json:"description,omitempty"`
	Price       *int64  `json:"price,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (d *UpdateProductDTO) Validate() error {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", *d.Name).Required().MaxLength(150)
	}
	if d.Platform != nil {
		v.Field("platform", *d.Platform).Required().MaxLength(50)
	}
	if d.Price != nil {
		v.Field("price", *d.Price).MinInt(1, internal.ErrCodeInvalidPrice)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := int(total) / limit
	if int(total)%limit != 0 {
		pages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
