package admin

import (
	"github.com/sobatmedia/smm-store/internal"
	"github.com/sobatmedia/smm-store/internal/core/common/validation"
)

type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d *LoginDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("email", d.Email).Required()
	validator.Field("password", d.Password).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type LoginResult struct {
	Token string     `json:"token"`
	Admin *AdminView `json:"admin"`
}

// AdminView is AdminUser without the credential fields.
type AdminView struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	LastLogin *string `json:"last_login,omitempty"`
}

func NewAdminView(a *AdminUser) *AdminView {
	v := &AdminView{
		ID:    a.ID,
		Email: a.Email,
		Name:  a.Name,
		Role:  a.Role,
	}
	if a.LastLogin != nil {
		s := a.LastLogin.Format("2006-01-02T15:04:05Z07:00")
		v.LastLogin = &s
	}
	return v
}

type CreateAdminDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

func (d *CreateAdminDTO) Validate() error {
	if d.Role == "" {
		d.Role = RoleAdmin
	}
	validator := validation.NewValidator()

	validator.Field("email", d.Email).Required().MaxLength(150)
	validator.Field("password", d.Password).Required().MinLength(8)
	validator.Field("name", d.Name).Required().MaxLength(100)
	validator.Field("role", d.Role).OneOf([]string{RoleAdmin, RoleSuperadmin}, internal.ErrCodeInvalidStatus)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

type BatchDeleteDTO struct {
	Criteria string `json:"criteria"`
}

type BatchDeleteResult struct {
	Deleted int64 `json:"deleted"`
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
