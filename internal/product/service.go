package product

import (
	"log/slog"

	"github.com/sobatmedia/smm-store/internal"
)

// Sort columns the public catalog accepts. Anything else falls back to
// created_at so query params never reach the SQL layer unchecked.
var allowedSortColumns = map[string]bool{
	"created_at": true,
	"price":      true,
	"name":       true,
}

type Service struct {
	repository Repository
	logger     *slog.Logger
}

func NewService(repository Repository, logger *slog.Logger) *Service {
	return &Service{
		repository: repository,
		logger:     logger,
	}
}

// ListProducts returns active catalog entries for the storefront.
func (s *Service) ListProducts(f ListFilter) ([]*Product, Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if !allowedSortColumns[f.SortBy] {
		f.SortBy = "created_at"
	}
	if f.Order != "asc" {
		f.Order = "desc"
	}

	products, total, err := s.repository.ListActive(f)
	if err != nil {
		s.logger.Error("failed to list products", "error", err)
		return nil, Pagination{}, internal.NewInternalError("gagal mengambil daftar produk", err)
	}

	return products, NewPagination(f.Page, f.Limit, total), nil
}

// GetProduct returns one active product for the storefront detail page.
func (s *Service) GetProduct(id string) (*Product, error) {
	p, err := s.repository.GetActiveByID(id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return p, nil
}

// Platforms returns the distinct platforms of active products.
func (s *Service) Platforms() ([]string, error) {
	platforms, err := s.repository.Platforms()
	if err != nil {
		s.logger.Error("failed to list platforms", "error", err)
		return nil, internal.NewInternalError("gagal mengambil daftar platform", err)
	}
	return platforms, nil
}

// SubPlatforms returns the distinct sub platforms under one platform.
func (s *Service) SubPlatforms(platform string) ([]string, error) {
	subs, err := s.repository.SubPlatforms(platform)
	if err != nil {
		s.logger.Error("failed to list sub platforms", "platform", platform, "error", err)
		return nil, internal.NewInternalError("gagal mengambil daftar sub platform", err)
	}
	return subs, nil
}
