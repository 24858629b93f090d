package service

import (
	"context"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/repository"
)

type productService struct {
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
}

func NewProductService(productRepo repository.ProductRepository, stockRepo repository.StockRepository) ProductService {
	return &productService{productRepo: productRepo, stockRepo: stockRepo}
}

func (s *productService) Create(ctx context.Context, principal domain.Principal, product *domain.Product) error {
	if !principal.Is(domain.RoleVendor) && !principal.Is(domain.RoleAdmin) {
		return &domain.AuthorizationError{Reason: "only vendors may create products"}
	}
	if product.Name == "" {
		return &domain.ValidationError{Reason: "product name is required"}
	}
	if product.SalePricePaise <= 0 && len(product.Tiers) == 0 {
		return &domain.ValidationError{Reason: "product needs a sale price or at least one rental tier"}
	}
	product.VendorID = principal.UserID

	initial := product.OnHand
	product.OnHand = 0
	if err := s.productRepo.Create(ctx, product); err != nil {
		return err
	}
	// Seed the journal so the on-hand fold starts from the initial
	// quantity instead of drifting immediately.
	if initial > 0 {
		if err := s.stockRepo.Adjust(ctx, product.ID, initial, "initial stock"); err != nil {
			return err
		}
		product.OnHand = initial
	}
	return nil
}

func (s *productService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *productService) Update(ctx context.Context, principal domain.Principal, product *domain.Product) error {
	existing, err := s.productRepo.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	if existing.VendorID != principal.UserID && !principal.Is(domain.RoleAdmin) {
		return &domain.AuthorizationError{Reason: "product belongs to another vendor"}
	}
	return s.productRepo.Update(ctx, product)
}

func (s *productService) Delete(ctx context.Context, principal domain.Principal, id int64) error {
	existing, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.VendorID != principal.UserID && !principal.Is(domain.RoleAdmin) {
		return &domain.AuthorizationError{Reason: "product belongs to another vendor"}
	}
	return s.productRepo.SoftDelete(ctx, id)
}

func (s *productService) List(ctx context.Context, page, pageSize int32) ([]domain.Product, int64, error) {
	return s.productRepo.List(ctx, page, pageSize)
}
