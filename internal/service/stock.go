package service

import (
	"context"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/logger"
	"rentkart-backend/internal/repository"
)

type stockService struct {
	stockRepo repository.StockRepository
	orderRepo repository.OrderRepository
}

func NewStockService(stockRepo repository.StockRepository, orderRepo repository.OrderRepository) StockService {
	return &stockService{stockRepo: stockRepo, orderRepo: orderRepo}
}

func (s *stockService) OnHand(ctx context.Context, productID int64) (int64, error) {
	return s.stockRepo.OnHand(ctx, productID)
}

// Available is on-hand minus the units reserved by confirmed orders
// whose rental windows overlap the requested one.
func (s *stockService) Available(ctx context.Context, productID int64, window domain.RentalWindow) (int64, error) {
	onHand, err := s.stockRepo.OnHand(ctx, productID)
	if err != nil {
		return 0, err
	}
	reserved, err := s.orderRepo.ReservedQuantity(ctx, productID, window)
	if err != nil {
		return 0, err
	}
	available := onHand - reserved
	if available < 0 {
		available = 0
	}
	return available, nil
}

func (s *stockService) Movements(ctx context.Context, productID int64, page, pageSize int32) ([]domain.StockMovement, int64, error) {
	return s.stockRepo.ListMovements(ctx, productID, page, pageSize)
}

func (s *stockService) Adjust(ctx context.Context, principal domain.Principal, productID int64, delta int64, note string) error {
	if !principal.Is(domain.RoleVendor) && !principal.Is(domain.RoleAdmin) {
		return &domain.AuthorizationError{Reason: "only vendors may adjust stock"}
	}
	if delta == 0 {
		return &domain.ValidationError{Reason: "adjustment delta must be non-zero"}
	}
	return s.stockRepo.Adjust(ctx, productID, delta, note)
}

func (s *stockService) Reconcile(ctx context.Context) ([]repository.StockDrift, error) {
	drifts, err := s.stockRepo.Drifting(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range drifts {
		// Drift means a quantity changed outside the journal. Surface
		// it loudly; never patch it silently.
		logger.Error("stock ledger drift detected",
			"product_id", d.ProductID, "on_hand", d.OnHand, "journal_sum", d.JournalSum)
	}
	return drifts, nil
}
