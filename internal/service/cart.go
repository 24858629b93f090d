package service

import (
	"context"
	"sync"
	"time"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/pricing"
	"rentkart-backend/internal/repository"
)

type cartService struct {
	quoteRepo   repository.QuotationRepository
	productRepo repository.ProductRepository
	couponSvc   CouponService

	taxRatePercent int64
	draftTTL       time.Duration

	// Per-customer locks: a cart has a single writer at a time, so a
	// pair of concurrent mutations cannot race the totals recompute.
	locks sync.Map // customerID -> *sync.Mutex
	now   func() time.Time
}

func NewCartService(quoteRepo repository.QuotationRepository, productRepo repository.ProductRepository, couponSvc CouponService, taxRatePercent int64, draftTTL time.Duration) CartService {
	return &cartService{
		quoteRepo:      quoteRepo,
		productRepo:    productRepo,
		couponSvc:      couponSvc,
		taxRatePercent: taxRatePercent,
		draftTTL:       draftTTL,
		now:            time.Now,
	}
}

func (s *cartService) lock(customerID int64) func() {
	mu, _ := s.locks.LoadOrStore(customerID, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	return mu.(*sync.Mutex).Unlock
}

func (s *cartService) Get(ctx context.Context, principal domain.Principal) (*domain.Quotation, error) {
	return s.quoteRepo.GetDraftByCustomer(ctx, principal.UserID)
}

func (s *cartService) AddOrUpdateLine(ctx context.Context, principal domain.Principal, productID int64, quantity int32, lineType domain.LineType, window *domain.RentalWindow) (*domain.Quotation, error) {
	unlock := s.lock(principal.UserID)
	defer unlock()

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	// A delisted product may leave a cart but never grow in one.
	if quantity > 0 && product.IsDeleted() {
		return nil, domain.ErrProductDeleted
	}

	cart, err := s.quoteRepo.GetDraftByCustomer(ctx, principal.UserID)
	if err != nil && !isNotFound(err) {
		return nil, err
	}
	if cart != nil {
		// Supplying a window moves the cart-level default forward for
		// lines not yet explicitly dated.
		if window != nil {
			cart.Window = window
		}
		if existing := findLine(cart, productID, lineType); existing != nil {
			return s.foldIntoLine(ctx, cart, existing, product, quantity, window)
		}
	}

	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if cart == nil {
		cart = &domain.Quotation{
			CustomerID: principal.UserID,
			Status:     domain.QuotationStatusDraft,
			Window:     window,
			ExpiresOn:  s.now().Add(s.draftTTL),
		}
		if err := s.quoteRepo.Create(ctx, cart); err != nil {
			return nil, err
		}
	}

	lineWindow := window
	if lineType == domain.LineTypeRental && lineWindow == nil {
		lineWindow = cart.Window
	}
	price, err := pricing.PriceLine(product, quantity, lineType, lineWindow)
	if err != nil {
		return nil, err
	}

	line := domain.QuotationLine{
		QuotationID:    cart.ID,
		ProductID:      productID,
		Type:           lineType,
		Quantity:       quantity,
		UnitPricePaise: price.UnitPaise,
		TotalPaise:     price.TotalPaise,
	}
	if lineType == domain.LineTypeRental {
		line.Window = lineWindow
	}
	if err := s.quoteRepo.CreateLine(ctx, &line); err != nil {
		return nil, err
	}
	cart.Lines = append(cart.Lines, line)

	return s.recompute(ctx, principal, cart)
}

// foldIntoLine adds the quantity delta to an existing line, repricing
// it with the most current window; a fold to zero or below removes the
// line.
func (s *cartService) foldIntoLine(ctx context.Context, cart *domain.Quotation, line *domain.QuotationLine, product *domain.Product, delta int32, window *domain.RentalWindow) (*domain.Quotation, error) {
	newQuantity := line.Quantity + delta
	if newQuantity <= 0 {
		if err := s.quoteRepo.DeleteLine(ctx, line.ID); err != nil {
			return nil, err
		}
		removeLine(cart, line.ID)
		return s.recompute(ctx, domain.Principal{UserID: cart.CustomerID}, cart)
	}

	lineWindow := line.Window
	if window != nil {
		lineWindow = window
	}
	if line.Type == domain.LineTypeRental && lineWindow == nil {
		lineWindow = cart.Window
	}

	price, err := pricing.PriceLine(product, newQuantity, line.Type, lineWindow)
	if err != nil {
		return nil, err
	}
	line.Quantity = newQuantity
	line.UnitPricePaise = price.UnitPaise
	line.TotalPaise = price.TotalPaise
	if line.Type == domain.LineTypeRental {
		line.Window = lineWindow
	}
	if err := s.quoteRepo.UpdateLine(ctx, line); err != nil {
		return nil, err
	}
	return s.recompute(ctx, domain.Principal{UserID: cart.CustomerID}, cart)
}

func (s *cartService) RemoveLine(ctx context.Context, principal domain.Principal, lineID int64) (*domain.Quotation, error) {
	unlock := s.lock(principal.UserID)
	defer unlock()

	cart, err := s.quoteRepo.GetDraftByCustomer(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	if findLineByID(cart, lineID) == nil {
		return nil, &domain.NotFoundError{Entity: "quotation line", Key: lineID}
	}
	if err := s.quoteRepo.DeleteLine(ctx, lineID); err != nil {
		return nil, err
	}
	removeLine(cart, lineID)
	return s.recompute(ctx, principal, cart)
}

func (s *cartService) ApplyCoupon(ctx context.Context, principal domain.Principal, code string) (*domain.Quotation, error) {
	unlock := s.lock(principal.UserID)
	defer unlock()

	cart, err := s.quoteRepo.GetDraftByCustomer(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	_, discount, err := s.couponSvc.Validate(ctx, code, cart.TotalPaise, principal.UserID)
	if err != nil {
		return nil, err
	}
	cart.CouponCode = code
	cart.DiscountPaise = discount
	if err := s.quoteRepo.Update(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear drops the customer's draft quotation and all its lines.
// Idempotent: clearing an absent cart succeeds.
func (s *cartService) Clear(ctx context.Context, principal domain.Principal) error {
	unlock := s.lock(principal.UserID)
	defer unlock()
	return s.quoteRepo.DeleteDraftByCustomer(ctx, principal.UserID)
}

// recompute refreshes subtotal/tax/total from the lines, re-clamping
// any applied coupon discount against the new total.
func (s *cartService) recompute(ctx context.Context, principal domain.Principal, cart *domain.Quotation) (*domain.Quotation, error) {
	totals := pricing.Totals(cart.Lines, s.taxRatePercent)
	cart.SubtotalPaise = totals.SubtotalPaise
	cart.TaxPaise = totals.TaxPaise
	cart.TotalPaise = totals.TotalPaise

	if cart.CouponCode != "" {
		_, discount, err := s.couponSvc.Validate(ctx, cart.CouponCode, cart.TotalPaise, principal.UserID)
		if err != nil {
			// The coupon no longer applies at the new total; drop it
			// rather than carrying a stale discount.
			cart.CouponCode = ""
			cart.DiscountPaise = 0
		} else {
			cart.DiscountPaise = discount
		}
	}

	if err := s.quoteRepo.Update(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func findLine(cart *domain.Quotation, productID int64, lineType domain.LineType) *domain.QuotationLine {
	for i := range cart.Lines {
		if cart.Lines[i].ProductID == productID && cart.Lines[i].Type == lineType {
			return &cart.Lines[i]
		}
	}
	return nil
}

func findLineByID(cart *domain.Quotation, lineID int64) *domain.QuotationLine {
	for i := range cart.Lines {
		if cart.Lines[i].ID == lineID {
			return &cart.Lines[i]
		}
	}
	return nil
}

func removeLine(cart *domain.Quotation, lineID int64) {
	for i := range cart.Lines {
		if cart.Lines[i].ID == lineID {
			cart.Lines = append(cart.Lines[:i], cart.Lines[i+1:]...)
			return
		}
	}
}
