package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"rentkart-backend/internal/domain"
	"rentkart-backend/internal/pricing"
)

func newTestCartService(quotes *MockQuotationRepo, products *MockProductRepo, coupons *MockCouponService) *cartService {
	return &cartService{
		quoteRepo:      quotes,
		productRepo:    products,
		couponSvc:      coupons,
		taxRatePercent: 18,
		draftTTL:       72 * time.Hour,
		now:            fixedNow,
	}
}

func rentalDrill() *domain.Product {
	return &domain.Product{
		ID:       11,
		VendorID: 3,
		Name:     "Hammer drill",
		Tiers: []domain.RentalTier{
			{Unit: domain.RentalUnitDay, Duration: 1, PricePaise: 20000},
		},
		SalePricePaise: 0,
	}
}

func threeDayWindow() *domain.RentalWindow {
	start := time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)
	return &domain.RentalWindow{Start: start, End: start.Add(3 * 24 * time.Hour)}
}

func TestCartService_AddLine(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{UserID: 42, Role: domain.RoleCustomer}

	t.Run("CreatesDraftLazily", func(t *testing.T) {
		quotes := new(MockQuotationRepo)
		products := new(MockProductRepo)
		svc := newTestCartService(quotes, products, new(MockCouponService))

		products.On("GetByID", ctx, int64(11)).Return(rentalDrill(), nil)
		quotes.On("GetDraftByCustomer", ctx, int64(42)).
			Return(nil, &domain.NotFoundError{Entity: "quotation", Key: int64(42)})
		quotes.On("Create", ctx, mock.MatchedBy(func(q *domain.Quotation) bool {
			return q.CustomerID == 42 &&
				q.Status == domain.QuotationStatusDraft &&
				q.ExpiresOn.Equal(fixedNow().Add(72*time.Hour))
		})).Return(nil)
		quotes.On("CreateLine", ctx, mock.Anything).Return(nil)
		quotes.On("Update", ctx, mock.Anything).Return(nil)

		cart, err := svc.AddOrUpdateLine(ctx, principal, 11, 1, domain.LineTypeRental, threeDayWindow())
		assert.NoError(t, err)
		assert.Len(t, cart.Lines, 1)
		assert.Equal(t, int64(60000), cart.Lines[0].TotalPaise) // 200 per day, 3 days
		assert.Equal(t, int64(60000), cart.SubtotalPaise)
		assert.Equal(t, int64(10800), cart.TaxPaise)
		assert.Equal(t, int64(70800), cart.TotalPaise)
		quotes.AssertExpectations(t)
	})

	t.Run("MixedCartTotals", func(t *testing.T) {
		quotes := new(MockQuotationRepo)
		products := new(MockProductRepo)
		svc := newTestCartService(quotes, products, new(MockCouponService))

		cart := &domain.Quotation{
			ID:         5,
			CustomerID: 42,
			Status:     domain.QuotationStatusDraft,
			Window:     threeDayWindow(),
			Lines: []domain.QuotationLine{
				{ID: 1, ProductID: 11, Type: domain.LineTypeRental, Quantity: 1, TotalPaise: 60000, Window: threeDayWindow()},
			},
		}
		gloves := &domain.Product{ID: 12, VendorID: 3, Name: "Work gloves", SalePricePaise: 5000}

		products.On("GetByID", ctx, int64(12)).Return(gloves, nil)
		quotes.On("GetDraftByCustomer", ctx, int64(42)).Return(cart, nil)
		quotes.On("CreateLine", ctx, mock.Anything).Return(nil)
		quotes.On("Update", ctx, mock.Anything).Return(nil)

		got, err := svc.AddOrUpdateLine(ctx, principal, 12, 1, domain.LineTypeSale, nil)
		assert.NoError(t, err)
		assert.Equal(t, int64(65000), got.SubtotalPaise)
		assert.Equal(t, int64(11700), got.TaxPaise)
		assert.Equal(t, int64(76700), got.TotalPaise)
	})

	t.Run("FoldsDuplicateLine", func(t *testing.T) {
		quotes := new(MockQuotationRepo)
		products := new(MockProductRepo)
		svc := newTestCartService(quotes, products, new(MockCouponService))

		cart := &domain.Quotation{
			ID:         5,
			CustomerID: 42,
			Status:     domain.QuotationStatusDraft,
			Lines: []domain.QuotationLine{
				{ID: 1, ProductID: 11, Type: domain.LineTypeRental, Quantity: 1,
					UnitPricePaise: 20000, TotalPaise: 60000, Window: threeDayWindow()},
			},
		}
		products.On("GetByID", ctx, int64(11)).Return(rentalDrill(), nil)
		quotes.On("GetDraftByCustomer", ctx, int64(42)).Return(cart, nil)
		quotes.On("UpdateLine", ctx, mock.MatchedBy(func(l *domain.QuotationLine) bool {
			return l.Quantity == 3 && l.TotalPaise == 180000
		})).Return(nil)
		quotes.On("Update", ctx, mock.Anything).Return(nil)

		got, err := svc.AddOrUpdateLine(ctx, principal, 11, 2, domain.LineTypeRental, nil)
		assert.NoError(t, err)
		assert.Len(t, got.Lines, 1)
		assert.Equal(t, int32(3), got.Lines[0].Quantity)
		quotes.AssertExpectations(t)
	})

	t.Run("FoldToZeroRemovesLine", func(t *testing.T) {
		quotes := new(MockQuotationRepo)
		products := new(MockProductRepo)
		svc := newTestCartService(quotes, products, new(MockCouponService))

		cart := &domain.Quotation{
			ID:         5,
			CustomerID: 42,
			Status:     domain.QuotationStatusDraft,
			Lines: []domain.QuotationLine{
				{ID: 1, ProductID: 11, Type: domain.LineTypeRental, Quantity: 2, TotalPaise: 120000, Window: threeDayWindow()},
			},
		}
		products.On("GetByID", ctx, int64(11)).Return(rentalDrill(), nil)
		quotes.On("GetDraftByCustomer", ctx, int64(42)).Return(cart, nil)
		quotes.On("DeleteLine", ctx, int64(1)).Return(nil)
		quotes.On("Update", ctx, mock.Anything).Return(nil)

		got, err := svc.AddOrUpdateLine(ctx, principal, 11, -2, domain.LineTypeRental, nil)
		assert.NoError(t, err)
		assert.Empty(t, got.Lines)
		assert.Equal(t, int64(0), got.TotalPaise)
		quotes.AssertExpectations(t)
	})

	t.Run("RejectsDeletedProduct", func(t *testing.T) {
		quotes := new(MockQuotationRepo)
		products := new(MockProductRepo)
		svc := newTestCartService(quotes, products, new(MockCouponService))

		deleted := rentalDrill()
		deletedOn := fixedNow()
		deleted.DeletedOn = &deletedOn

		products.On("GetByID", ctx, int64(11)).Return(deleted, nil)

		_, err := svc.AddOrUpdateLine(ctx, principal, 11, 1, domain.LineTypeRental, threeDayWindow())
		assert.ErrorIs(t, err, domain.ErrProductDeleted)
	})

	t.Run("DeletedProductCannotGrowExistingLine", func(t *testing.T) {
		quotes := new(MockQuotationRepo)
		products := new(MockProductRepo)
		svc := newTestCartService(quotes, products, new(MockCouponService))

		deleted := rentalDrill()
		deletedOn := fixedNow()
		deleted.DeletedOn = &deletedOn
		products.On("GetByID", ctx, int64(11)).Return(deleted, nil)

		_, err := svc.AddOrUpdateLine(ctx, principal, 11, 1, domain.LineTypeRental, nil)
		assert.ErrorIs(t, err, domain.ErrProductDeleted)
		quotes.AssertNotCalled(t, "UpdateLine", mock.Anything, mock.Anything)
		quotes.AssertNotCalled(t, "CreateLine", mock.Anything, mock.Anything)
	})

	t.Run("DeletedProductLineCanStillShrink", func(t *testing.T) {
		quotes := new(MockQuotationRepo)
		products := new(MockProductRepo)
		svc := newTestCartService(quotes, products, new(MockCouponService))

		deleted := rentalDrill()
		deletedOn := fixedNow()
		deleted.DeletedOn = &deletedOn

		cart := &domain.Quotation{
			ID:         5,
			CustomerID: 42,
			Status:     domain.QuotationStatusDraft,
			Lines: []domain.QuotationLine{
				{ID: 1, ProductID: 11, Type: domain.LineTypeRental, Quantity: 2, TotalPaise: 120000, Window: threeDayWindow()},
			},
		}
		products.On("GetByID", ctx, int64(11)).Return(deleted, nil)
		quotes.On("GetDraftByCustomer", ctx, int64(42)).Return(cart, nil)
		quotes.On("DeleteLine", ctx, int64(1)).Return(nil)
		quotes.On("Update", ctx, mock.Anything).Return(nil)

		got, err := svc.AddOrUpdateLine(ctx, principal, 11, -2, domain.LineTypeRental, nil)
		assert.NoError(t, err)
		assert.Empty(t, got.Lines)
		quotes.AssertExpectations(t)
	})

	t.Run("ZeroQuantityLeavesNoEmptyDraft", func(t *testing.T) {
		quotes := new(MockQuotationRepo)
		products := new(MockProductRepo)
		svc := newTestCartService(quotes, products, new(MockCouponService))

		products.On("GetByID", ctx, int64(11)).Return(rentalDrill(), nil)
		quotes.On("GetDraftByCustomer", ctx, int64(42)).
			Return(nil, &domain.NotFoundError{Entity: "quotation", Key: int64(42)})

		_, err := svc.AddOrUpdateLine(ctx, principal, 11, 0, domain.LineTypeRental, threeDayWindow())
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
		quotes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCartService_ApplyCoupon(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{UserID: 42, Role: domain.RoleCustomer}

	t.Run("StoresCodeAndDiscount", func(t *testing.T) {
		quotes := new(MockQuotationRepo)
		coupons := new(MockCouponService)
		svc := newTestCartService(quotes, new(MockProductRepo), coupons)

		cart := &domain.Quotation{ID: 5, CustomerID: 42, Status: domain.QuotationStatusDraft, TotalPaise: 76700}
		quotes.On("GetDraftByCustomer", ctx, int64(42)).Return(cart, nil)
		coupons.On("Validate", ctx, "SAVE10", int64(76700), int64(42)).
			Return(validCoupon(), int64(7670), nil)
		quotes.On("Update", ctx, mock.Anything).Return(nil)

		got, err := svc.ApplyCoupon(ctx, principal, "SAVE10")
		assert.NoError(t, err)
		assert.Equal(t, "SAVE10", got.CouponCode)
		assert.Equal(t, int64(7670), got.DiscountPaise)
		assert.Equal(t, int64(69030), got.PayableTotalPaise())
	})

	t.Run("InvalidCouponSurfaces", func(t *testing.T) {
		quotes := new(MockQuotationRepo)
		coupons := new(MockCouponService)
		svc := newTestCartService(quotes, new(MockProductRepo), coupons)

		cart := &domain.Quotation{ID: 5, CustomerID: 42, Status: domain.QuotationStatusDraft, TotalPaise: 5000}
		quotes.On("GetDraftByCustomer", ctx, int64(42)).Return(cart, nil)
		coupons.On("Validate", ctx, "SAVE10", int64(5000), int64(42)).
			Return(nil, int64(0), domain.ErrCouponBelowMinimum)

		_, err := svc.ApplyCoupon(ctx, principal, "SAVE10")
		assert.ErrorIs(t, err, domain.ErrCouponBelowMinimum)
		assert.Empty(t, cart.CouponCode)
	})
}

func TestCartService_RemoveLineDropsStaleCoupon(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{UserID: 42, Role: domain.RoleCustomer}

	quotes := new(MockQuotationRepo)
	coupons := new(MockCouponService)
	svc := newTestCartService(quotes, new(MockProductRepo), coupons)

	cart := &domain.Quotation{
		ID:         5,
		CustomerID: 42,
		Status:     domain.QuotationStatusDraft,
		CouponCode: "SAVE10",
		Lines: []domain.QuotationLine{
			{ID: 1, ProductID: 11, Type: domain.LineTypeRental, Quantity: 1, TotalPaise: 60000},
			{ID: 2, ProductID: 12, Type: domain.LineTypeSale, Quantity: 1, TotalPaise: 5000},
		},
	}
	quotes.On("GetDraftByCustomer", ctx, int64(42)).Return(cart, nil)
	quotes.On("DeleteLine", ctx, int64(1)).Return(nil)
	// The shrunken total no longer satisfies the coupon minimum.
	coupons.On("Validate", ctx, "SAVE10", int64(5900), int64(42)).
		Return(nil, int64(0), domain.ErrCouponBelowMinimum)
	quotes.On("Update", ctx, mock.Anything).Return(nil)

	got, err := svc.RemoveLine(ctx, principal, 1)
	assert.NoError(t, err)
	assert.Empty(t, got.CouponCode)
	assert.Equal(t, int64(0), got.DiscountPaise)
	assert.Equal(t, int64(5900), got.TotalPaise)
}

// memQuoteRepo is a single-customer in-memory QuotationRepository for
// exercising long mutation sequences where per-call mock expectations
// would drown the test.
type memQuoteRepo struct {
	nextQuoteID int64
	nextLineID  int64
	draft       *domain.Quotation
}

func (m *memQuoteRepo) Create(_ context.Context, q *domain.Quotation) error {
	m.nextQuoteID++
	q.ID = m.nextQuoteID
	cp := *q
	cp.Lines = nil
	m.draft = &cp
	return nil
}

func (m *memQuoteRepo) GetByID(_ context.Context, id int64) (*domain.Quotation, error) {
	if m.draft == nil || m.draft.ID != id {
		return nil, &domain.NotFoundError{Entity: "quotation", Key: id}
	}
	return m.snapshot(), nil
}

func (m *memQuoteRepo) GetDraftByCustomer(_ context.Context, customerID int64) (*domain.Quotation, error) {
	if m.draft == nil || m.draft.CustomerID != customerID {
		return nil, &domain.NotFoundError{Entity: "quotation", Key: customerID}
	}
	return m.snapshot(), nil
}

func (m *memQuoteRepo) Update(_ context.Context, q *domain.Quotation) error {
	if m.draft == nil {
		return &domain.NotFoundError{Entity: "quotation", Key: q.ID}
	}
	lines := m.draft.Lines
	cp := *q
	cp.Lines = lines
	m.draft = &cp
	return nil
}

func (m *memQuoteRepo) CreateLine(_ context.Context, line *domain.QuotationLine) error {
	m.nextLineID++
	line.ID = m.nextLineID
	line.QuotationID = m.draft.ID
	m.draft.Lines = append(m.draft.Lines, *line)
	return nil
}

func (m *memQuoteRepo) UpdateLine(_ context.Context, line *domain.QuotationLine) error {
	for i := range m.draft.Lines {
		if m.draft.Lines[i].ID == line.ID {
			m.draft.Lines[i] = *line
			return nil
		}
	}
	return &domain.NotFoundError{Entity: "quotation line", Key: line.ID}
}

func (m *memQuoteRepo) DeleteLine(_ context.Context, lineID int64) error {
	for i := range m.draft.Lines {
		if m.draft.Lines[i].ID == lineID {
			m.draft.Lines = append(m.draft.Lines[:i], m.draft.Lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *memQuoteRepo) DeleteDraftByCustomer(_ context.Context, customerID int64) error {
	if m.draft != nil && m.draft.CustomerID == customerID {
		m.draft = nil
	}
	return nil
}

func (m *memQuoteRepo) ExpireStale(_ context.Context, _ time.Time) (int64, error) { return 0, nil }

func (m *memQuoteRepo) snapshot() *domain.Quotation {
	cp := *m.draft
	cp.Lines = append([]domain.QuotationLine(nil), m.draft.Lines...)
	return &cp
}

// Totals must reconcile with the lines after any add/fold/remove
// sequence, not just the handful of fixed mutations above.
func TestCartService_RandomizedMutationsKeepTotalsConsistent(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{UserID: 42, Role: domain.RoleCustomer}

	quotes := &memQuoteRepo{}
	products := new(MockProductRepo)
	products.On("GetByID", ctx, int64(11)).Return(rentalDrill(), nil)
	products.On("GetByID", ctx, int64(12)).
		Return(&domain.Product{ID: 12, VendorID: 3, Name: "Work gloves", SalePricePaise: 5000}, nil)

	svc := &cartService{
		quoteRepo:      quotes,
		productRepo:    products,
		couponSvc:      new(MockCouponService),
		taxRatePercent: 18,
		draftTTL:       72 * time.Hour,
		now:            fixedNow,
	}

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		linesBefore := -1
		if quotes.draft != nil {
			linesBefore = len(quotes.draft.Lines)
		}

		var cart *domain.Quotation
		var err error
		switch rng.Intn(4) {
		case 0, 1:
			delta := int32(rng.Intn(6) - 2)
			cart, err = svc.AddOrUpdateLine(ctx, principal, 11, delta, domain.LineTypeRental, threeDayWindow())
		case 2:
			delta := int32(rng.Intn(6) - 2)
			cart, err = svc.AddOrUpdateLine(ctx, principal, 12, delta, domain.LineTypeSale, nil)
		case 3:
			cart, err = svc.RemoveLine(ctx, principal, int64(rng.Intn(int(quotes.nextLineID)+1)))
		}
		if err != nil {
			// A rejected mutation (zero delta on an empty cart, absent
			// line) must leave no state behind.
			linesAfter := -1
			if quotes.draft != nil {
				linesAfter = len(quotes.draft.Lines)
			}
			assert.Equal(t, linesBefore, linesAfter, "op %d mutated state on error", i)
			continue
		}

		var sum int64
		for _, line := range cart.Lines {
			sum += line.TotalPaise
		}
		assert.Equal(t, sum, cart.SubtotalPaise, "op %d", i)
		assert.Equal(t, pricing.Percent(sum, 18), cart.TaxPaise, "op %d", i)
		assert.Equal(t, cart.SubtotalPaise+cart.TaxPaise, cart.TotalPaise, "op %d", i)
	}
}

func TestCartService_ClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	principal := domain.Principal{UserID: 42, Role: domain.RoleCustomer}

	quotes := new(MockQuotationRepo)
	svc := newTestCartService(quotes, new(MockProductRepo), new(MockCouponService))
	quotes.On("DeleteDraftByCustomer", ctx, int64(42)).Return(nil).Twice()

	assert.NoError(t, svc.Clear(ctx, principal))
	assert.NoError(t, svc.Clear(ctx, principal))
	quotes.AssertExpectations(t)
}
