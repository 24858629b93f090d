package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"rentkart-backend/internal/domain"
)

func TestStockService_Available(t *testing.T) {
	ctx := context.Background()
	window := *threeDayWindow()

	t.Run("NetOfReservations", func(t *testing.T) {
		stock := new(MockStockRepo)
		orders := new(MockOrderRepo)
		svc := NewStockService(stock, orders)

		stock.On("OnHand", ctx, int64(11)).Return(int64(10), nil)
		orders.On("ReservedQuantity", ctx, int64(11), window).Return(int64(3), nil)

		available, err := svc.Available(ctx, 11, window)
		assert.NoError(t, err)
		assert.Equal(t, int64(7), available)
	})

	t.Run("NeverNegative", func(t *testing.T) {
		stock := new(MockStockRepo)
		orders := new(MockOrderRepo)
		svc := NewStockService(stock, orders)

		stock.On("OnHand", ctx, int64(11)).Return(int64(2), nil)
		orders.On("ReservedQuantity", ctx, int64(11), window).Return(int64(5), nil)

		available, err := svc.Available(ctx, 11, window)
		assert.NoError(t, err)
		assert.Equal(t, int64(0), available)
	})
}

func TestStockService_Adjust(t *testing.T) {
	ctx := context.Background()

	t.Run("CustomerRejected", func(t *testing.T) {
		svc := NewStockService(new(MockStockRepo), new(MockOrderRepo))

		err := svc.Adjust(ctx, domain.Principal{UserID: 42, Role: domain.RoleCustomer}, 11, 5, "restock")
		var authz *domain.AuthorizationError
		assert.ErrorAs(t, err, &authz)
	})

	t.Run("ZeroDeltaRejected", func(t *testing.T) {
		svc := NewStockService(new(MockStockRepo), new(MockOrderRepo))

		err := svc.Adjust(ctx, domain.Principal{UserID: 3, Role: domain.RoleVendor}, 11, 0, "noop")
		var validation *domain.ValidationError
		assert.ErrorAs(t, err, &validation)
	})

	t.Run("VendorAdjusts", func(t *testing.T) {
		stock := new(MockStockRepo)
		svc := NewStockService(stock, new(MockOrderRepo))

		stock.On("Adjust", ctx, int64(11), int64(-2), "damaged in storage").Return(nil)

		err := svc.Adjust(ctx, domain.Principal{UserID: 3, Role: domain.RoleVendor}, 11, -2, "damaged in storage")
		assert.NoError(t, err)
		stock.AssertExpectations(t)
	})
}
