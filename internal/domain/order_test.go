package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		skuID    string
		quantity int
		price    float64
		wantErr  error
	}{
		{name: "valid order", skuID: "X1", quantity: 1, price: 10.5},
		{name: "free item is valid", skuID: "X1", quantity: 1, price: 0},
		{name: "missing sku", skuID: "", quantity: 1, price: 1, wantErr: ErrInvalidOrder},
		{name: "zero quantity", skuID: "X1", quantity: 0, price: 1, wantErr: ErrInvalidOrder},
		{name: "negative quantity", skuID: "X1", quantity: -1, price: 1, wantErr: ErrInvalidOrder},
		{name: "negative price", skuID: "X1", quantity: 1, price: -0.01, wantErr: ErrInvalidOrder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewOrder(tt.skuID, tt.quantity, tt.price, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Zero(t, order.ID)
			require.Equal(t, now, order.CreatedAt)
		})
	}
}

func TestExceedsQuantityLimit(t *testing.T) {
	t.Parallel()

	now := time.Now()

	at40, err := NewOrder("X1", MaxOrderQuantity, 1, now)
	require.NoError(t, err)
	require.False(t, at40.ExceedsQuantityLimit())

	at41, err := NewOrder("X1", MaxOrderQuantity+1, 1, now)
	require.NoError(t, err)
	require.True(t, at41.ExceedsQuantityLimit())
}

func TestOrderError(t *testing.T) {
	t.Parallel()

	cause := ErrQuantityExceeded
	err := NewOrderError(FailureRule, "attempt-1", "rejected", cause)

	require.ErrorIs(t, err, cause)
	require.True(t, err.ClientFault())
	require.Contains(t, err.Error(), "rule")
	require.Contains(t, err.Error(), "rejected")

	srvErr := NewOrderError(FailureConnection, "attempt-2", "down", nil)
	require.False(t, srvErr.ClientFault())
}
