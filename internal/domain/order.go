package domain

import (
	"errors"
	"time"
)

// MaxOrderQuantity is the business ceiling on a single order. Exactly 40 is
// accepted, 41 and above is rejected.
const MaxOrderQuantity = 40

var (
	ErrInvalidOrder     = errors.New("invalid order data")
	ErrQuantityExceeded = errors.New("order quantity cannot be greater than 40")
)

// Order is the persisted entity. ID is assigned by the store on insert and is
// zero until then. Orders are append-only: never updated or deleted.
type Order struct {
	ID        int64
	SkuID     string
	Quantity  int
	Price     float64
	CreatedAt time.Time
}

func NewOrder(skuID string, quantity int, price float64, createdAt time.Time) (*Order, error) {
	if skuID == "" || quantity <= 0 || price < 0 {
		return nil, ErrInvalidOrder
	}
	return &Order{
		SkuID:     skuID,
		Quantity:  quantity,
		Price:     price,
		CreatedAt: createdAt,
	}, nil
}

// ExceedsQuantityLimit reports whether the order violates the quantity rule.
func (o *Order) ExceedsQuantityLimit() bool {
	return o.Quantity > MaxOrderQuantity
}
