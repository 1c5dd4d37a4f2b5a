package order_repo

import (
	"context"

	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/credentials"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/domain"
)

// Store opens connections to the relational store. Every connection attempt
// authenticates with a fresh ephemeral token; there is no pooling or reuse
// across requests.
type Store interface {
	Connect(ctx context.Context, token credentials.Token) (Conn, error)
}

// Conn is a store connection exclusively owned by one orchestration run. The
// owner must Close it on every exit path.
type Conn interface {
	Begin(ctx context.Context) (Tx, error)
	Close() error
}

// Tx exposes the transaction primitives the saga needs. Rollback is safe to
// call even when no write occurred.
type Tx interface {
	// InsertOrder writes one order row and returns the store-assigned id.
	InsertOrder(ctx context.Context, order *domain.Order) (int64, error)
	Commit() error
	Rollback() error
}
