package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/config"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/credentials"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/domain"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/repository/order_repo"
)

type pgStore struct {
	endpoint config.StoreConfig
	logger   *zap.Logger
}

func NewStore(endpoint config.StoreConfig, l *zap.Logger) order_repo.Store {
	return &pgStore{endpoint: endpoint, logger: l}
}

func (s *pgStore) Connect(ctx context.Context, token credentials.Token) (order_repo.Conn, error) {
	db, err := sql.Open("postgres", s.endpoint.BuildDSN(string(token)))
	if err != nil {
		s.logger.Error("Failed to open database handle", zap.String("host", s.endpoint.Host), zap.Error(err))
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}

	// sql.Open does not dial; ping so auth rejections surface here, as a
	// connection failure, not later inside the transaction.
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		s.logger.Error("Database connection failed", zap.String("host", s.endpoint.Host), zap.Error(err))
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	s.logger.Debug("Database connected", zap.String("host", s.endpoint.Host))
	return &pgConn{db: db, logger: s.logger}, nil
}

type pgConn struct {
	db     *sql.DB
	logger *zap.Logger
}

func (c *pgConn) Begin(ctx context.Context) (order_repo.Tx, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		c.logger.Error("Failed to begin transaction", zap.Error(err))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &pgTx{tx: tx, logger: c.logger}, nil
}

func (c *pgConn) Close() error {
	if err := c.db.Close(); err != nil {
		c.logger.Error("Error closing database connection", zap.Error(err))
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

type pgTx struct {
	tx     *sql.Tx
	logger *zap.Logger
}

func (t *pgTx) InsertOrder(ctx context.Context, order *domain.Order) (int64, error) {
	query := `INSERT INTO orders (order_sku_id, order_qty, order_price, order_timestamp) VALUES ($1, $2, $3, $4) RETURNING id`

	var id int64
	err := t.tx.QueryRowContext(ctx, query, order.SkuID, order.Quantity, order.Price, order.CreatedAt).Scan(&id)
	if err != nil {
		t.logger.Error("Failed to insert order", zap.String("sku_id", order.SkuID), zap.Error(err))
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}
	t.logger.Debug("Order inserted in transaction", zap.Int64("order_id", id))
	return id, nil
}

func (t *pgTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		t.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (t *pgTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil {
		t.logger.Warn("Failed to roll back transaction", zap.Error(err))
		return fmt.Errorf("failed to roll back transaction: %w", err)
	}
	return nil
}
