package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/clock"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/credentials"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/domain"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/infrastructure/kafka"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/repository/order_repo"
)

// timestampLayout renders millisecond precision in the configured timezone.
const timestampLayout = "2006-01-02T15:04:05.000"

// OrderService runs the order-creation saga: validate, fetch an ephemeral
// token, open a connection, insert inside a transaction, publish the outcome,
// then commit only if the publish was acknowledged. A committed order and an
// announced order are never allowed to diverge.
type OrderService interface {
	CreateOrder(ctx context.Context, req *CreateOrderRequest, correlationID string) (*CreateOrderResult, error)
}

// Config is the orchestrator's explicit configuration, replacing the
// env-derived globals of older revisions of this service.
type Config struct {
	Endpoint    credentials.Endpoint
	Channels    Channels
	Location    *time.Location
	CallTimeout time.Duration
}

type orderService struct {
	cfg       Config
	provider  credentials.Provider
	store     order_repo.Store
	publisher kafka.Publisher
	clock     clock.Clock
	logger    *zap.Logger
}

func NewOrderService(
	cfg Config,
	provider credentials.Provider,
	store order_repo.Store,
	publisher kafka.Publisher,
	clk clock.Clock,
	logger *zap.Logger,
) OrderService {
	return &orderService{
		cfg:       cfg,
		provider:  provider,
		store:     store,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

// CreateOrder executes one attempt. Every terminal branch emits exactly one
// outcome event; only the success branch commits, and only after the success
// event was acknowledged. There is no retry loop: a failure ends the attempt
// and the caller decides whether to resubmit.
func (s *orderService) CreateOrder(ctx context.Context, req *CreateOrderRequest, correlationID string) (*CreateOrderResult, error) {
	attemptID := uuid.NewString()
	now := s.clock.Now().In(s.cfg.Location)
	ts := now.Format(timestampLayout)

	log := s.logger.With(zap.String("request_id", correlationID), zap.String("attempt_id", attemptID))

	order, err := domain.NewOrder(req.SkuID, req.Quantity, req.Price, now)
	if err != nil {
		log.Warn("Rejected order request", zap.Error(err))
		return nil, s.reportFailure(ctx, log, ts, correlationID, attemptID, domain.FailureRule, err.Error(), err)
	}

	if order.ExceedsQuantityLimit() {
		log.Warn("Order quantity above limit", zap.Int("order_qty", order.Quantity))
		return nil, s.reportFailure(ctx, log, ts, correlationID, attemptID, domain.FailureRule,
			domain.ErrQuantityExceeded.Error(), domain.ErrQuantityExceeded)
	}

	token, err := s.getToken(ctx)
	if err != nil {
		log.Error("Error obtaining token", zap.Error(err))
		return nil, s.reportFailure(ctx, log, ts, correlationID, attemptID, domain.FailureCredential,
			fmt.Sprintf("error obtaining token - %v", err), err)
	}
	log.Debug("Obtained token")

	conn, err := s.connect(ctx, token)
	if err != nil {
		log.Error("Database connection failed", zap.Error(err))
		return nil, s.reportFailure(ctx, log, ts, correlationID, attemptID, domain.FailureConnection,
			fmt.Sprintf("database connection failed - %v", err), err)
	}
	defer func() { _ = conn.Close() }()

	// No timeout wrapper here: database/sql ties the transaction's lifetime
	// to this context and would roll it back the moment a wrapper is canceled.
	tx, err := conn.Begin(ctx)
	if err != nil {
		log.Error("Error beginning transaction", zap.Error(err))
		return nil, s.reportFailure(ctx, log, ts, correlationID, attemptID, domain.FailureTransaction,
			fmt.Sprintf("error beginning transaction - %v", err), err)
	}

	orderID, err := s.insert(ctx, tx, order)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn("Rollback after failed insert also failed", zap.Error(rbErr))
		}
		log.Error("Error running query", zap.Error(err))
		return nil, s.reportFailure(ctx, log, ts, correlationID, attemptID, domain.FailureTransaction,
			fmt.Sprintf("error running query - %v", err), err)
	}
	order.ID = orderID

	event := domain.NewSuccessEvent(ts, correlationID, order, fmt.Sprintf("Order created - %d", orderID))
	if pubErr := s.publish(ctx, s.cfg.Channels.Success, event); pubErr != nil {
		// The insert succeeded but nobody was told. Undo it: a customer must
		// never see a committed order whose creation was never announced.
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("Rollback after failed success publish also failed", zap.Error(rbErr))
		}
		log.Error("Success event could not be published, order rolled back",
			zap.Int64("order_id", orderID), zap.Error(pubErr))
		return nil, domain.NewOrderError(domain.FailurePublish, attemptID,
			fmt.Sprintf("order %d rolled back - success event could not be published: %v", orderID, pubErr), pubErr)
	}

	if err := tx.Commit(); err != nil {
		log.Error("Error committing transaction", zap.Int64("order_id", orderID), zap.Error(err))
		return nil, domain.NewOrderError(domain.FailureTransaction, attemptID,
			fmt.Sprintf("error committing transaction - %v", err), err)
	}

	log.Info("Order created", zap.Int64("order_id", orderID))
	return &CreateOrderResult{OrderID: orderID}, nil
}

// reportFailure publishes the branch's failure event and shapes the error
// returned to the caller. When the failure notification itself cannot be
// published, both failures are reported: the error classifies as publish
// (server fault) and keeps the original failure in the detail and the chain.
func (s *orderService) reportFailure(ctx context.Context, log *zap.Logger, ts, correlationID, attemptID string, class domain.FailureClass, detail string, cause error) error {
	event := domain.NewFailureEvent(ts, correlationID, attemptID, class, detail)
	if pubErr := s.publish(ctx, s.cfg.Channels.Failure, event); pubErr != nil {
		log.Error("Failure event could not be published",
			zap.String("failure_class", string(class)), zap.Error(pubErr))
		return domain.NewOrderError(domain.FailurePublish, attemptID,
			fmt.Sprintf("failure event could not be published: %v (original failure: %s)", pubErr, detail),
			errors.Join(cause, pubErr))
	}
	return domain.NewOrderError(class, attemptID, detail, cause)
}

func (s *orderService) getToken(ctx context.Context) (credentials.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	return s.provider.Token(ctx, s.cfg.Endpoint)
}

func (s *orderService) connect(ctx context.Context, token credentials.Token) (order_repo.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	return s.store.Connect(ctx, token)
}

func (s *orderService) insert(ctx context.Context, tx order_repo.Tx, order *domain.Order) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	return tx.InsertOrder(ctx, order)
}

func (s *orderService) publish(ctx context.Context, topic string, event *domain.OutcomeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome event: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	defer cancel()
	return s.publisher.Publish(ctx, topic, payload)
}
