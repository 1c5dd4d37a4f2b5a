package domain

// ServiceName tags every outcome event with its producing microservice.
const ServiceName = "orders"

type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "SUCCESS"
	OutcomeFailure OutcomeKind = "FAIL"
)

// FailureClass identifies which step of an order-creation attempt failed.
type FailureClass string

const (
	FailureRule        FailureClass = "rule"
	FailureCredential  FailureClass = "credential"
	FailureConnection  FailureClass = "connection"
	FailureTransaction FailureClass = "transaction"
	FailurePublish     FailureClass = "publish"
)

// OutcomeEvent announces the terminal state of one order-creation attempt.
// Success events carry the store-assigned order id; failure events carry the
// synthetic attempt id and a failure class. Events are fire-and-forget beyond
// the publish acknowledgment.
type OutcomeEvent struct {
	Service       string       `json:"service"`
	Kind          OutcomeKind  `json:"kind"`
	Timestamp     string       `json:"ts"`
	CorrelationID string       `json:"request_id,omitempty"`
	OrderID       int64        `json:"order_id,omitempty"`
	AttemptID     string       `json:"attempt_id,omitempty"`
	SkuID         string       `json:"order_sku_id,omitempty"`
	Quantity      int          `json:"order_qty,omitempty"`
	FailureClass  FailureClass `json:"type,omitempty"`
	Detail        string       `json:"msg"`
}

func NewSuccessEvent(ts, correlationID string, order *Order, detail string) *OutcomeEvent {
	return &OutcomeEvent{
		Service:       ServiceName,
		Kind:          OutcomeSuccess,
		Timestamp:     ts,
		CorrelationID: correlationID,
		OrderID:       order.ID,
		SkuID:         order.SkuID,
		Quantity:      order.Quantity,
		Detail:        detail,
	}
}

func NewFailureEvent(ts, correlationID, attemptID string, class FailureClass, detail string) *OutcomeEvent {
	return &OutcomeEvent{
		Service:       ServiceName,
		Kind:          OutcomeFailure,
		Timestamp:     ts,
		CorrelationID: correlationID,
		AttemptID:     attemptID,
		FailureClass:  class,
		Detail:        detail,
	}
}
