package orders

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/app/orders"
	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/domain"
)

// traceHeader carries the opaque correlation id assigned by the ingress.
const traceHeader = "X-Amzn-Trace-Id"

type OrderHandler struct {
	service    orders.OrderService
	pollPrefix string
	logger     *zap.Logger
}

func NewOrderHandler(s orders.OrderService, pollPrefix string, l *zap.Logger) *OrderHandler {
	return &OrderHandler{service: s, pollPrefix: pollPrefix, logger: l}
}

type pollResponse struct {
	Poll string `json:"poll"`
}

type errorDetail struct {
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message"`
	Poll      string `json:"poll,omitempty"`
}

type errorResponse struct {
	Msg errorDetail `json:"msg"`
}

func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	correlationID := r.Header.Get(traceHeader)

	var req orders.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body for CreateOrder", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, errorResponse{Msg: errorDetail{
			RequestID: correlationID,
			Message:   "Invalid request body",
		}})
		return
	}

	res, err := h.service.CreateOrder(r.Context(), &req, correlationID)
	if err != nil {
		var orderErr *domain.OrderError
		if errors.As(err, &orderErr) {
			status := http.StatusInternalServerError
			if orderErr.ClientFault() {
				status = http.StatusBadRequest
			}
			writeJSON(w, status, errorResponse{Msg: errorDetail{
				RequestID: correlationID,
				Message:   orderErr.Detail,
				Poll:      h.pollPath(orderErr.AttemptID),
			}})
			return
		}
		h.logger.Error("Error creating order", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Msg: errorDetail{
			RequestID: correlationID,
			Message:   "Internal server error",
		}})
		return
	}

	writeJSON(w, http.StatusCreated, pollResponse{
		Poll: h.pollPath(fmt.Sprintf("%d", res.OrderID)),
	})
}

func (h *OrderHandler) Ping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"msg": "OK"})
}

func (h *OrderHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"msg": fmt.Sprintf("%s is not supported.", r.URL.Path),
	})
}

func (h *OrderHandler) pollPath(id string) string {
	return h.pollPrefix + "/" + id
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
