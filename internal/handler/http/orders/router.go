package orders

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/aws-samples/amazon-eks-saga-choreography-orders/internal/app/orders"
)

func RegisterRoutes(r chi.Router, s orders.OrderService, pollPrefix string, l *zap.Logger) {
	handler := NewOrderHandler(s, pollPrefix, l.With(zap.String("component", "OrderHTTPHandler")))

	r.Get("/ping", handler.Ping)
	r.Post("/eks-saga/orders", handler.CreateOrder)
	r.NotFound(handler.NotFound)
}
