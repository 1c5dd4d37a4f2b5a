package orders

// CreateOrderRequest mirrors the inbound JSON body. Field names follow the
// published API contract of the orders endpoint.
type CreateOrderRequest struct {
	SkuID    string  `json:"order_sku_id"`
	Quantity int     `json:"order_qty"`
	Price    float64 `json:"order_price"`
}

// CreateOrderResult carries the store-assigned id of a committed order. The
// id is never synthetic: it is exactly what the insert returned.
type CreateOrderResult struct {
	OrderID int64
}

// Channels names the topics outcome events are routed to. Selection between
// them is part of configuration, not orchestration logic.
type Channels struct {
	Success string
	Failure string
}
