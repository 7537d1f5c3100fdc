package models

import "time"

type OrderStatus string

const (
	OrderStatusPending  OrderStatus = "Pending"
	OrderStatusComplete OrderStatus = "Complete"
)

// LineItem is one resolved entry of an order. Price is the product's unit
// price at the moment the order was placed.
type LineItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	LineTotal float64 `json:"line_total"`
}

type Order struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	CustomerName string      `gorm:"size:120;not null" json:"customer_name"`
	Products     []LineItem  `gorm:"type:text;serializer:json" json:"products"`
	TotalPrice   float64     `gorm:"not null" json:"total_price"`
	Status       OrderStatus `gorm:"size:20;not null;default:'Pending'" json:"status"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderLine is a requested (product name, quantity) pair.
type OrderLine struct {
	Name     string
	Quantity int
}

type OrderLineRequest struct {
	Name     *string `json:"name" binding:"required"`
	Quantity int     `json:"quantity"`
}

// CreateOrderRequest accepts both the multi-product shape (Products) and the
// older single-product shape (ProductName + Quantity).
type CreateOrderRequest struct {
	CustomerName *string            `json:"customer_name" binding:"required"`
	Products     []OrderLineRequest `json:"products" binding:"omitempty,dive"`
	ProductName  *string            `json:"product_name"`
	Quantity     int                `json:"quantity"`
}

// Lines returns the requested line items, folding the single-product shape
// into a one-element list.
func (r CreateOrderRequest) Lines() []OrderLine {
	if len(r.Products) > 0 {
		lines := make([]OrderLine, 0, len(r.Products))
		for _, p := range r.Products {
			lines = append(lines, OrderLine{Name: *p.Name, Quantity: p.Quantity})
		}
		return lines
	}
	if r.ProductName != nil {
		return []OrderLine{{Name: *r.ProductName, Quantity: r.Quantity}}
	}
	return nil
}

// SingleProduct reports whether the request used the single-product shape.
func (r CreateOrderRequest) SingleProduct() bool {
	return len(r.Products) == 0 && r.ProductName != nil
}

type CreateOrderResponse struct {
	Message    string  `json:"message"`
	OrderID    uint    `json:"order_id"`
	TotalPrice float64 `json:"total_price"`
}

type OrderEvent struct {
	OrderID      uint        `json:"order_id"`
	CustomerName string      `json:"customer_name"`
	LineCount    int         `json:"line_count"`
	Status       OrderStatus `json:"status"`
	TotalPrice   float64     `json:"total_price"`
	EventType    string      `json:"event_type"` // order_created
}

const EventOrderCreated = "order_created"

func NewOrderCreatedEvent(order *Order) OrderEvent {
	return OrderEvent{
		OrderID:      order.ID,
		CustomerName: order.CustomerName,
		LineCount:    len(order.Products),
		Status:       order.Status,
		TotalPrice:   order.TotalPrice,
		EventType:    EventOrderCreated,
	}
}
