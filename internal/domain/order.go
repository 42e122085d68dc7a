package domain

import "time"

// OrderStatus enumerates fulfilment states.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Valid reports whether the status is one of the known values.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// Order is a placed purchase.
type Order struct {
	ID              int64       `json:"id"`
	UserID          int64       `json:"userId"`
	DeliveryAddress string      `json:"deliveryAddress"`
	TotalPrice      int64       `json:"totalPrice"`
	Status          OrderStatus `json:"orderStatus"`
	User            *UserRef    `json:"user,omitempty"`
	Items           []OrderItem `json:"orderItems"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// OrderItem captures the price of a book at purchase time.
type OrderItem struct {
	ID              int64    `json:"id"`
	OrderID         int64    `json:"orderId"`
	BookID          int64    `json:"bookId"`
	Quantity        int      `json:"quantity"`
	PriceAtPurchase int64    `json:"priceAtPurchase"`
	Book            *BookRef `json:"book,omitempty"`
}

// OrderStatistics aggregates sales for administrators.
type OrderStatistics struct {
	TotalOrders int64            `json:"totalOrders"`
	TotalSales  int64            `json:"totalSales"`
	TopBooks    []TopSellingBook `json:"topBooks"`
}

// TopSellingBook is one row of the best-seller ranking.
type TopSellingBook struct {
	BookID        int64  `json:"bookId"`
	Title         string `json:"title"`
	TotalQuantity int64  `json:"totalQuantity"`
}
