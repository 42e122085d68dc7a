package dto

import "github.com/spec-kit/bookstore-api/internal/domain"

// CartCreateRequest payload for POST /carts.
type CartCreateRequest struct {
	UserID   int64 `json:"userId" validate:"required,gt=0"`
	BookID   int64 `json:"bookId" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gte=1"`
}

// CartUpdateRequest payload for PATCH /carts/:id.
type CartUpdateRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// OrderItemRequest is one line of an order.
type OrderItemRequest struct {
	BookID   int64 `json:"bookId" validate:"required,gt=0"`
	Quantity int   `json:"quantity" validate:"required,gte=1"`
}

// OrderCreateRequest payload for POST /orders.
type OrderCreateRequest struct {
	UserID          int64              `json:"userId" validate:"required,gt=0"`
	DeliveryAddress string             `json:"deliveryAddress" validate:"required,max=500"`
	Items           []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderStatusRequest payload for PATCH /orders/:id.
type OrderStatusRequest struct {
	OrderStatus domain.OrderStatus `json:"orderStatus" validate:"required,oneof=PENDING SHIPPED DELIVERED CANCELLED"`
}
