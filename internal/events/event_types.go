package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/bookstore-api/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventBookChanged EventType = "book_changed"
	EventOrderPlaced EventType = "order_placed"
	EventUserBanned  EventType = "user_banned"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID int64       `json:"userId"`
	Role   domain.Role `json:"role"`
}

// ActorFrom builds the actor of an authenticated request; nil means the system.
func ActorFrom(claim *domain.IdentityClaim) Actor {
	if claim == nil {
		return Actor{}
	}
	return Actor{UserID: claim.SubjectID, Role: claim.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, actor Actor, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Actor:     actor,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// BookChange names what happened to a book.
type BookChange string

const (
	BookCreated   BookChange = "created"
	BookUpdated   BookChange = "updated"
	BookDeleted   BookChange = "deleted"
	BookFavorited BookChange = "favorited"
	BookReviewed  BookChange = "reviewed"
)

// BookChangedPayload payload.
type BookChangedPayload struct {
	BookID int64      `json:"bookId"`
	Change BookChange `json:"change"`
}

// OrderPlacedPayload payload.
type OrderPlacedPayload struct {
	OrderID    int64  `json:"orderId"`
	UserID     int64  `json:"userId"`
	Email      string `json:"email"`
	TotalPrice int64  `json:"totalPrice"`
	ItemCount  int    `json:"itemCount"`
}

// UserBannedPayload payload.
type UserBannedPayload struct {
	UserID   int64     `json:"userId"`
	Email    string    `json:"email"`
	BannedAt time.Time `json:"bannedAt"`
}
