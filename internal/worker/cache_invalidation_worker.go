package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/bookstore-api/internal/cache"
	"github.com/spec-kit/bookstore-api/internal/events"
)

// StartCacheInvalidationWorker evicts catalogue entries whenever a book changes.
func StartCacheInvalidationWorker(dispatcher events.Dispatcher, store cache.Store, logger *zap.Logger) {
	if dispatcher == nil || store == nil {
		return
	}
	dispatcher.Subscribe(events.EventBookChanged, func(ctx context.Context, event events.Event) error {
		payload, ok := event.Payload.(events.BookChangedPayload)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
		}
		if err := evictBook(ctx, store, payload.BookID); err != nil {
			return err
		}
		logger.Debug("book cache evicted",
			zap.Int64("book_id", payload.BookID),
			zap.String("change", string(payload.Change)))
		return nil
	})
}

func evictBook(ctx context.Context, store cache.Store, bookID int64) error {
	if err := cache.Bump(ctx, store, cache.BookGeneration); err != nil {
		return err
	}
	if bookID > 0 {
		if err := store.Delete(ctx, cache.BookKeys(bookID)...); err != nil {
			return err
		}
	}
	if err := store.DeleteByPrefix(ctx, cache.BookListPrefix); err != nil {
		return err
	}
	return store.DeleteByPrefix(ctx, cache.BookPopularPrefix)
}
