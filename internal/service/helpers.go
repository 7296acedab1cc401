package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/clinic-kit/medapp/internal/events"
	"github.com/clinic-kit/medapp/internal/repository"
	"github.com/clinic-kit/medapp/internal/storage"
	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

// Dependencies bundles what the clinic services need.
type Dependencies struct {
	Store      repository.Store
	Blobs      storage.BlobStore
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

func (d Dependencies) logger() *zap.Logger {
	if d.Logger == nil {
		return zap.NewNop()
	}
	return d.Logger
}

// mapStoreError turns repository errors into DomainErrors for resource id.
func mapStoreError(err error, resource string, id int64) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, map[string]any{"id": id})
	}
	return apperrors.NewInternalError(err)
}

func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
