package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/clinic-kit/medapp/internal/events"
)

func TestAuditService_LogsEveryEvent(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dispatcher := events.NewInMemoryDispatcher()
	NewAuditService(dispatcher, zap.New(core)).RegisterHandlers()

	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, eventType := range events.AllTypes {
		require.NoError(t, dispatcher.Publish(ctx, events.Event{Type: eventType, EntityID: int64(i + 1), Timestamp: at}))
	}

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, len(events.AllTypes))
	assert.Equal(t, "audit", entries[0].LoggerName)
	assert.Equal(t, string(events.AllTypes[0]), entries[0].ContextMap()["event_type"])
	assert.EqualValues(t, 1, entries[0].ContextMap()["entity_id"])
}

func TestAuditService_NilDispatcher(t *testing.T) {
	assert.NotPanics(t, func() { NewAuditService(nil, nil).RegisterHandlers() })
}
