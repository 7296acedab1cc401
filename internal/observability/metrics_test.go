package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/clinic-kit/medapp/pkg/util"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/patients", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/patients", "GET", 200, 4*time.Millisecond)
	m.RecordError("/files/:id", "GET", "NOT_FOUND")

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.Requests["/patients|GET|200"])
	assert.Equal(t, int64(1), snap.Errors["/files/:id|GET|NOT_FOUND"])
	assert.Equal(t, int64(2), snap.TotalRequests)
	assert.InDelta(t, 3.0, snap.AverageDurationMS, 0.001)

	// snapshot is a copy
	snap.Requests["/patients|GET|200"] = 99
	assert.Equal(t, int64(2), m.Snapshot().Requests["/patients|GET|200"])
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	assert.Empty(t, m.Snapshot().Requests)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, 404, StatusForError(fiber.ErrNotFound))
	assert.Equal(t, 503, StatusForError(apperrors.NewStorageUnavailable(nil)))
	assert.Equal(t, 500, StatusForError(errors.New("boom")))
}
