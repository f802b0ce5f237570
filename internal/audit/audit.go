// Package audit writes best-effort activity records for franchisee actions.
package audit

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/Jogatev/chebeneleven-sub000/internal/metrics"
	"github.com/Jogatev/chebeneleven-sub000/internal/model"
	"github.com/Jogatev/chebeneleven-sub000/internal/storage"
)

// Recorder appends activities to storage. A failed write never fails the caller.
type Recorder struct {
	Store storage.Storage
	Log   *zap.Logger
}

// NewRecorder creates a Recorder. A nil logger discards output.
func NewRecorder(store storage.Storage, log *zap.Logger) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Recorder{Store: store, Log: log}
}

// Record stores one activity. details may be nil or any JSON-marshalable value.
// It reports whether the activity was written.
func (r *Recorder) Record(ctx context.Context, userID uint, action, entityType string, entityID uint, details interface{}) bool {
	activity := model.Activity{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}

	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			r.drop(action, err)
			return false
		}
		activity.Details = datatypes.JSON(raw)
	}

	if _, err := r.Store.CreateActivity(ctx, activity); err != nil {
		r.drop(action, err)
		return false
	}
	return true
}

func (r *Recorder) drop(action string, err error) {
	metrics.ActivitiesDropped.WithLabelValues(action).Inc()
	r.Log.Warn("failed to record activity", zap.String("action", action), zap.Error(err))
}
