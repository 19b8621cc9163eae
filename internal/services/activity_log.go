package services

import (
	"errors"
	"fmt"
	"storybank/internal/models"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	KeyRecentActivity = "recentActivity"
	MaxActivities     = 50
)

var ErrInvalidActivity = errors.New("invalid activity")

type ActivityLogInterface interface {
	AddActivity(rec models.ActivityRecord) (models.ActivityRecord, error)
	List(limit int) []models.ActivityRecord
}

// ActivityLog keeps the most recent activities, newest first.
type ActivityLog struct {
	cache *CacheStore
	newID func() string
}

func NewActivityLog(cache *CacheStore) *ActivityLog {
	return &ActivityLog{
		cache: cache,
		newID: uuid.NewString,
	}
}

// AddActivity stamps rec with a fresh id and the current time, prepends it and keeps
// only the MaxActivities most recent records.
func (a *ActivityLog) AddActivity(rec models.ActivityRecord) (models.ActivityRecord, error) {
	if rec.Detail == nil {
		return models.ActivityRecord{}, fmt.Errorf("%w: missing detail", ErrInvalidActivity)
	}
	switch rec.Status {
	case "":
		rec.Status = models.ActivitySuccess
	case models.ActivitySuccess, models.ActivityError:
	default:
		return models.ActivityRecord{}, fmt.Errorf("%w: status %q", ErrInvalidActivity, rec.Status)
	}

	rec.ID = a.newID()
	rec.Timestamp = a.cache.Now().UTC()

	err := a.cache.Update(KeyRecentActivity, 0, func(current json.RawMessage, ok bool) (any, error) {
		existing := decodeActivities(current, ok)
		list := make([]models.ActivityRecord, 0, min(len(existing)+1, MaxActivities))
		list = append(list, rec)
		list = append(list, existing...)
		if len(list) > MaxActivities {
			list = list[:MaxActivities]
		}
		return list, nil
	})
	if err != nil {
		return models.ActivityRecord{}, err
	}
	return rec, nil
}

// List returns up to limit records, newest first. limit <= 0 returns all of them.
func (a *ActivityLog) List(limit int) []models.ActivityRecord {
	raw, ok := a.cache.GetRaw(KeyRecentActivity)
	list := decodeActivities(raw, ok)
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}

// decodeActivities treats an absent or malformed list as empty.
func decodeActivities(raw json.RawMessage, ok bool) []models.ActivityRecord {
	if !ok {
		return nil
	}
	var list []models.ActivityRecord
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return list
}
