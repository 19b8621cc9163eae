package models

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
)

type ActivityType string

const (
	ActivityVideoProcessed  ActivityType = "video_processed"
	ActivityCategoryCreated ActivityType = "category_created"
	ActivityStoryGenerated  ActivityType = "story_generated"
)

type ActivityStatus string

const (
	ActivitySuccess ActivityStatus = "success"
	ActivityError   ActivityStatus = "error"
)

// StorySource names the generator a story came from.
type StorySource string

const (
	StoryFromCategories  StorySource = "category"
	StoryFromTranscripts StorySource = "transcripts"
	StoryFromSynopsis    StorySource = "synopsis"
)

// ActivityDetail is the type-specific part of an ActivityRecord.
type ActivityDetail interface {
	ActivityType() ActivityType
}

type VideoProcessed struct {
	VideoID       string `json:"videoId"`
	Category      string `json:"category,omitempty"`
	AutoGenerated bool   `json:"autoGenerated,omitempty"`
}

func (VideoProcessed) ActivityType() ActivityType { return ActivityVideoProcessed }

type CategoryCreated struct {
	Category string `json:"category"`
}

func (CategoryCreated) ActivityType() ActivityType { return ActivityCategoryCreated }

type StoryGenerated struct {
	Source     StorySource `json:"source"`
	Variations int         `json:"variations"`
	StoryID    string      `json:"storyId,omitempty"`
}

func (StoryGenerated) ActivityType() ActivityType { return ActivityStoryGenerated }

// ActivityRecord is one entry of the recent activity log. Records are never mutated
// once appended.
type ActivityRecord struct {
	ID        string
	Title     string
	Status    ActivityStatus
	Error     string
	Timestamp time.Time
	Detail    ActivityDetail
}

func (r ActivityRecord) Type() ActivityType {
	if r.Detail == nil {
		return ""
	}
	return r.Detail.ActivityType()
}

type activityWire struct {
	ID        string          `json:"id"`
	Type      ActivityType    `json:"type"`
	Title     string          `json:"title"`
	Status    ActivityStatus  `json:"status"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Detail    json.RawMessage `json:"detail,omitempty"`
}

func (r ActivityRecord) MarshalJSON() ([]byte, error) {
	w := activityWire{
		ID:        r.ID,
		Type:      r.Type(),
		Title:     r.Title,
		Status:    r.Status,
		Error:     r.Error,
		Timestamp: r.Timestamp,
	}
	if r.Detail != nil {
		detail, err := json.Marshal(r.Detail)
		if err != nil {
			return nil, err
		}
		w.Detail = detail
	}
	return json.Marshal(w)
}

func (r *ActivityRecord) UnmarshalJSON(data []byte) error {
	var w activityWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	detail, err := DecodeActivityDetail(w.Type, w.Detail)
	if err != nil {
		return err
	}
	*r = ActivityRecord{
		ID:        w.ID,
		Title:     w.Title,
		Status:    w.Status,
		Error:     w.Error,
		Timestamp: w.Timestamp,
		Detail:    detail,
	}
	return nil
}

// DecodeActivityDetail builds the detail variant for t. A missing payload yields the
// zero value of that variant.
func DecodeActivityDetail(t ActivityType, raw json.RawMessage) (ActivityDetail, error) {
	var detail ActivityDetail
	switch t {
	case ActivityVideoProcessed:
		var d VideoProcessed
		if err := decodeDetail(raw, &d); err != nil {
			return nil, err
		}
		detail = d
	case ActivityCategoryCreated:
		var d CategoryCreated
		if err := decodeDetail(raw, &d); err != nil {
			return nil, err
		}
		detail = d
	case ActivityStoryGenerated:
		var d StoryGenerated
		if err := decodeDetail(raw, &d); err != nil {
			return nil, err
		}
		detail = d
	default:
		return nil, fmt.Errorf("unknown activity type %q", t)
	}
	return detail, nil
}

func decodeDetail(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dst)
}
