package models

import "time"

type ProcessingState string

const (
	ProcessingPending   ProcessingState = "pending"
	ProcessingRunning   ProcessingState = "processing"
	ProcessingCompleted ProcessingState = "completed"
	ProcessingFailed    ProcessingState = "failed"
)

func (s ProcessingState) Valid() bool {
	switch s {
	case ProcessingPending, ProcessingRunning, ProcessingCompleted, ProcessingFailed:
		return true
	}
	return false
}

type ChannelVideo struct {
	VideoID     string          `json:"videoId"`
	Title       string          `json:"title"`
	PublishedAt string          `json:"publishedAt"`
	Thumbnail   string          `json:"thumbnail"`
	Status      ProcessingState `json:"status,omitempty"`
}

// ChannelCacheRecord is the last fetched video list of a channel.
type ChannelCacheRecord struct {
	ChannelID   string         `json:"channelId"`
	TotalVideos int            `json:"totalVideos"`
	Videos      []ChannelVideo `json:"videos"`
	FetchedAt   time.Time      `json:"fetchedAt"`
}

// ProcessingStatus tracks a single transcript extraction.
type ProcessingStatus struct {
	VideoID       string          `json:"videoId"`
	State         ProcessingState `json:"state"`
	Category      string          `json:"category,omitempty"`
	AutoGenerated bool            `json:"autoGenerated,omitempty"`
	Error         string          `json:"error,omitempty"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}
