package client

import (
	"fmt"
	"storybank/internal/models"
)

// Error is a non-2xx answer from the backend.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend responded with status %d", e.Status)
	}
	return fmt.Sprintf("backend responded with status %d: %s", e.Status, e.Body)
}

type Video struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	PublishedAt string `json:"published_at"`
	Thumbnail   string `json:"thumbnail"`
}

type ChannelVideos struct {
	ChannelID   string  `json:"channel_id"`
	TotalVideos int     `json:"total_videos"`
	Videos      []Video `json:"videos"`
}

type TranscriptResult struct {
	Status        string `json:"status"`
	VideoID       string `json:"video_id"`
	Category      string `json:"category"`
	AutoGenerated bool   `json:"auto_generated"`
}

type Category struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

type CategoryWeight struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// StoryRequest covers the three generation modes. Source selects the endpoint and
// which of CategoryWeights, TranscriptIDs or Synopsis is sent.
type StoryRequest struct {
	Source              models.StorySource `json:"source"`
	CategoryWeights     []CategoryWeight   `json:"categoryWeights,omitempty"`
	TranscriptIDs       []string           `json:"transcriptIds,omitempty"`
	Synopsis            string             `json:"synopsis,omitempty"`
	VariationsCount     int                `json:"variationsCount"`
	Style               string             `json:"style"`
	MaterialPerCategory int                `json:"materialPerCategory,omitempty"`
	Length              int                `json:"length"`
}

type GeneratedStory struct {
	Variations []string `json:"variations"`
	CreatedAt  string   `json:"created_at,omitempty"`
}

type FinalizeRequest struct {
	ProjectSlug      string `json:"project_slug"`
	AssigneeUsername string `json:"assignee_username"`
	TaskTitle        string `json:"task_title,omitempty"`
	TaskDescription  string `json:"task_description,omitempty"`
}

type Story struct {
	ID        string `json:"_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Status    string `json:"status"`
	ProjectID *int   `json:"project_id,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type categoryWeightsBody struct {
	CategoryWeights     []CategoryWeight `json:"category_weights"`
	VariationsCount     int              `json:"variations_count"`
	Style               string           `json:"style"`
	MaterialPerCategory int              `json:"material_per_category"`
	Length              int              `json:"length"`
}

type transcriptsBody struct {
	TranscriptIDs   []string `json:"transcript_ids"`
	VariationsCount int      `json:"variations_count"`
	Style           string   `json:"style"`
	Length          int      `json:"length"`
}

type synopsisBody struct {
	Story           string `json:"story"`
	VariationsCount int    `json:"variations_count"`
	Style           string `json:"style"`
	Length          int    `json:"length"`
}
