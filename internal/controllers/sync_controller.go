package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"storybank/internal/client"
	"storybank/internal/models"
	"storybank/internal/providers"
	"storybank/internal/services"
	"storybank/internal/structures"
	"strconv"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

const youtubeWatchURL = "https://www.youtube.com/watch?v="

// SyncController runs backend operations and records their outcome in the local state.
type SyncController struct {
	conf     *structures.Config
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	backend  client.BackendInterface
	activity services.ActivityLogInterface
	stats    services.StatsAggregatorInterface
	channels services.ChannelCacheInterface
}

func NewSyncController(
	conf *structures.Config,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	backend client.BackendInterface,
	activity services.ActivityLogInterface,
	stats services.StatsAggregatorInterface,
	channels services.ChannelCacheInterface,
) *SyncController {
	return &SyncController{
		conf:     conf,
		logger:   logger,
		metrics:  metrics,
		backend:  backend,
		activity: activity,
		stats:    stats,
		channels: channels,
	}
}

type processInput struct {
	URL            string `json:"url"`
	Category       string `json:"category"`
	AutoCategorize *bool  `json:"autoCategorize"`
}

type batchVideo struct {
	VideoID  string `json:"videoId" validate:"required"`
	URL      string `json:"url"`
	Category string `json:"category"`
}

type batchInput struct {
	Videos         []batchVideo `json:"videos" validate:"required|minLen:1"`
	Category       string       `json:"category"`
	AutoCategorize *bool        `json:"autoCategorize"`
}

type batchResponse struct {
	Results   []models.ProcessingStatus `json:"results"`
	Succeeded int                       `json:"succeeded"`
	Failed    int                       `json:"failed"`
}

type categoryInput struct {
	Name string `json:"name" validate:"required|maxLen:128"`
}

type storyInput struct {
	Source              string                  `json:"source" validate:"required|in:category,transcripts,synopsis"`
	CategoryWeights     []client.CategoryWeight `json:"categoryWeights"`
	TranscriptIDs       []string                `json:"transcriptIds"`
	Synopsis            string                  `json:"synopsis"`
	VariationsCount     int                     `json:"variationsCount" validate:"min:0|max:5"`
	Style               string                  `json:"style" validate:"in:casual,professional,creative"`
	MaterialPerCategory int                     `json:"materialPerCategory" validate:"min:0|max:20"`
	Length              int                     `json:"length" validate:"min:0|max:2000"`
	StoryID             string                  `json:"storyId"`
}

type finalizeInput struct {
	ProjectSlug      string `json:"projectSlug" validate:"required"`
	AssigneeUsername string `json:"assigneeUsername" validate:"required"`
	TaskTitle        string `json:"taskTitle"`
	TaskDescription  string `json:"taskDescription"`
}

// storyRequest applies the generator defaults and checks the fields the chosen
// source needs.
func (in storyInput) storyRequest() (client.StoryRequest, error) {
	req := client.StoryRequest{
		Source:              models.StorySource(in.Source),
		CategoryWeights:     in.CategoryWeights,
		TranscriptIDs:       in.TranscriptIDs,
		Synopsis:            in.Synopsis,
		VariationsCount:     in.VariationsCount,
		Style:               in.Style,
		MaterialPerCategory: in.MaterialPerCategory,
		Length:              in.Length,
	}
	if req.VariationsCount == 0 {
		req.VariationsCount = 3
	}
	if req.Style == "" {
		req.Style = "professional"
	}
	if req.Length == 0 {
		req.Length = 500
	}
	if req.Length < 100 {
		return req, errors.New("length must be at least 100")
	}

	switch req.Source {
	case models.StoryFromCategories:
		if len(req.CategoryWeights) == 0 {
			return req, errors.New("categoryWeights is required for category stories")
		}
		for _, cw := range req.CategoryWeights {
			if cw.Name == "" || cw.Weight < 0 {
				return req, errors.New("every category weight needs a name and a non-negative weight")
			}
		}
		if req.MaterialPerCategory == 0 {
			req.MaterialPerCategory = 5
		}
	case models.StoryFromTranscripts:
		if len(req.TranscriptIDs) == 0 {
			return req, errors.New("transcriptIds is required for transcript stories")
		}
	case models.StoryFromSynopsis:
		if req.Synopsis == "" {
			return req, errors.New("synopsis is required for synopsis stories")
		}
	}
	return req, nil
}

// writeBackendError passes 4xx answers through and reports everything else as 502.
func (sc *SyncController) writeBackendError(w http.ResponseWriter, err error) {
	var apiErr *client.Error
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		writeError(w, apiErr.Status, apiErr.Body)
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		writeError(w, http.StatusGatewayTimeout, "backend did not answer in time")
		return
	}
	writeError(w, http.StatusBadGateway, "backend unavailable")
}

func (sc *SyncController) recordActivity(rec models.ActivityRecord) {
	stored, err := sc.activity.AddActivity(rec)
	if err != nil {
		sc.logger.Warnf(providers.TypeSync, "Recording %s activity: %s", rec.Type(), err)
		if errors.Is(err, models.ErrStorageFull) {
			sc.metrics.IncStorageFull()
		}
		return
	}
	sc.metrics.IncActivity(string(stored.Type()), string(stored.Status))
}

func (sc *SyncController) warnOnStoreError(what string, err error) {
	if err == nil {
		return
	}
	sc.logger.Warnf(providers.TypeSync, "Storing %s: %s", what, err)
	if errors.Is(err, models.ErrStorageFull) {
		sc.metrics.IncStorageFull()
	}
}

func (sc *SyncController) RefreshChannel(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelID")
	maxResults := sc.conf.Sync.MaxResults
	if raw := r.URL.Query().Get("maxResults"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid maxResults")
			return
		}
		maxResults = n
	}

	resp, err := sc.backend.FetchChannelVideos(r.Context(), channelID, maxResults, r.URL.Query().Get("order"))
	if err != nil {
		sc.writeBackendError(w, err)
		return
	}

	rec := models.ChannelCacheRecord{
		ChannelID:   channelID,
		TotalVideos: resp.TotalVideos,
		Videos:      make([]models.ChannelVideo, 0, len(resp.Videos)),
	}
	for _, v := range resp.Videos {
		rec.Videos = append(rec.Videos, models.ChannelVideo{
			VideoID:     v.VideoID,
			Title:       v.Title,
			PublishedAt: v.PublishedAt,
			Thumbnail:   v.Thumbnail,
		})
	}
	if err := sc.channels.SetChannelData(channelID, rec); err != nil {
		sc.warnOnStoreError("channel "+channelID, err)
	}
	total := rec.TotalVideos
	_, err = sc.stats.UpdateStats(models.StatsUpdate{TotalVideos: &total})
	sc.warnOnStoreError("stats", err)

	if cached, ok := sc.channels.GetChannelData(channelID); ok {
		rec = cached
	}
	writeJSON(w, http.StatusOK, rec)
}

// processVideo drives one video through processing and completed or failed, logging
// the outcome as a video_processed activity.
func (sc *SyncController) processVideo(ctx context.Context, videoID, videoURL, category string, autoCategorize bool) (models.ProcessingStatus, error) {
	if videoURL == "" {
		videoURL = youtubeWatchURL + videoID
	}
	sc.warnOnStoreError("processing status", sc.channels.SetProcessingStatus(videoID, models.ProcessingStatus{
		State:    models.ProcessingRunning,
		Category: category,
	}))

	result, err := sc.backend.ProcessTranscript(ctx, videoURL, category, autoCategorize)
	if err != nil {
		status := models.ProcessingStatus{
			VideoID:  videoID,
			State:    models.ProcessingFailed,
			Category: category,
			Error:    err.Error(),
		}
		sc.warnOnStoreError("processing status", sc.channels.SetProcessingStatus(videoID, status))
		sc.recordActivity(models.ActivityRecord{
			Title:  fmt.Sprintf("Failed to process video %s", videoID),
			Status: models.ActivityError,
			Error:  err.Error(),
			Detail: models.VideoProcessed{VideoID: videoID, Category: category},
		})
		return status, err
	}

	status := models.ProcessingStatus{
		VideoID:       videoID,
		State:         models.ProcessingCompleted,
		Category:      result.Category,
		AutoGenerated: result.AutoGenerated,
	}
	sc.warnOnStoreError("processing status", sc.channels.SetProcessingStatus(videoID, status))
	sc.recordActivity(models.ActivityRecord{
		Title:  fmt.Sprintf("Processed video %s", videoID),
		Status: models.ActivitySuccess,
		Detail: models.VideoProcessed{
			VideoID:       videoID,
			Category:      result.Category,
			AutoGenerated: result.AutoGenerated,
		},
	})
	_, err = sc.stats.IncrementProcessed(1)
	sc.warnOnStoreError("stats", err)

	if stored, ok := sc.channels.GetProcessingStatus(videoID); ok {
		status = stored
	}
	return status, nil
}

func autoCategorizeOrDefault(v *bool, category string) bool {
	if v != nil {
		return *v
	}
	return category == ""
}

func (sc *SyncController) ProcessVideo(w http.ResponseWriter, r *http.Request) {
	var in processInput
	if err := decodeBody(w, r, &in); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}

	videoID := chi.URLParam(r, "videoID")
	status, err := sc.processVideo(r.Context(), videoID, in.URL, in.Category, autoCategorizeOrDefault(in.AutoCategorize, in.Category))
	if err != nil {
		sc.writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ProcessBatch processes several videos with at most sync.batchConcurrency backend
// calls in flight. Individual failures are reported per video.
func (sc *SyncController) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var in batchInput
	if err := decodeAndValidate(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	for _, v := range in.Videos {
		if v.VideoID == "" {
			writeError(w, http.StatusBadRequest, "every video needs a videoId")
			return
		}
	}

	results := make([]models.ProcessingStatus, len(in.Videos))
	var g errgroup.Group
	g.SetLimit(max(sc.conf.Sync.BatchConcurrency, 1))
	for i, v := range in.Videos {
		category := v.Category
		if category == "" {
			category = in.Category
		}
		g.Go(func() error {
			status, _ := sc.processVideo(r.Context(), v.VideoID, v.URL, category, autoCategorizeOrDefault(in.AutoCategorize, category))
			results[i] = status
			return nil
		})
	}
	_ = g.Wait()

	resp := batchResponse{Results: results}
	for _, s := range results {
		if s.State == models.ProcessingCompleted {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListCategories proxies the backend's category list.
func (sc *SyncController) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := sc.backend.ListCategories(r.Context())
	if err != nil {
		sc.writeBackendError(w, err)
		return
	}
	if cats == nil {
		cats = []client.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (sc *SyncController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeAndValidate(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cat, err := sc.backend.CreateCategory(r.Context(), in.Name)
	if err != nil {
		sc.recordActivity(models.ActivityRecord{
			Title:  fmt.Sprintf("Failed to create category %s", in.Name),
			Status: models.ActivityError,
			Error:  err.Error(),
			Detail: models.CategoryCreated{Category: in.Name},
		})
		sc.writeBackendError(w, err)
		return
	}

	sc.recordActivity(models.ActivityRecord{
		Title:  fmt.Sprintf("Created category %s", cat.Name),
		Status: models.ActivitySuccess,
		Detail: models.CategoryCreated{Category: cat.Name},
	})
	writeJSON(w, http.StatusCreated, cat)
}

func (sc *SyncController) GenerateStory(w http.ResponseWriter, r *http.Request) {
	var in storyInput
	if err := decodeAndValidate(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := in.storyRequest()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	story, err := sc.backend.GenerateStory(r.Context(), req)
	if err != nil {
		sc.recordActivity(models.ActivityRecord{
			Title:  "Story generation failed",
			Status: models.ActivityError,
			Error:  err.Error(),
			Detail: models.StoryGenerated{Source: req.Source, StoryID: in.StoryID},
		})
		sc.writeBackendError(w, err)
		return
	}

	sc.recordActivity(models.ActivityRecord{
		Title:  fmt.Sprintf("Generated %d story variations", len(story.Variations)),
		Status: models.ActivitySuccess,
		Detail: models.StoryGenerated{
			Source:     req.Source,
			Variations: len(story.Variations),
			StoryID:    in.StoryID,
		},
	})
	writeJSON(w, http.StatusOK, story)
}

func (sc *SyncController) FinalizeStory(w http.ResponseWriter, r *http.Request) {
	var in finalizeInput
	if err := decodeAndValidate(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	story, err := sc.backend.FinalizeStory(r.Context(), chi.URLParam(r, "storyID"), client.FinalizeRequest{
		ProjectSlug:      in.ProjectSlug,
		AssigneeUsername: in.AssigneeUsername,
		TaskTitle:        in.TaskTitle,
		TaskDescription:  in.TaskDescription,
	})
	if err != nil {
		sc.writeBackendError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, story)
}
