package controllers

import (
	"errors"
	"net/http"
	"storybank/internal/client"
	"storybank/internal/models"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func processOK(videoURL, category string, auto bool) (*client.TranscriptResult, error) {
	id := strings.TrimPrefix(videoURL, youtubeWatchURL)
	if category == "" {
		category = "auto"
	}
	return &client.TranscriptResult{Status: "success", VideoID: id, Category: category, AutoGenerated: auto}, nil
}

func TestSync_RefreshChannel(t *testing.T) {
	st := newTestState(0)
	backend := &fakeBackend{
		fetchFn: func(channelID string, maxResults int, order string) (*client.ChannelVideos, error) {
			assert.Equal(t, 5, maxResults)
			return &client.ChannelVideos{
				ChannelID:   channelID,
				TotalVideos: 2,
				Videos: []client.Video{
					{VideoID: "v1", Title: "One", PublishedAt: "2026-01-01", Thumbnail: "1.jpg"},
					{VideoID: "v2", Title: "Two", PublishedAt: "2026-01-02", Thumbnail: "2.jpg"},
				},
			}, nil
		},
	}
	h := st.syncRouter(backend, 2)

	rr := do(h, http.MethodPost, "/channels/UC1/refresh?maxResults=5", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var rec models.ChannelCacheRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, "UC1", rec.ChannelID)
	assert.Equal(t, testStart, rec.FetchedAt)
	require.Len(t, rec.Videos, 2)
	assert.Equal(t, "Two", rec.Videos[1].Title)

	cached, ok := st.channels.GetChannelData("UC1")
	require.True(t, ok)
	assert.Equal(t, rec, cached)
	assert.Equal(t, 2, st.stats.Stats().TotalVideos)
}

func TestSync_RefreshChannel_BackendErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"not found passes through", &client.Error{Status: http.StatusNotFound, Body: "no channel"}, http.StatusNotFound},
		{"server error", &client.Error{Status: http.StatusInternalServerError}, http.StatusBadGateway},
		{"transport", errors.New("connection refused"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newTestState(0)
			backend := &fakeBackend{
				fetchFn: func(string, int, string) (*client.ChannelVideos, error) { return nil, tt.err },
			}
			rr := do(st.syncRouter(backend, 1), http.MethodPost, "/channels/UC1/refresh", "")
			assert.Equal(t, tt.code, rr.Code)

			_, ok := st.channels.GetChannelData("UC1")
			assert.False(t, ok)
		})
	}
}

func TestSync_RefreshChannel_InvalidMaxResults(t *testing.T) {
	backend := &fakeBackend{}
	rr := do(newTestState(0).syncRouter(backend, 1), http.MethodPost, "/channels/UC1/refresh?maxResults=zero", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, backend.Calls())
}

func TestSync_ProcessVideo_Success(t *testing.T) {
	st := newTestState(0)
	backend := &fakeBackend{processFn: processOK}
	h := st.syncRouter(backend, 1)

	rr := do(h, http.MethodPost, "/videos/v1/process", `{"category":"history"}`)
	require.Equal(t, http.StatusOK, rr.Code)

	var status models.ProcessingStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, models.ProcessingCompleted, status.State)
	assert.Equal(t, "history", status.Category)
	assert.False(t, status.AutoGenerated)

	assert.Equal(t, []string{"process:" + youtubeWatchURL + "v1"}, backend.Calls())
	assert.Equal(t, 1, st.stats.Stats().ProcessedVideos)

	list := st.activity.List(0)
	require.Len(t, list, 1)
	assert.Equal(t, models.ActivitySuccess, list[0].Status)
	assert.Equal(t, models.VideoProcessed{VideoID: "v1", Category: "history"}, list[0].Detail)
	assert.Equal(t, 1, st.metrics.ActivityCount("video_processed", "success"))
}

func TestSync_ProcessVideo_DefaultsToAutoCategorize(t *testing.T) {
	st := newTestState(0)
	var auto atomic.Bool
	backend := &fakeBackend{processFn: func(videoURL, category string, a bool) (*client.TranscriptResult, error) {
		auto.Store(a)
		return processOK(videoURL, category, a)
	}}

	rr := do(st.syncRouter(backend, 1), http.MethodPost, "/videos/v1/process", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, auto.Load())
}

func TestSync_ProcessVideo_Failure(t *testing.T) {
	st := newTestState(0)
	backend := &fakeBackend{processFn: func(string, string, bool) (*client.TranscriptResult, error) {
		return nil, &client.Error{Status: http.StatusBadGateway, Body: "no transcript"}
	}}

	rr := do(st.syncRouter(backend, 1), http.MethodPost, "/videos/v1/process", `{"url":"https://youtu.be/v1"}`)
	assert.Equal(t, http.StatusBadGateway, rr.Code)

	status, ok := st.channels.GetProcessingStatus("v1")
	require.True(t, ok)
	assert.Equal(t, models.ProcessingFailed, status.State)
	assert.Contains(t, status.Error, "no transcript")

	list := st.activity.List(0)
	require.Len(t, list, 1)
	assert.Equal(t, models.ActivityError, list[0].Status)
	assert.NotEmpty(t, list[0].Error)
	assert.Zero(t, st.stats.Stats().ProcessedVideos)
}

func TestSync_ProcessBatch(t *testing.T) {
	st := newTestState(0)
	var inFlight, peak atomic.Int32
	backend := &fakeBackend{processFn: func(videoURL, category string, auto bool) (*client.TranscriptResult, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		if strings.HasSuffix(videoURL, "bad") {
			return nil, errors.New("boom")
		}
		return processOK(videoURL, category, auto)
	}}

	body := `{"category":"science","videos":[{"videoId":"a"},{"videoId":"b"},{"videoId":"bad"},{"videoId":"c","category":"art"}]}`
	rr := do(st.syncRouter(backend, 2), http.MethodPost, "/videos/process", body)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp batchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 4)
	assert.Equal(t, "a", resp.Results[0].VideoID)
	assert.Equal(t, models.ProcessingFailed, resp.Results[2].State)
	assert.Equal(t, "art", resp.Results[3].Category)

	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.Equal(t, 3, st.stats.Stats().ProcessedVideos)
	assert.Len(t, st.activity.List(0), 4)
}

func TestSync_ProcessBatch_Validation(t *testing.T) {
	backend := &fakeBackend{processFn: processOK}
	h := newTestState(0).syncRouter(backend, 2)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/videos/process", `{"videos":[]}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/videos/process", `{"videos":[{"url":"x"}]}`).Code)
	assert.Empty(t, backend.Calls())
}

func TestSync_ListCategories(t *testing.T) {
	st := newTestState(0)
	backend := &fakeBackend{listFn: func() ([]client.Category, error) {
		return []client.Category{{Name: "history"}, {Name: "science"}}, nil
	}}

	rr := do(st.syncRouter(backend, 1), http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[{"name":"history"},{"name":"science"}]`, rr.Body.String())
	assert.Equal(t, []string{"list_categories"}, backend.Calls())
	assert.Empty(t, st.activity.List(0))
}

func TestSync_ListCategories_Empty(t *testing.T) {
	backend := &fakeBackend{listFn: func() ([]client.Category, error) { return nil, nil }}

	rr := do(newTestState(0).syncRouter(backend, 1), http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestSync_ListCategories_BackendError(t *testing.T) {
	backend := &fakeBackend{listFn: func() ([]client.Category, error) {
		return nil, errors.New("connection refused")
	}}

	rr := do(newTestState(0).syncRouter(backend, 1), http.MethodGet, "/categories", "")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestSync_CreateCategory(t *testing.T) {
	st := newTestState(0)
	backend := &fakeBackend{categoryFn: func(name string) (*client.Category, error) {
		return &client.Category{Name: name}, nil
	}}
	h := st.syncRouter(backend, 1)

	rr := do(h, http.MethodPost, "/categories", `{"name":"history"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"name":"history"}`, rr.Body.String())

	list := st.activity.List(0)
	require.Len(t, list, 1)
	assert.Equal(t, models.CategoryCreated{Category: "history"}, list[0].Detail)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/categories", `{}`).Code)
}

func TestSync_CreateCategory_ConflictIsRecorded(t *testing.T) {
	st := newTestState(0)
	backend := &fakeBackend{categoryFn: func(string) (*client.Category, error) {
		return nil, &client.Error{Status: http.StatusConflict, Body: "exists"}
	}}

	rr := do(st.syncRouter(backend, 1), http.MethodPost, "/categories", `{"name":"history"}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	list := st.activity.List(0)
	require.Len(t, list, 1)
	assert.Equal(t, models.ActivityError, list[0].Status)
	assert.Equal(t, 1, st.metrics.ActivityCount("category_created", "error"))
}

func TestSync_GenerateStory(t *testing.T) {
	st := newTestState(0)
	var got client.StoryRequest
	backend := &fakeBackend{generateFn: func(req client.StoryRequest) (*client.GeneratedStory, error) {
		got = req
		return &client.GeneratedStory{Variations: []string{"a", "b", "c"}}, nil
	}}

	body := `{"source":"category","categoryWeights":[{"name":"history","weight":0.6},{"name":"art","weight":0.4}]}`
	rr := do(st.syncRouter(backend, 1), http.MethodPost, "/stories/generate", body)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, models.StoryFromCategories, got.Source)
	assert.Equal(t, 3, got.VariationsCount)
	assert.Equal(t, "professional", got.Style)
	assert.Equal(t, 500, got.Length)
	assert.Equal(t, 5, got.MaterialPerCategory)

	list := st.activity.List(0)
	require.Len(t, list, 1)
	assert.Equal(t, models.StoryGenerated{Source: models.StoryFromCategories, Variations: 3}, list[0].Detail)
}

func TestSync_GenerateStory_Validation(t *testing.T) {
	backend := &fakeBackend{}
	h := newTestState(0).syncRouter(backend, 1)

	bodies := []string{
		`{"source":"dream"}`,
		`{"source":"category"}`,
		`{"source":"transcripts","transcriptIds":[]}`,
		`{"source":"synopsis"}`,
		`{"source":"synopsis","synopsis":"x","variationsCount":9}`,
		`{"source":"synopsis","synopsis":"x","style":"gothic"}`,
		`{"source":"synopsis","synopsis":"x","length":50}`,
	}
	for _, body := range bodies {
		assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/stories/generate", body).Code, body)
	}
	assert.Empty(t, backend.Calls())
}

func TestSync_FinalizeStory(t *testing.T) {
	st := newTestState(0)
	backend := &fakeBackend{finalizeFn: func(storyID string, req client.FinalizeRequest) (*client.Story, error) {
		assert.Equal(t, "docs", req.ProjectSlug)
		assert.Equal(t, "alex", req.AssigneeUsername)
		return &client.Story{ID: storyID, Status: "finalized"}, nil
	}}
	h := st.syncRouter(backend, 1)

	rr := do(h, http.MethodPost, "/stories/s1/finalize", `{"projectSlug":"docs","assigneeUsername":"alex"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"finalized"`)
	assert.Equal(t, []string{"finalize:s1"}, backend.Calls())

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/stories/s1/finalize", `{"projectSlug":"docs"}`).Code)
}

func TestSync_StorageFullDoesNotFailBackendCall(t *testing.T) {
	st := newTestState(64)
	backend := &fakeBackend{categoryFn: func(name string) (*client.Category, error) {
		return &client.Category{Name: name}, nil
	}}

	rr := do(st.syncRouter(backend, 1), http.MethodPost, "/categories", `{"name":"history"}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, 1, st.metrics.StorageFull)
	assert.Equal(t, 2, st.logger.Count("warn"))
}
