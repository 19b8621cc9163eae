package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"storybank/internal/client"
	"storybank/internal/models"
	"storybank/internal/services"
	"storybank/internal/structures"
	"storybank/internal/testutil"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testState struct {
	store    *models.MemoryStore
	clock    *testutil.Clock
	logger   *testutil.MockLogger
	metrics  *testutil.MockMetrics
	cache    *services.CacheStore
	activity *services.ActivityLog
	stats    *services.StatsAggregator
	channels *services.ChannelCache
}

func newTestState(quota int64) *testState {
	st := &testState{
		store:   models.NewMemoryStore(quota),
		clock:   testutil.NewClock(testStart),
		logger:  &testutil.MockLogger{},
		metrics: &testutil.MockMetrics{},
	}
	st.cache = services.NewCacheStoreWithOptions(st.store, st.logger, services.WithClock(st.clock.Now))
	st.activity = services.NewActivityLog(st.cache)
	st.stats = services.NewStatsAggregator(st.cache)
	st.channels = services.NewChannelCache(st.cache)
	return st
}

func (st *testState) apiRouter() http.Handler {
	ac := NewApiController(st.logger, st.metrics, st.cache, st.activity, st.stats, st.channels)
	r := chi.NewRouter()
	r.Get("/cache", ac.ListKeys)
	r.Delete("/cache", ac.Clear)
	r.Get("/cache/{key}", ac.GetItem)
	r.Put("/cache/{key}", ac.SetItem)
	r.Delete("/cache/{key}", ac.RemoveItem)
	r.Get("/activity", ac.ListActivity)
	r.Post("/activity", ac.AddActivity)
	r.Get("/stats", ac.GetStats)
	r.Patch("/stats", ac.UpdateStats)
	r.Get("/channels/{channelID}", ac.GetChannel)
	r.Put("/channels/{channelID}", ac.PutChannel)
	r.Get("/processing/{videoID}", ac.GetProcessing)
	r.Put("/processing/{videoID}", ac.PutProcessing)
	return r
}

func (st *testState) syncRouter(backend client.BackendInterface, concurrency int) http.Handler {
	conf := &structures.Config{Sync: structures.SyncConfig{BatchConcurrency: concurrency, MaxResults: 20}}
	sc := NewSyncController(conf, st.logger, st.metrics, backend, st.activity, st.stats, st.channels)
	r := chi.NewRouter()
	r.Post("/channels/{channelID}/refresh", sc.RefreshChannel)
	r.Post("/videos/{videoID}/process", sc.ProcessVideo)
	r.Post("/videos/process", sc.ProcessBatch)
	r.Get("/categories", sc.ListCategories)
	r.Post("/categories", sc.CreateCategory)
	r.Post("/stories/generate", sc.GenerateStory)
	r.Post("/stories/{storyID}/finalize", sc.FinalizeStory)
	return r
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// fakeBackend implements client.BackendInterface with per-call hooks.
type fakeBackend struct {
	mu    sync.Mutex
	calls []string

	fetchFn    func(channelID string, maxResults int, order string) (*client.ChannelVideos, error)
	processFn  func(videoURL, category string, auto bool) (*client.TranscriptResult, error)
	listFn     func() ([]client.Category, error)
	categoryFn func(name string) (*client.Category, error)
	generateFn func(req client.StoryRequest) (*client.GeneratedStory, error)
	finalizeFn func(storyID string, req client.FinalizeRequest) (*client.Story, error)
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) FetchChannelVideos(_ context.Context, channelID string, maxResults int, order string) (*client.ChannelVideos, error) {
	f.record("fetch:" + channelID)
	return f.fetchFn(channelID, maxResults, order)
}

func (f *fakeBackend) ProcessTranscript(_ context.Context, videoURL, category string, auto bool) (*client.TranscriptResult, error) {
	f.record("process:" + videoURL)
	return f.processFn(videoURL, category, auto)
}

func (f *fakeBackend) ListCategories(_ context.Context) ([]client.Category, error) {
	f.record("list_categories")
	return f.listFn()
}

func (f *fakeBackend) CreateCategory(_ context.Context, name string) (*client.Category, error) {
	f.record("category:" + name)
	return f.categoryFn(name)
}

func (f *fakeBackend) GenerateStory(_ context.Context, req client.StoryRequest) (*client.GeneratedStory, error) {
	f.record("generate:" + string(req.Source))
	return f.generateFn(req)
}

func (f *fakeBackend) FinalizeStory(_ context.Context, storyID string, req client.FinalizeRequest) (*client.Story, error) {
	f.record("finalize:" + storyID)
	return f.finalizeFn(storyID, req)
}
