package controllers

import (
	"errors"
	"math"
	"net/http"
	"storybank/internal/models"
	"storybank/internal/providers"
	"storybank/internal/services"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

// ApiController exposes the cache store and the state built on it.
type ApiController struct {
	logger   providers.Logger
	metrics  providers.MetricsProviderInterface
	cache    services.CacheStoreInterface
	activity services.ActivityLogInterface
	stats    services.StatsAggregatorInterface
	channels services.ChannelCacheInterface
}

func NewApiController(
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
	cache services.CacheStoreInterface,
	activity services.ActivityLogInterface,
	stats services.StatsAggregatorInterface,
	channels services.ChannelCacheInterface,
) *ApiController {
	return &ApiController{
		logger:   logger,
		metrics:  metrics,
		cache:    cache,
		activity: activity,
		stats:    stats,
		channels: channels,
	}
}

type keysResponse struct {
	Keys []string `json:"keys"`
}

type activityInput struct {
	Type   string          `json:"type" validate:"required|in:video_processed,category_created,story_generated"`
	Title  string          `json:"title" validate:"required|maxLen:512"`
	Status string          `json:"status" validate:"in:success,error"`
	Error  string          `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// parseTTL accepts a Go duration ("24h") or a bare number of milliseconds. Empty means
// no expiry.
func parseTTL(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms < 0 {
			return 0, errors.New("ttl must not be negative")
		}
		if ms > math.MaxInt64/int64(time.Millisecond) {
			return 0, errors.New("ttl is too large")
		}
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.New("ttl must not be negative")
	}
	return d, nil
}

// writeStoreError answers a failed write; a full store is reported as 507.
func (ac *ApiController) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, models.ErrStorageFull) {
		ac.metrics.IncStorageFull()
		writeError(w, http.StatusInsufficientStorage, "storage full")
		return
	}
	ac.logger.Errorf(providers.TypeWrite, "%s %s: %s", r.Method, r.URL.Path, err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

func (ac *ApiController) ListKeys(w http.ResponseWriter, r *http.Request) {
	keys := ac.cache.Keys()
	if keys == nil {
		keys = []string{}
	}
	writeJSON(w, http.StatusOK, keysResponse{Keys: keys})
}

func (ac *ApiController) GetItem(w http.ResponseWriter, r *http.Request) {
	raw, ok := ac.cache.GetRaw(chi.URLParam(r, "key"))
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeRawJSON(w, http.StatusOK, raw)
}

func (ac *ApiController) SetItem(w http.ResponseWriter, r *http.Request) {
	ttl, err := parseTTL(r.URL.Query().Get("ttl"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid ttl")
		return
	}
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if !json.Valid(data) {
		writeError(w, http.StatusBadRequest, "body is not valid JSON")
		return
	}

	if err := ac.cache.SetItem(chi.URLParam(r, "key"), json.RawMessage(data), ttl); err != nil {
		ac.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := ac.cache.RemoveItem(chi.URLParam(r, "key")); err != nil {
		ac.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) Clear(w http.ResponseWriter, r *http.Request) {
	if err := ac.cache.Clear(); err != nil {
		ac.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) ListActivity(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	list := ac.activity.List(limit)
	if list == nil {
		list = []models.ActivityRecord{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (ac *ApiController) AddActivity(w http.ResponseWriter, r *http.Request) {
	var in activityInput
	if err := decodeAndValidate(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	detail, err := models.DecodeActivityDetail(models.ActivityType(in.Type), in.Detail)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := ac.activity.AddActivity(models.ActivityRecord{
		Title:  in.Title,
		Status: models.ActivityStatus(in.Status),
		Error:  in.Error,
		Detail: detail,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidActivity) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ac.writeStoreError(w, r, err)
		return
	}
	ac.metrics.IncActivity(string(rec.Type()), string(rec.Status))
	writeJSON(w, http.StatusCreated, rec)
}

func (ac *ApiController) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.stats.Stats())
}

func (ac *ApiController) UpdateStats(w http.ResponseWriter, r *http.Request) {
	var update models.StatsUpdate
	if err := decodeBody(w, r, &update); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}
	summary, err := ac.stats.UpdateStats(update)
	if err != nil {
		ac.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (ac *ApiController) GetChannel(w http.ResponseWriter, r *http.Request) {
	rec, ok := ac.channels.GetChannelData(chi.URLParam(r, "channelID"))
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (ac *ApiController) PutChannel(w http.ResponseWriter, r *http.Request) {
	var rec models.ChannelCacheRecord
	if err := decodeBody(w, r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if err := ac.channels.SetChannelData(chi.URLParam(r, "channelID"), rec); err != nil {
		ac.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) GetProcessing(w http.ResponseWriter, r *http.Request) {
	status, ok := ac.channels.GetProcessingStatus(chi.URLParam(r, "videoID"))
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (ac *ApiController) PutProcessing(w http.ResponseWriter, r *http.Request) {
	var status models.ProcessingStatus
	if err := decodeBody(w, r, &status); err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")
		return
	}
	if !status.State.Valid() {
		writeError(w, http.StatusBadRequest, "invalid state")
		return
	}
	if err := ac.channels.SetProcessingStatus(chi.URLParam(r, "videoID"), status); err != nil {
		ac.writeStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
