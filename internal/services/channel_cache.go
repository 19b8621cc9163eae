package services

import (
	"storybank/internal/models"
	"time"
)

const (
	ChannelTTL    = 24 * time.Hour
	ProcessingTTL = time.Hour

	channelKeyPrefix    = "channel_"
	processingKeyPrefix = "processing_"
)

type ChannelCacheInterface interface {
	SetChannelData(channelID string, rec models.ChannelCacheRecord) error
	GetChannelData(channelID string) (models.ChannelCacheRecord, bool)
	SetProcessingStatus(videoID string, status models.ProcessingStatus) error
	GetProcessingStatus(videoID string) (models.ProcessingStatus, bool)
}

type ChannelCache struct {
	cache *CacheStore
}

func NewChannelCache(cache *CacheStore) *ChannelCache {
	return &ChannelCache{cache: cache}
}

func (c *ChannelCache) SetChannelData(channelID string, rec models.ChannelCacheRecord) error {
	rec.ChannelID = channelID
	if rec.FetchedAt.IsZero() {
		rec.FetchedAt = c.cache.Now().UTC()
	}
	return c.cache.SetItem(channelKeyPrefix+channelID, rec, ChannelTTL)
}

// GetChannelData returns the cached video list with each video's live processing
// state laid over the state recorded at fetch time.
func (c *ChannelCache) GetChannelData(channelID string) (models.ChannelCacheRecord, bool) {
	var rec models.ChannelCacheRecord
	if !c.cache.GetItem(channelKeyPrefix+channelID, &rec) {
		return models.ChannelCacheRecord{}, false
	}
	for i := range rec.Videos {
		if st, ok := c.GetProcessingStatus(rec.Videos[i].VideoID); ok {
			rec.Videos[i].Status = st.State
		}
	}
	return rec, true
}

func (c *ChannelCache) SetProcessingStatus(videoID string, status models.ProcessingStatus) error {
	status.VideoID = videoID
	status.UpdatedAt = c.cache.Now().UTC()
	return c.cache.SetItem(processingKeyPrefix+videoID, status, ProcessingTTL)
}

func (c *ChannelCache) GetProcessingStatus(videoID string) (models.ProcessingStatus, bool) {
	var status models.ProcessingStatus
	if !c.cache.GetItem(processingKeyPrefix+videoID, &status) {
		return models.ProcessingStatus{}, false
	}
	return status, true
}
