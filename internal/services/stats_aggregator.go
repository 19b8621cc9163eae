package services

import (
	"storybank/internal/models"

	json "github.com/goccy/go-json"
)

const (
	KeyStats           = "stats"
	KeyTotalVideos     = "totalVideos"
	KeyProcessedVideos = "processedVideos"
)

type StatsAggregatorInterface interface {
	UpdateStats(update models.StatsUpdate) (models.StatsSummary, error)
	IncrementProcessed(delta int) (models.StatsSummary, error)
	Stats() models.StatsSummary
}

type StatsAggregator struct {
	cache *CacheStore
}

func NewStatsAggregator(cache *CacheStore) *StatsAggregator {
	return &StatsAggregator{cache: cache}
}

func (s *StatsAggregator) Stats() models.StatsSummary {
	var summary models.StatsSummary
	if !s.cache.GetItem(KeyStats, &summary) {
		return models.StatsSummary{}
	}
	return summary
}

// UpdateStats merges the supplied fields into the stored summary and mirrors each of
// them under its own flat key. An update without fields writes nothing.
func (s *StatsAggregator) UpdateStats(update models.StatsUpdate) (models.StatsSummary, error) {
	if update.Empty() {
		return s.Stats(), nil
	}

	var merged models.StatsSummary
	err := s.cache.Atomic(func(tx Txn) error {
		merged = decodeSummary(tx.GetRaw(KeyStats)).Merge(update)
		return writeSummary(tx, merged, update.TotalVideos != nil, update.ProcessedVideos != nil)
	})
	if err != nil {
		return models.StatsSummary{}, err
	}
	return merged, nil
}

// IncrementProcessed adds delta to processedVideos atomically.
func (s *StatsAggregator) IncrementProcessed(delta int) (models.StatsSummary, error) {
	var merged models.StatsSummary
	err := s.cache.Atomic(func(tx Txn) error {
		merged = decodeSummary(tx.GetRaw(KeyStats))
		merged.ProcessedVideos += delta
		return writeSummary(tx, merged, false, true)
	})
	if err != nil {
		return models.StatsSummary{}, err
	}
	return merged, nil
}

func writeSummary(tx Txn, summary models.StatsSummary, total, processed bool) error {
	if err := tx.SetItem(KeyStats, summary, 0); err != nil {
		return err
	}
	if total {
		if err := tx.SetItem(KeyTotalVideos, summary.TotalVideos, 0); err != nil {
			return err
		}
	}
	if processed {
		return tx.SetItem(KeyProcessedVideos, summary.ProcessedVideos, 0)
	}
	return nil
}

func decodeSummary(raw json.RawMessage, ok bool) models.StatsSummary {
	var summary models.StatsSummary
	if !ok {
		return summary
	}
	if err := json.Unmarshal(raw, &summary); err != nil {
		return models.StatsSummary{}
	}
	return summary
}
