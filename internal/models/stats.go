package models

// StatsSummary is the persisted dashboard counter pair.
type StatsSummary struct {
	TotalVideos     int `json:"totalVideos"`
	ProcessedVideos int `json:"processedVideos"`
}

// StatsUpdate carries the fields to change; nil fields keep their current value.
type StatsUpdate struct {
	TotalVideos     *int `json:"totalVideos,omitempty"`
	ProcessedVideos *int `json:"processedVideos,omitempty"`
}

func (s StatsSummary) Merge(u StatsUpdate) StatsSummary {
	if u.TotalVideos != nil {
		s.TotalVideos = *u.TotalVideos
	}
	if u.ProcessedVideos != nil {
		s.ProcessedVideos = *u.ProcessedVideos
	}
	return s
}

func (u StatsUpdate) Empty() bool {
	return u.TotalVideos == nil && u.ProcessedVideos == nil
}
