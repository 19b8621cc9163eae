package models

import "time"

const SnapshotVersion = 1

// Snapshot is the on-disk export of every pair held by a KeyValueStore.
type Snapshot struct {
	Version int               `json:"version"`
	SavedAt time.Time         `json:"saved_at"`
	Entries map[string]string `json:"entries"`
}
