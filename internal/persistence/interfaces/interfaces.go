package interfaces

type CompressorInterface interface {
	Compress(val []byte) ([]byte, error)
	Decompress(val []byte) ([]byte, error)
	Close()
}

type SchedulerInterface interface {
	Init() error
	Stop()
	Restore() error
	Persist() error
}

// SnapshotStoreInterface exposes a consistent raw view of the store for snapshots.
type SnapshotStoreInterface interface {
	Export() (map[string][]byte, error)
	Import(entries map[string][]byte) (int, error)
}
