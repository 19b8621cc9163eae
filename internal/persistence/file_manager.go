package persistence

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"storybank/internal/models"
	"storybank/internal/persistence/interfaces"
	"storybank/internal/providers"
	"time"

	json "github.com/goccy/go-json"
)

// FileManager exports every pair of the store to a compressed snapshot file and
// imports it back.
type FileManager struct {
	store      interfaces.SnapshotStoreInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
	now        func() time.Time
}

func NewFileManager(compressor interfaces.CompressorInterface, store interfaces.SnapshotStoreInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

func (f *FileManager) snapshot() (*models.Snapshot, error) {
	pairs, err := f.store.Export()
	if err != nil {
		return nil, err
	}
	snap := &models.Snapshot{
		Version: models.SnapshotVersion,
		SavedAt: f.now().UTC(),
		Entries: make(map[string]string, len(pairs)),
	}
	for k, v := range pairs {
		snap.Entries[k] = string(v)
	}
	return snap, nil
}

func (f *FileManager) SaveToFile(fileName string) error {
	snap, err := f.snapshot()
	if err != nil {
		return err
	}

	jsonData, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fileName), 0o755); err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	if err = os.Rename(tmpFile, fileName); err != nil {
		os.Remove(tmpFile)
		return err
	}
	return nil
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile imports a snapshot into the store. A missing file is not an error, and a
// store that already holds data is left untouched so a stale snapshot never overwrites
// newer durable state.
func (f *FileManager) LoadFromFile(fileName string) (int, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	decompressedData, err := f.compressor.Decompress(data)
	if err != nil {
		return 0, err
	}

	var snap models.Snapshot
	if err := json.Unmarshal(decompressedData, &snap); err != nil {
		return 0, fmt.Errorf("decoding snapshot: %w", err)
	}
	if snap.Version > models.SnapshotVersion {
		return 0, fmt.Errorf("snapshot version %d is newer than supported %d", snap.Version, models.SnapshotVersion)
	}

	entries := make(map[string][]byte, len(snap.Entries))
	for k, v := range snap.Entries {
		entries[k] = []byte(v)
	}
	restored, err := f.store.Import(entries)
	if errors.Is(err, models.ErrStoreNotEmpty) {
		f.logger.Infof(providers.TypeStorage, "Snapshot %s skipped: %s", fileName, err)
		return 0, nil
	}
	return restored, err
}
