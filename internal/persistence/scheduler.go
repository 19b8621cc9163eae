package persistence

import (
	"fmt"
	"storybank/internal/persistence/interfaces"
	"storybank/internal/providers"
	"storybank/internal/structures"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler restores the snapshot at startup, saves it periodically and once more on
// shutdown. With no snapshot file configured every method is a no-op.
type Scheduler struct {
	config      *structures.Config
	logger      providers.Logger
	metrics     providers.MetricsProviderInterface
	fileManager *FileManager
	cron        *cron.Cron
	opsMu       sync.Mutex
}

func (s *Scheduler) enabled() bool {
	return s.config.Persistence.FilePath != ""
}

func (s *Scheduler) Init() error {
	if !s.enabled() {
		return nil
	}

	s.cron = cron.New()
	schedule := fmt.Sprintf("@every %s", s.config.Persistence.SaveInterval)
	_, err := s.cron.AddFunc(schedule, func() {
		if err := s.Persist(); err != nil {
			return
		}
		s.logger.Debugf(providers.TypeStorage, "Persisted snapshot to %s", s.config.Persistence.FilePath)
	})
	if err != nil {
		return fmt.Errorf("scheduling snapshot job: %w", err)
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

func (s *Scheduler) Restore() error {
	if !s.enabled() {
		return nil
	}
	n, err := s.fileManager.LoadFromFile(s.config.Persistence.FilePath)
	if err != nil {
		return err
	}
	if n > 0 {
		s.logger.Infof(providers.TypeStorage, "Restored %d keys from %s", n, s.config.Persistence.FilePath)
	}
	return nil
}

func (s *Scheduler) Persist() error {
	if !s.enabled() {
		return nil
	}

	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	start := time.Now()
	err := s.fileManager.SaveToFile(s.config.Persistence.FilePath)
	s.metrics.ObservePersistenceDuration(time.Since(start))
	if err != nil {
		s.logger.Errorf(providers.TypeStorage, "Error while persisting snapshot: %s", err)
		return err
	}
	return nil
}

func NewScheduler(config *structures.Config, logger providers.Logger, fileManager *FileManager, metrics providers.MetricsProviderInterface) interfaces.SchedulerInterface {
	return &Scheduler{
		config:      config,
		logger:      logger,
		metrics:     metrics,
		fileManager: fileManager,
	}
}
