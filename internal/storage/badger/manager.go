package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/scrawl/internal/common"
	"github.com/ternarybob/scrawl/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db     *BadgerDB
	task   interfaces.TaskStorage
	job    interfaces.JobStorage
	page   interfaces.PageStorage
	logger arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:     db,
		task:   NewTaskStorage(db, logger),
		job:    NewJobStorage(db, logger),
		page:   NewPageStorage(db, logger),
		logger: logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// TaskStorage returns the ScheduledTask storage interface
func (m *Manager) TaskStorage() interfaces.TaskStorage {
	return m.task
}

// JobStorage returns the CrawlJob storage interface
func (m *Manager) JobStorage() interfaces.JobStorage {
	return m.job
}

// PageStorage returns the CrawledPage storage interface
func (m *Manager) PageStorage() interfaces.PageStorage {
	return m.page
}

// Close closes the database connection
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
