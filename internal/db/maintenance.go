package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goran-ethernal/FilterHub/internal/common"
	"github.com/goran-ethernal/FilterHub/internal/logger"
	"github.com/goran-ethernal/FilterHub/pkg/config"
)

// Maintenance serializes database maintenance against regular store operations.
type Maintenance interface {
	// Start begins background maintenance if enabled.
	Start(ctx context.Context) error
	// Stop stops background maintenance and waits for completion.
	Stop() error
	// AcquireOperationLock acquires a shared lock for a store operation.
	// The returned function releases it.
	AcquireOperationLock() func()
	// RunMaintenance checkpoints the WAL and vacuums the database.
	RunMaintenance(ctx context.Context) error
}

// NoOpMaintenance is used when maintenance is not configured.
type NoOpMaintenance struct{}

func (m *NoOpMaintenance) Start(context.Context) error { return nil }

func (m *NoOpMaintenance) Stop() error { return nil }

func (m *NoOpMaintenance) RunMaintenance(context.Context) error { return nil }

func (m *NoOpMaintenance) AcquireOperationLock() func() { return func() {} }

// MaintenanceCoordinator runs maintenance with exclusive access to the database.
// Operations hold the read side of opLock, maintenance holds the write side.
type MaintenanceCoordinator struct {
	db     *sql.DB
	config config.MaintenanceConfig
	dbPath string
	log    *logger.Logger

	opLock sync.RWMutex

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	runs    uint64
	lastErr error
}

// NewMaintenanceCoordinator returns a coordinator for the database at dbPath,
// or a no-op when cfg is nil.
func NewMaintenanceCoordinator(
	dbPath string,
	db *sql.DB,
	cfg *config.MaintenanceConfig,
	log *logger.Logger,
) Maintenance {
	if cfg == nil {
		return &NoOpMaintenance{}
	}

	return newMaintenanceCoordinator(dbPath, db, *cfg, log)
}

func newMaintenanceCoordinator(
	dbPath string,
	db *sql.DB,
	cfg config.MaintenanceConfig,
	log *logger.Logger,
) *MaintenanceCoordinator {
	cfg.ApplyDefaults()

	return &MaintenanceCoordinator{
		db:     db,
		config: cfg,
		dbPath: dbPath,
		log:    log.WithComponent(common.ComponentMaintenance),
	}
}

// Start begins background maintenance if enabled.
func (m *MaintenanceCoordinator) Start(ctx context.Context) error {
	if !m.config.Enabled {
		m.log.Info("Background maintenance is disabled")
		return nil
	}

	ctx, m.cancel = context.WithCancel(ctx)

	if m.config.VacuumOnStartup {
		m.log.Info("Running startup maintenance")
		if err := m.RunMaintenance(ctx); err != nil {
			m.log.Warnf("Startup maintenance failed: %v", err)
		}
	}

	m.wg.Add(1)
	go m.worker(ctx)

	m.log.Infof("Background maintenance started - interval: %v, checkpoint mode: %s",
		m.config.CheckInterval.Duration, m.config.WALCheckpointMode)

	return nil
}

// Stop stops background maintenance and waits for completion.
func (m *MaintenanceCoordinator) Stop() error {
	if m.cancel == nil {
		return nil
	}

	m.cancel()
	m.wg.Wait()
	m.log.Info("Background maintenance stopped")

	return nil
}

func (m *MaintenanceCoordinator) worker(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.CheckInterval.Duration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.RunMaintenance(ctx); err != nil {
				m.log.Warnf("Periodic maintenance failed: %v", err)
			}
		}
	}
}

// RunMaintenance blocks all operations until the WAL checkpoint and VACUUM are done.
func (m *MaintenanceCoordinator) RunMaintenance(ctx context.Context) error {
	start := time.Now()

	m.opLock.Lock()
	defer m.opLock.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	initialSize, err := DBTotalSize(m.dbPath)
	if err != nil {
		m.log.Warnf("Failed to get initial DB size: %v", err)
	}

	var runErr error
	if err := m.walCheckpoint(); err != nil {
		runErr = fmt.Errorf("WAL checkpoint failed: %w", err)
	}
	if err := Vacuum(m.db); err != nil && runErr == nil {
		runErr = err
	}

	finalSize, err := DBTotalSize(m.dbPath)
	if err != nil {
		m.log.Warnf("Failed to get final DB size: %v", err)
	}

	duration := time.Since(start)
	MaintenanceRunLog(duration, runErr)
	DBSizeLog(initialSize, finalSize)

	m.mu.Lock()
	m.runs++
	m.lastErr = runErr
	m.mu.Unlock()

	if runErr != nil {
		m.log.Warnf("Maintenance completed with errors in %v: %v", duration, runErr)
		return runErr
	}

	if initialSize > finalSize {
		m.log.Infof("Maintenance completed in %v, reclaimed %d bytes", duration, initialSize-finalSize)
	} else {
		m.log.Debugf("Maintenance completed in %v", duration)
	}

	return nil
}

func (m *MaintenanceCoordinator) walCheckpoint() error {
	var mode string
	if err := m.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		return fmt.Errorf("failed to check journal mode: %w", err)
	}
	if !strings.EqualFold(mode, "wal") {
		return nil
	}

	var busy, logFrames, checkpointed int
	err := m.db.QueryRow(fmt.Sprintf("PRAGMA wal_checkpoint(%s)", m.config.WALCheckpointMode)).
		Scan(&busy, &logFrames, &checkpointed)
	if err != nil {
		return fmt.Errorf("failed to execute WAL checkpoint: %w", err)
	}

	WALCheckpointInc(strings.ToLower(m.config.WALCheckpointMode))

	if busy > 0 {
		m.log.Warnf("WAL checkpoint encountered %d busy pages", busy)
	}
	m.log.Debugf("WAL checkpoint complete - mode: %s, log_frames: %d, checkpointed: %d",
		m.config.WALCheckpointMode, logFrames, checkpointed)

	return nil
}

// AcquireOperationLock acquires a read lock for a store operation.
func (m *MaintenanceCoordinator) AcquireOperationLock() func() {
	m.opLock.RLock()
	return m.opLock.RUnlock
}

// Runs returns how many maintenance runs completed and the error of the last one.
func (m *MaintenanceCoordinator) Runs() (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.runs, m.lastErr
}
