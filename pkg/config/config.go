package config

import (
	"fmt"
	"net/url"
	"slices"
	"time"

	"github.com/goran-ethernal/FilterHub/internal/common"
	"github.com/goran-ethernal/FilterHub/internal/logger"
)

const (
	// BackendRPC makes the filter hub read the upstream node directly.
	BackendRPC = "rpc"
	// BackendSQLite makes the filter hub read a local chain store kept in sync by the follower.
	BackendSQLite = "sqlite"
)

// Config represents the complete configuration for the FilterHub node.
type Config struct {
	// Server contains the JSON-RPC HTTP server configuration
	Server ServerConfig `yaml:"server" json:"server" toml:"server"`

	// Filters contains the filter hub configuration
	Filters FiltersConfig `yaml:"filters" json:"filters" toml:"filters"`

	// Chain contains the chain data backend configuration
	Chain ChainConfig `yaml:"chain" json:"chain" toml:"chain"`

	// Logging contains logging configuration
	Logging *LoggingConfig `yaml:"logging,omitempty" json:"logging,omitempty" toml:"logging,omitempty"`

	// Metrics contains Prometheus metrics configuration
	Metrics *MetricsConfig `yaml:"metrics,omitempty" json:"metrics,omitempty" toml:"metrics,omitempty"`
}

// ServerConfig configures the JSON-RPC HTTP endpoint.
type ServerConfig struct {
	// ListenAddress is the address to bind the JSON-RPC server to
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request
	ReadTimeout common.Duration `yaml:"read_timeout" json:"read_timeout" toml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response
	WriteTimeout common.Duration `yaml:"write_timeout" json:"write_timeout" toml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request on keep-alive connections
	IdleTimeout common.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`

	// BatchRequestLimit is the maximum number of requests in a JSON-RPC batch
	BatchRequestLimit int `yaml:"batch_request_limit" json:"batch_request_limit" toml:"batch_request_limit"`

	// BatchResponseMaxSize is the maximum number of response bytes across a JSON-RPC batch
	BatchResponseMaxSize int `yaml:"batch_response_max_size" json:"batch_response_max_size" toml:"batch_response_max_size"`

	// CORS contains cross-origin settings for browser clients
	CORS *CORSConfig `yaml:"cors,omitempty" json:"cors,omitempty" toml:"cors,omitempty"`
}

// CORSConfig configures cross-origin resource sharing.
type CORSConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// AllowedOrigins lists origins allowed to call the endpoint, "*" allows any
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins" toml:"allowed_origins"`
}

// ApplyDefaults sets default values for optional server configuration fields.
func (s *ServerConfig) ApplyDefaults() {
	if s.ListenAddress == "" {
		s.ListenAddress = ":8545"
	}
	if s.ReadTimeout.Duration == 0 {
		s.ReadTimeout = common.NewDuration(15 * time.Second) //nolint:mnd
	}
	if s.WriteTimeout.Duration == 0 {
		s.WriteTimeout = common.NewDuration(30 * time.Second) //nolint:mnd
	}
	if s.IdleTimeout.Duration == 0 {
		s.IdleTimeout = common.NewDuration(120 * time.Second) //nolint:mnd
	}
	if s.BatchRequestLimit == 0 {
		s.BatchRequestLimit = 1000
	}
	if s.BatchResponseMaxSize == 0 {
		s.BatchResponseMaxSize = 25 * 1000 * 1000 //nolint:mnd
	}
	if s.CORS != nil && s.CORS.Enabled && len(s.CORS.AllowedOrigins) == 0 {
		s.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate checks if the server configuration is valid.
func (s *ServerConfig) Validate() error {
	if s.ListenAddress == "" {
		return fmt.Errorf("listen_address is required")
	}
	if s.BatchRequestLimit < 0 {
		return fmt.Errorf("batch_request_limit must not be negative")
	}
	if s.BatchResponseMaxSize < 0 {
		return fmt.Errorf("batch_response_max_size must not be negative")
	}

	return nil
}

// FiltersConfig configures the filter hub.
type FiltersConfig struct {
	// LogMaxBlockRange is the widest block range a single log filter poll may scan
	LogMaxBlockRange uint64 `yaml:"log_max_block_range" json:"log_max_block_range" toml:"log_max_block_range"`

	// SweepInterval is how often idle filters are evicted
	SweepInterval common.Duration `yaml:"sweep_interval" json:"sweep_interval" toml:"sweep_interval"`

	// IdleTimeout is how long a filter may go without being polled before eviction
	IdleTimeout common.Duration `yaml:"idle_timeout" json:"idle_timeout" toml:"idle_timeout"`

	// QueueSize is the capacity of the hub command queue
	QueueSize int `yaml:"queue_size" json:"queue_size" toml:"queue_size"`

	// BackendTimeout bounds every chain backend call made by the hub
	BackendTimeout common.Duration `yaml:"backend_timeout" json:"backend_timeout" toml:"backend_timeout"`
}

// ApplyDefaults sets default values for optional filter hub configuration fields.
func (f *FiltersConfig) ApplyDefaults() {
	if f.LogMaxBlockRange == 0 {
		f.LogMaxBlockRange = 5000
	}
	if f.SweepInterval.Duration == 0 {
		f.SweepInterval = common.NewDuration(20 * time.Second) //nolint:mnd
	}
	if f.IdleTimeout.Duration == 0 {
		f.IdleTimeout = common.NewDuration(40 * time.Second) //nolint:mnd
	}
	if f.QueueSize == 0 {
		f.QueueSize = 128
	}
	if f.BackendTimeout.Duration == 0 {
		f.BackendTimeout = common.NewDuration(10 * time.Second) //nolint:mnd
	}
}

// Validate checks if the filter hub configuration is valid.
func (f *FiltersConfig) Validate() error {
	if f.SweepInterval.Duration <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}
	if f.IdleTimeout.Duration <= 0 {
		return fmt.Errorf("idle_timeout must be positive")
	}
	if f.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive")
	}
	if f.BackendTimeout.Duration <= 0 {
		return fmt.Errorf("backend_timeout must be positive")
	}

	return nil
}

// ChainConfig selects and configures the chain data backend.
type ChainConfig struct {
	// Backend is either "rpc" or "sqlite"
	Backend string `yaml:"backend" json:"backend" toml:"backend"`

	// RPCURL is the upstream Ethereum RPC endpoint URL
	RPCURL string `yaml:"rpc_url" json:"rpc_url" toml:"rpc_url"`

	// Retry contains RPC retry configuration with exponential backoff
	Retry *RetryConfig `yaml:"retry,omitempty" json:"retry,omitempty" toml:"retry,omitempty"`

	// DB contains the local chain store database configuration (sqlite backend only)
	DB DatabaseConfig `yaml:"db" json:"db" toml:"db"`

	// Follower configures how the local chain store tracks the upstream node (sqlite backend only)
	Follower FollowerConfig `yaml:"follower" json:"follower" toml:"follower"`

	// RetentionPolicy contains optional chain store retention settings
	RetentionPolicy *RetentionPolicyConfig `yaml:"retention_policy,omitempty" json:"retention_policy,omitempty" toml:"retention_policy,omitempty"` //nolint:lll

	// Maintenance contains optional database maintenance settings
	Maintenance *MaintenanceConfig `yaml:"maintenance,omitempty" json:"maintenance,omitempty" toml:"maintenance,omitempty"`
}

// ApplyDefaults sets default values for optional chain configuration fields.
func (c *ChainConfig) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = BackendRPC
	}
	if c.Retry != nil {
		c.Retry.ApplyDefaults()
	}
	if c.Maintenance != nil {
		c.Maintenance.ApplyDefaults()
	}

	c.Follower.ApplyDefaults()
	c.DB.ApplyDefaults()
}

// Validate checks if the chain configuration is valid.
func (c *ChainConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc_url is required")
	}
	if _, err := url.Parse(c.RPCURL); err != nil {
		return fmt.Errorf("rpc_url: %w", err)
	}

	switch c.Backend {
	case BackendRPC:
	case BackendSQLite:
		if c.DB.Path == "" {
			return fmt.Errorf("db.path is required for the %s backend", BackendSQLite)
		}
		if err := c.DB.Validate(); err != nil {
			return fmt.Errorf("db: %w", err)
		}
		if err := c.Follower.Validate(); err != nil {
			return fmt.Errorf("follower: %w", err)
		}
	default:
		return fmt.Errorf("backend must be one of: '%s', '%s'", BackendRPC, BackendSQLite)
	}

	if c.Maintenance != nil {
		if err := c.Maintenance.Validate(); err != nil {
			return fmt.Errorf("maintenance: %w", err)
		}
	}

	return nil
}

// FollowerConfig configures the chain follower feeding the local store.
type FollowerConfig struct {
	// PollInterval is how often the upstream head is checked
	PollInterval common.Duration `yaml:"poll_interval" json:"poll_interval" toml:"poll_interval"`

	// BatchSize is the maximum number of blocks imported per iteration
	BatchSize uint64 `yaml:"batch_size" json:"batch_size" toml:"batch_size"`

	// Backfill is how many blocks behind the upstream head an empty store starts from
	Backfill uint64 `yaml:"backfill" json:"backfill" toml:"backfill"`

	// MaxReorgDepth is the deepest reorganization the follower rewinds through
	MaxReorgDepth uint64 `yaml:"max_reorg_depth" json:"max_reorg_depth" toml:"max_reorg_depth"`
}

// ApplyDefaults sets default values for optional follower configuration fields.
func (f *FollowerConfig) ApplyDefaults() {
	if f.PollInterval.Duration == 0 {
		f.PollInterval = common.NewDuration(2 * time.Second) //nolint:mnd
	}
	if f.BatchSize == 0 {
		f.BatchSize = 100
	}
	if f.Backfill == 0 {
		f.Backfill = 256
	}
	if f.MaxReorgDepth == 0 {
		f.MaxReorgDepth = 64
	}
}

// Validate checks if the follower configuration is valid.
func (f *FollowerConfig) Validate() error {
	if f.PollInterval.Duration <= 0 {
		return fmt.Errorf("poll_interval must be positive")
	}

	return nil
}

// RetryConfig represents RPC retry configuration with exponential backoff.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including initial request)
	MaxAttempts int `yaml:"max_attempts" json:"max_attempts" toml:"max_attempts"`

	// InitialBackoff is the initial backoff duration before first retry
	InitialBackoff common.Duration `yaml:"initial_backoff" json:"initial_backoff" toml:"initial_backoff"`

	// MaxBackoff is the maximum backoff duration
	MaxBackoff common.Duration `yaml:"max_backoff" json:"max_backoff" toml:"max_backoff"`

	// BackoffMultiplier is the multiplier for exponential backoff
	BackoffMultiplier float64 `yaml:"backoff_multiplier" json:"backoff_multiplier" toml:"backoff_multiplier"`
}

// ApplyDefaults sets default values for retry configuration.
func (r *RetryConfig) ApplyDefaults() {
	if r.MaxAttempts == 0 {
		r.MaxAttempts = 5
	}
	if r.InitialBackoff.Duration == 0 {
		r.InitialBackoff = common.NewDuration(1 * time.Second)
	}
	if r.MaxBackoff.Duration == 0 {
		r.MaxBackoff = common.NewDuration(30 * time.Second) //nolint:mnd
	}
	if r.BackoffMultiplier == 0 {
		r.BackoffMultiplier = 2.0
	}
}

// DatabaseConfig represents database configuration.
type DatabaseConfig struct {
	// Path is the file path to the SQLite database
	Path string `yaml:"path" json:"path" toml:"path"`

	// JournalMode sets the SQLite journal mode (e.g., "WAL", "DELETE")
	JournalMode string `yaml:"journal_mode" json:"journal_mode" toml:"journal_mode"`

	// Synchronous sets the synchronization level ("FULL", "NORMAL", "OFF")
	Synchronous string `yaml:"synchronous" json:"synchronous" toml:"synchronous"`

	// BusyTimeout is the time in milliseconds to wait when the database is locked
	BusyTimeout int `yaml:"busy_timeout" json:"busy_timeout" toml:"busy_timeout"`

	// CacheSize is the size of the page cache (negative = KB, positive = pages)
	CacheSize int `yaml:"cache_size" json:"cache_size" toml:"cache_size"`

	// MaxOpenConnections is the maximum number of open database connections
	MaxOpenConnections int `yaml:"max_open_connections" json:"max_open_connections" toml:"max_open_connections"`

	// MaxIdleConnections is the maximum number of idle connections in the pool
	MaxIdleConnections int `yaml:"max_idle_connections" json:"max_idle_connections" toml:"max_idle_connections"`

	// EnableForeignKeys enables foreign key constraint enforcement
	EnableForeignKeys bool `yaml:"enable_foreign_keys" json:"enable_foreign_keys" toml:"enable_foreign_keys"`
}

// ApplyDefaults sets default values for optional database configuration fields.
func (d *DatabaseConfig) ApplyDefaults() {
	if d.JournalMode == "" {
		d.JournalMode = "WAL"
	}
	if d.Synchronous == "" {
		d.Synchronous = "NORMAL"
	}
	if d.BusyTimeout == 0 {
		d.BusyTimeout = 5000
	}
	if d.CacheSize == 0 {
		d.CacheSize = 10000
	}
	if d.MaxOpenConnections == 0 {
		d.MaxOpenConnections = 25
	}
	if d.MaxIdleConnections == 0 {
		d.MaxIdleConnections = 5
	}
}

// Validate checks the journal and synchronous modes.
func (d *DatabaseConfig) Validate() error {
	if d.JournalMode != "" &&
		!slices.Contains([]string{"WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY"}, d.JournalMode) {
		return fmt.Errorf("journal_mode must be one of: WAL, DELETE, TRUNCATE, PERSIST, MEMORY")
	}
	if d.Synchronous != "" && !slices.Contains([]string{"FULL", "NORMAL", "OFF"}, d.Synchronous) {
		return fmt.Errorf("synchronous must be one of: FULL, NORMAL, OFF")
	}

	return nil
}

// RetentionPolicyConfig represents chain store retention settings.
type RetentionPolicyConfig struct {
	// MaxBlocks is the maximum number of blocks to retain (0 = unlimited)
	MaxBlocks uint64 `yaml:"max_blocks" json:"max_blocks" toml:"max_blocks"`
}

// IsEnabled returns true if retention policy should be applied
func (r *RetentionPolicyConfig) IsEnabled() bool {
	return r != nil && r.MaxBlocks > 0
}

// MaintenanceConfig configures database maintenance behavior.
type MaintenanceConfig struct {
	// Enabled controls whether background maintenance runs
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// CheckInterval is how often to run maintenance (e.g., "30m", "1h")
	CheckInterval common.Duration `yaml:"check_interval" json:"check_interval" toml:"check_interval"`

	// VacuumOnStartup runs maintenance immediately on startup
	VacuumOnStartup bool `yaml:"vacuum_on_startup" json:"vacuum_on_startup" toml:"vacuum_on_startup"`

	// WALCheckpointMode controls the WAL checkpoint aggressiveness
	// Options: PASSIVE, FULL, RESTART, TRUNCATE
	WALCheckpointMode string `yaml:"wal_checkpoint_mode" json:"wal_checkpoint_mode" toml:"wal_checkpoint_mode"`
}

// ApplyDefaults sets default values for optional maintenance configuration fields.
func (m *MaintenanceConfig) ApplyDefaults() {
	if m.CheckInterval.Duration == 0 {
		m.CheckInterval = common.NewDuration(30 * time.Minute) //nolint:mnd
	}
	if m.WALCheckpointMode == "" {
		m.WALCheckpointMode = "TRUNCATE"
	}
}

// Validate checks if the maintenance configuration is valid.
func (m *MaintenanceConfig) Validate() error {
	if m.WALCheckpointMode != "" {
		validModes := []string{"PASSIVE", "FULL", "RESTART", "TRUNCATE"}
		if !slices.Contains(validModes, m.WALCheckpointMode) {
			return fmt.Errorf("wal_checkpoint_mode: must be one of: PASSIVE, FULL, RESTART, TRUNCATE")
		}
	}

	return nil
}

// LoggingConfig configures logging behavior with per-component log levels.
type LoggingConfig struct {
	// DefaultLevel is the default log level for all components
	// Options: "debug", "info", "warn", "error"
	DefaultLevel string `yaml:"default_level" json:"default_level" toml:"default_level"`

	// Development enables development mode (stack traces, console encoder)
	Development bool `yaml:"development" json:"development" toml:"development"`

	// ComponentLevels sets log levels for specific components
	// Available components:
	//   - filter-hub: Filter registry and polling
	//   - jsonrpc: JSON-RPC server
	//   - rpc-client: Upstream node client
	//   - chain-store: Local chain store
	//   - follower: Local chain store synchronization
	//   - maintenance: Database maintenance
	//   - metrics: Metrics server
	ComponentLevels map[string]string `yaml:"component_levels,omitempty" json:"component_levels,omitempty" toml:"component_levels,omitempty"` //nolint:lll
}

// ApplyDefaults sets default values for optional logging configuration fields.
func (l *LoggingConfig) ApplyDefaults() {
	if l.DefaultLevel == "" {
		l.DefaultLevel = "info"
	}
	if l.ComponentLevels == nil {
		l.ComponentLevels = make(map[string]string)
	}
}

// Validate checks if the logging configuration is valid.
func (l *LoggingConfig) Validate() error {
	if l.DefaultLevel != "" {
		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(l.DefaultLevel)]; !valid {
			return fmt.Errorf("logging.default_level: must be one of: debug, info, warn, error")
		}
	}

	for component, level := range l.ComponentLevels {
		if _, validComponent := common.AllComponents[common.ToLowerWithTrim(component)]; !validComponent {
			return fmt.Errorf("logging.component_levels: unknown component '%s'", component)
		}

		if _, valid := logger.ValidLogLevels[common.ToLowerWithTrim(level)]; !valid {
			return fmt.Errorf("logging.component_levels[%s]: must be one of: debug, info, warn, error", component)
		}
	}

	return nil
}

// GetComponentLevel returns the log level for a specific component.
// Falls back to DefaultLevel if no component-specific level is set.
func (l *LoggingConfig) GetComponentLevel(component string) string {
	if level, ok := l.ComponentLevels[component]; ok {
		return common.ToLowerWithTrim(level)
	}
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// GetDefaultLevel returns the default log level.
func (l *LoggingConfig) GetDefaultLevel() string {
	return common.ToLowerWithTrim(l.DefaultLevel)
}

// IsDevelopment returns whether development mode is enabled.
func (l *LoggingConfig) IsDevelopment() bool {
	return l.Development
}

// MetricsConfig configures Prometheus metrics exposition.
type MetricsConfig struct {
	// Enabled controls whether metrics collection and HTTP endpoint are active
	Enabled bool `yaml:"enabled" json:"enabled" toml:"enabled"`

	// ListenAddress is the address to bind the metrics HTTP server to
	// Format: "host:port" or ":port"
	ListenAddress string `yaml:"listen_address" json:"listen_address" toml:"listen_address"`

	// Path is the HTTP path where metrics are exposed
	Path string `yaml:"path" json:"path" toml:"path"`
}

// ApplyDefaults sets default values for optional metrics configuration fields.
func (m *MetricsConfig) ApplyDefaults() {
	if m.ListenAddress == "" {
		m.ListenAddress = ":9090"
	}
	if m.Path == "" {
		m.Path = "/metrics"
	}
}

// Validate checks if the metrics configuration is valid.
func (m *MetricsConfig) Validate() error {
	if m.Enabled {
		if m.ListenAddress == "" {
			return fmt.Errorf("listen_address is required when metrics are enabled")
		}
		if m.Path == "" {
			return fmt.Errorf("path is required when metrics are enabled")
		}
		if m.Path[0] != '/' {
			return fmt.Errorf("path must start with '/'")
		}
	}
	return nil
}

// ApplyDefaults sets default values for optional configuration fields.
func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Filters.ApplyDefaults()
	c.Chain.ApplyDefaults()

	if c.Logging != nil {
		c.Logging.ApplyDefaults()
	}

	if c.Metrics != nil {
		c.Metrics.ApplyDefaults()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server.%w", err)
	}

	if err := c.Filters.Validate(); err != nil {
		return fmt.Errorf("filters.%w", err)
	}

	if err := c.Chain.Validate(); err != nil {
		return fmt.Errorf("chain.%w", err)
	}

	if c.Logging != nil {
		if err := c.Logging.Validate(); err != nil {
			return err
		}
	}

	if c.Metrics != nil {
		if err := c.Metrics.Validate(); err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
	}

	return nil
}
