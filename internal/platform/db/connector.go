package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// ErrStoreUnavailable is returned by the connector's query surface while the
// backing store is disconnected. It never reaches API clients directly; the
// HTTP layer translates it to 503 and the auth guard reacts to it by falling
// back to claim-trust authentication.
var ErrStoreUnavailable = errors.New("store unavailable")

// Status describes the connector's connection state.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusConnecting   Status = "connecting"
	StatusDisconnected Status = "disconnected"
)

// State is a point-in-time snapshot of the connection state. RetryDelay is
// the delay the next background reconnect attempt will be scheduled with.
type State struct {
	Status         Status        `json:"status"`
	ActiveEndpoint string        `json:"active_endpoint,omitempty"`
	RetryDelay     time.Duration `json:"-"`
}

// Pool is the subset of pgxpool.Pool the connector manages. Tests substitute
// a stub implementation.
type Pool interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
	Close()
}

// ConnectorConfig configures endpoint selection and retry behaviour.
type ConnectorConfig struct {
	PrimaryURL  string
	FallbackURL string
	MaxConns    int32
	MinConns    int32
	// ConnectTimeout bounds each individual endpoint attempt.
	ConnectTimeout time.Duration
	// InitialRetryDelay is the first reconnect delay after a dual-endpoint
	// failure; it doubles per consecutive failure up to MaxRetryDelay and
	// resets on success.
	InitialRetryDelay time.Duration
	MaxRetryDelay     time.Duration
}

const (
	defaultConnectTimeout    = 4 * time.Second
	defaultInitialRetryDelay = 3 * time.Second
	defaultMaxRetryDelay     = 30 * time.Second
)

// Connector owns the lifecycle of the connection to the backing store.
// Store unavailability is never fatal: a failed Connect schedules its own
// background retry and the rest of the system keeps running degraded,
// consulting IsConnected to decide how much to trust.
//
// All state mutation happens inside Connect, serialized by the
// single-attempt-in-flight guard; everything else only reads.
type Connector struct {
	cfg    ConnectorConfig
	logger zerolog.Logger

	// dial and schedule are replaceable for tests.
	dial     func(ctx context.Context, connURL string) (Pool, error)
	schedule func(d time.Duration, f func())

	mu             sync.Mutex
	status         Status
	pool           Pool
	activeEndpoint string
	retryDelay     time.Duration
}

// NewConnector creates a connector in the disconnected state. Call Connect
// to establish the first connection.
func NewConnector(cfg ConnectorConfig, logger zerolog.Logger) *Connector {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultConnectTimeout
	}
	if cfg.InitialRetryDelay <= 0 {
		cfg.InitialRetryDelay = defaultInitialRetryDelay
	}
	if cfg.MaxRetryDelay <= 0 {
		cfg.MaxRetryDelay = defaultMaxRetryDelay
	}

	c := &Connector{
		cfg:        cfg,
		logger:     logger,
		status:     StatusDisconnected,
		retryDelay: cfg.InitialRetryDelay,
	}
	c.dial = func(ctx context.Context, connURL string) (Pool, error) {
		return dialPool(ctx, connURL, cfg.MaxConns, cfg.MinConns)
	}
	c.schedule = func(d time.Duration, f func()) {
		time.AfterFunc(d, f)
	}
	return c
}

func dialPool(ctx context.Context, connURL string, maxConns, minConns int32) (Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = maxConns
	}
	if minConns > 0 {
		poolCfg.MinConns = minConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// Connect attempts the primary endpoint, then the fallback, each bounded by
// ConnectTimeout. On dual failure it absorbs the error, schedules a background
// retry after the current retry delay, doubles the delay up to the ceiling,
// and returns false. At most one attempt is ever in flight: calls made while
// connected or while another attempt is running return the current status
// without touching the network.
func (c *Connector) Connect(ctx context.Context) bool {
	c.mu.Lock()
	switch c.status {
	case StatusConnected:
		c.mu.Unlock()
		return true
	case StatusConnecting:
		c.mu.Unlock()
		return false
	}
	c.status = StatusConnecting
	c.mu.Unlock()

	for _, endpoint := range []string{c.cfg.PrimaryURL, c.cfg.FallbackURL} {
		if endpoint == "" {
			continue
		}

		attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
		pool, err := c.dial(attemptCtx, endpoint)
		cancel()
		if err != nil {
			c.logger.Warn().Err(err).Str("endpoint", redactURL(endpoint)).Msg("store connection attempt failed")
			continue
		}

		c.mu.Lock()
		c.pool = pool
		c.status = StatusConnected
		c.activeEndpoint = endpoint
		c.retryDelay = c.cfg.InitialRetryDelay
		c.mu.Unlock()

		c.logger.Info().Str("endpoint", redactURL(endpoint)).Msg("store connected")
		return true
	}

	c.mu.Lock()
	c.status = StatusDisconnected
	delay := c.retryDelay
	c.retryDelay = minDuration(c.retryDelay*2, c.cfg.MaxRetryDelay)
	c.mu.Unlock()

	c.logger.Warn().
		Dur("retry_in", delay).
		Msg("store unavailable on all endpoints, running degraded and retrying in background")

	c.schedule(delay, func() {
		c.Connect(context.Background())
	})
	return false
}

// IsConnected reports whether the store is currently reachable. Pure state
// read; safe from any request-handling path.
func (c *Connector) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == StatusConnected
}

// State returns a snapshot of the connection state with credentials stripped
// from the endpoint.
func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Status:         c.status,
		ActiveEndpoint: redactURL(c.activeEndpoint),
		RetryDelay:     c.retryDelay,
	}
}

// Close releases the underlying pool. Meant for process shutdown; the
// connector is not reusable afterwards.
func (c *Connector) Close() {
	c.mu.Lock()
	pool := c.pool
	c.pool = nil
	c.status = StatusDisconnected
	c.mu.Unlock()

	if pool != nil {
		pool.Close()
	}
}

func (c *Connector) livePool() Pool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusConnected {
		return nil
	}
	return c.pool
}

// Query runs a query against the live pool, or fails with ErrStoreUnavailable
// while disconnected. Repositories call the connector exactly as they would a
// pool, so an outage surfaces as a normal error instead of a nil dereference.
func (c *Connector) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	pool := c.livePool()
	if pool == nil {
		return nil, ErrStoreUnavailable
	}
	return pool.Query(ctx, sql, args...)
}

// QueryRow runs a single-row query against the live pool. While disconnected
// the returned row fails with ErrStoreUnavailable on Scan.
func (c *Connector) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	pool := c.livePool()
	if pool == nil {
		return errRow{err: ErrStoreUnavailable}
	}
	return pool.QueryRow(ctx, sql, args...)
}

// Exec runs a statement against the live pool, or fails with
// ErrStoreUnavailable while disconnected.
func (c *Connector) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	pool := c.livePool()
	if pool == nil {
		return pgconn.CommandTag{}, ErrStoreUnavailable
	}
	return pool.Exec(ctx, sql, args...)
}

// Ping checks liveness of the current connection. Fails with
// ErrStoreUnavailable while disconnected.
func (c *Connector) Ping(ctx context.Context) error {
	pool := c.livePool()
	if pool == nil {
		return ErrStoreUnavailable
	}
	return pool.Ping(ctx)
}

type errRow struct{ err error }

func (r errRow) Scan(dest ...interface{}) error { return r.err }

func redactURL(connURL string) string {
	if connURL == "" {
		return ""
	}
	u, err := url.Parse(connURL)
	if err != nil {
		return connURL
	}
	if u.User != nil {
		u.User = url.User(u.User.Username())
	}
	return u.Redacted()
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
