// Package live follows the backend's change feed so open tables can reload
// when their data changes.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// stableConnection is how long a connection must last before a drop
// retries at the initial delay again.
const stableConnection = 10 * time.Second

// Config holds feed settings from the config file.
type Config struct {
	Enabled           bool          `yaml:"enabled"`
	ReconnectDelay    time.Duration `yaml:"reconnect_delay"`
	MaxReconnectDelay time.Duration `yaml:"max_reconnect_delay"`
	PingInterval      time.Duration `yaml:"ping_interval"`
}

// DefaultConfig returns the feed defaults. The feed is off until enabled.
func DefaultConfig() Config {
	return Config{
		ReconnectDelay:    time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      25 * time.Second,
	}
}

// Event is one message on the feed.
type Event struct {
	Type     string `json:"type"`
	Resource string `json:"resource,omitempty"`
}

// Status is a snapshot of the connection state.
type Status struct {
	Connected    bool
	Reconnecting bool
	LastError    string
	LastEvent    time.Time
	// RetryIn is the wait before the pending reconnect attempt.
	RetryIn time.Duration
}

// Feed keeps a WebSocket open to the backend and reports changed resources.
type Feed struct {
	url     string
	cfg     Config
	handler func(resource string)
	log     *zap.Logger

	stableAfter time.Duration

	mu           sync.Mutex
	conn         *websocket.Conn
	cancel       context.CancelFunc
	connected    bool
	reconnecting bool
	lastError    error
	lastEvent    time.Time
	retryIn      time.Duration
}

// NewFeed creates a feed for wsURL. handler runs on the feed's goroutine.
func NewFeed(wsURL string, cfg Config, handler func(resource string), log *zap.Logger) *Feed {
	def := DefaultConfig()
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	if cfg.MaxReconnectDelay < cfg.ReconnectDelay {
		cfg.MaxReconnectDelay = max(def.MaxReconnectDelay, cfg.ReconnectDelay)
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{url: wsURL, cfg: cfg, handler: handler, log: log, stableAfter: stableConnection}
}

// EventsURL maps the backend base URL onto the WebSocket endpoint at path.
func EventsURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported backend scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	return u.String(), nil
}

// Start runs the connect loop until ctx is done or Stop is called. Calling
// Start again replaces the running loop.
func (f *Feed) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	f.mu.Lock()
	if f.cancel != nil {
		f.cancel()
	}
	f.cancel = cancel
	f.mu.Unlock()
	go f.connectionLoop(ctx)
}

// Stop closes the connection and ends the loop.
func (f *Feed) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	if f.conn != nil {
		f.conn.Close()
	}
}

// Status returns the current connection status.
func (f *Feed) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	errStr := ""
	if f.lastError != nil {
		errStr = f.lastError.Error()
	}
	return Status{
		Connected:    f.connected,
		Reconnecting: f.reconnecting,
		LastError:    errStr,
		LastEvent:    f.lastEvent,
		RetryIn:      f.retryIn,
	}
}

// connectionLoop dials, reads until the connection drops and waits before
// dialing again. The wait doubles up to MaxReconnectDelay after every
// failed dial or short-lived connection.
func (f *Feed) connectionLoop(ctx context.Context) {
	delay := f.cfg.ReconnectDelay

	for {
		if ctx.Err() != nil {
			return
		}

		conn, err := f.connect(ctx)
		if err != nil {
			f.waiting(delay, err)
			f.log.Warn("live feed connection failed",
				zap.String("url", f.url),
				zap.Duration("retry_in", delay),
				zap.Error(err))
		} else {
			started := time.Now()
			f.runConnection(ctx, conn)
			if ctx.Err() != nil {
				return
			}
			if time.Since(started) >= f.stableAfter {
				delay = f.cfg.ReconnectDelay
			}
			f.waiting(delay, nil)
			f.log.Info("live feed disconnected",
				zap.String("url", f.url),
				zap.Duration("uptime", time.Since(started)),
				zap.Duration("retry_in", delay))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay = min(delay*2, f.cfg.MaxReconnectDelay)
	}
}

// waiting records that the loop sleeps for delay before the next dial. A
// nil err keeps the last error.
func (f *Feed) waiting(delay time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
	f.reconnecting = true
	f.retryIn = delay
	if err != nil {
		f.lastError = err
	}
}

func (f *Feed) connect(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	f.mu.Lock()
	f.conn = conn
	f.connected = true
	f.reconnecting = false
	f.lastError = nil
	f.retryIn = 0
	f.mu.Unlock()

	f.log.Info("live feed connected", zap.String("url", f.url))
	return conn, nil
}

// runConnection reads events until the connection drops or ctx ends.
func (f *Feed) runConnection(ctx context.Context, conn *websocket.Conn) {
	connCtx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.pingLoop(connCtx, conn)
	}()

	f.readLoop(conn)
	stop()
	wg.Wait()

	f.mu.Lock()
	f.connected = false
	if f.conn == conn {
		f.conn = nil
	}
	f.mu.Unlock()
	conn.Close()
}

func (f *Feed) readLoop(conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.log.Warn("live feed read error", zap.Error(err))
			}
			return
		}
		f.handleMessage(data)
	}
}

// pingLoop keeps idle connections alive and closes the socket when ctx ends
// so a blocked read returns.
func (f *Feed) pingLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(f.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			conn.Close()
			return
		case <-ticker.C:
			deadline := time.Now().Add(10 * time.Second)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				f.log.Warn("live feed ping failed", zap.Error(err))
				conn.Close()
				return
			}
		}
	}
}

func (f *Feed) handleMessage(data []byte) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		f.log.Warn("live feed: bad message", zap.Error(err))
		return
	}

	switch ev.Type {
	case "changed":
		if ev.Resource == "" {
			return
		}
		f.mu.Lock()
		f.lastEvent = time.Now()
		f.mu.Unlock()
		f.log.Debug("live feed event", zap.String("resource", ev.Resource))
		if f.handler != nil {
			f.handler(ev.Resource)
		}
	case "ping", "pong":
	default:
		f.log.Debug("live feed: unknown message type", zap.String("type", ev.Type))
	}
}
