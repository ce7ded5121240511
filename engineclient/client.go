// Package engineclient implements the line-oriented TCP protocol client for
// the out-of-process realtime audio engine. It owns two sockets: a
// command/reply socket and a feedback socket one port above it, framing
// every message with a NUL terminator instead of a newline. Requests can be
// sent in blocking mode (wait for the reply inline) or non-blocking mode
// (fire-and-forget, draining replies later as a batch) via Scope/FadeScope.
package engineclient

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Config configures a Client. Zero-valued fields fall back to the
// environment variables the rest of the system uses.
type Config struct {
	Host string // engine host; empty dials localhost
	Port int    // overrides MOD_DEVICE_HOST_PORT
	// Strict enables argument validation before a command is sent. It is
	// the Go equivalent of the source's debug-build-only assertions.
	Strict bool
	Logger zerolog.Logger
}

// Client is a connected engine session. It is not safe for concurrent use;
// the connector serializes all access to it, per the single-threaded
// cooperative concurrency model this layer is built for.
type Client struct {
	cfg     Config
	logger  zerolog.Logger
	dummy   bool
	cmd     net.Conn
	fb      net.Conn
	fbR     *bufio.Reader
	cmdW    *bufio.Writer
	nonBlk  bool
	pending int
	lastErr error
	mu      sync.Mutex // guards lastErr for LastError() readers outside the hot path
}

// ErrKind classifies a returned error the way spec error handling requires.
type ErrKind int

const (
	KindTransport ErrKind = iota
	KindProtocol
	KindEngine
	KindValidation
)

// Error wraps an underlying cause with a classification and, for
// KindEngine, the engine's own numeric reply code.
type Error struct {
	Kind ErrKind
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Kind == KindEngine {
		return fmt.Sprintf("engine error %d (%s): %v", e.Code, EngineErrorString(e.Code), e.Err)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func wrapErr(kind ErrKind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: err}
}

func dummyModeEnabled() bool {
	v := strings.TrimSpace(os.Getenv("MOD_DEV_HOST"))
	if v == "" {
		return false
	}
	switch strings.ToLower(v) {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

func resolveHostPort(cfg Config) (string, int) {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		if s := os.Getenv("MOD_DEVICE_HOST_PORT"); s != "" {
			if p, err := strconv.Atoi(s); err == nil {
				port = p
			}
		}
	}
	if port == 0 {
		port = 5555
	}
	return host, port
}

// Dial connects the command and feedback sockets. In dummy mode (selected by
// the MOD_DEV_HOST environment variable, mirroring the engine's own
// offline-development switch) no sockets are opened at all and every
// request short-circuits to synthetic success.
func Dial(cfg Config) (*Client, error) {
	c := &Client{cfg: cfg, logger: cfg.Logger}
	if dummyModeEnabled() {
		c.dummy = true
		c.logger.Info().Msg("engineclient: dummy mode enabled, no sockets opened")
		return c, nil
	}

	host, port := resolveHostPort(cfg)
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	cmdConn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return nil, wrapErr(KindTransport, fmt.Errorf("dial command socket %s: %w", addr, err))
	}
	fbAddr := net.JoinHostPort(host, strconv.Itoa(port+1))
	fbConn, err := net.DialTimeout("tcp", fbAddr, 5*time.Second)
	if err != nil {
		cmdConn.Close()
		return nil, wrapErr(KindTransport, fmt.Errorf("dial feedback socket %s: %w", fbAddr, err))
	}

	if tc, ok := cmdConn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}
	if tc, ok := fbConn.(*net.TCPConn); ok {
		tc.SetNoDelay(true)
	}

	c.cmd = cmdConn
	c.fb = fbConn
	c.cmdW = bufio.NewWriter(cmdConn)
	c.fbR = bufio.NewReader(fbConn)
	return c, nil
}

// Reconnect tears down both sockets (if open) and re-dials. It never
// touches pending counts from a previous session.
func (c *Client) Reconnect() error {
	c.Close()
	fresh, err := Dial(c.cfg)
	if err != nil {
		return err
	}
	*c = *fresh
	return nil
}

// Close releases both sockets. Safe to call on an already-closed or
// dummy-mode client.
func (c *Client) Close() {
	if c.cmd != nil {
		c.cmd.Close()
		c.cmd = nil
	}
	if c.fb != nil {
		c.fb.Close()
		c.fb = nil
	}
}

// LastError returns the most recently recorded error, or nil.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

func (c *Client) setLastError(err error) {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
}

// Dummy reports whether this client is operating in dummy (offline) mode.
func (c *Client) Dummy() bool { return c.dummy }
