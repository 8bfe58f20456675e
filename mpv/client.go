// Package mpv drives mpv players over their JSON IPC socket.
package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// DefaultSocketPath is the default Unix socket path for the main player.
	DefaultSocketPath = "/tmp/reelcut-main.sock"
	// DefaultPipSocketPath is the default Unix socket path for the overlay player.
	DefaultPipSocketPath = "/tmp/reelcut-pip.sock"

	dialTimeout = 2 * time.Second
)

var (
	// ErrNotConnected is returned when attempting operations on a disconnected client.
	ErrNotConnected = errors.New("mpv: not connected")
	// ErrSocketNotFound is returned when the socket cannot be dialled.
	ErrSocketNotFound = errors.New("mpv: socket not found - is mpv running with --input-ipc-server?")
	// requestID is a global counter for generating unique request IDs.
	requestID uint64
)

// ipcRequest represents a JSON IPC request to mpv.
type ipcRequest struct {
	Command   []interface{} `json:"command"`
	RequestID uint64        `json:"request_id"`
}

// ipcMessage is any line mpv writes: a command response or an event.
type ipcMessage struct {
	Data      interface{} `json:"data"`
	RequestID uint64      `json:"request_id"`
	Error     string      `json:"error"`
	Event     string      `json:"event"`
	Name      string      `json:"name"`
	Reason    string      `json:"reason"`
}

// Event is an asynchronous notification from mpv.
type Event struct {
	Name     string      // "property-change", "file-loaded", "end-file", ...
	Property string      // for property-change
	Data     interface{} // property value
	Reason   string      // for end-file
}

// Client is an mpv IPC client that communicates via Unix socket. Responses
// are matched to requests by id; events are delivered on Events.
type Client struct {
	socketPath string

	mu      sync.Mutex
	conn    net.Conn
	pending map[uint64]chan ipcMessage
	events  chan Event
	done    chan struct{}
}

// NewClient creates a new mpv IPC client.
// If socketPath is empty, DefaultSocketPath is used.
func NewClient(socketPath string) *Client {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Client{
		socketPath: socketPath,
		events:     make(chan Event, 64),
	}
}

// Connect establishes a connection to the mpv IPC socket and starts reading.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return nil // Already connected
	}

	conn, err := net.DialTimeout("unix", c.socketPath, dialTimeout)
	if err != nil {
		return fmt.Errorf("%w (%s)", ErrSocketNotFound, c.socketPath)
	}

	c.conn = conn
	c.pending = make(map[uint64]chan ipcMessage)
	c.done = make(chan struct{})
	go c.readLoop(conn, c.done)
	return nil
}

// Close closes the connection to mpv.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}

	err := c.conn.Close()
	c.conn = nil
	return err
}

// IsConnected returns true if the client is connected to mpv.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil
}

// SocketPath returns the socket path this client is configured to use.
func (c *Client) SocketPath() string {
	return c.socketPath
}

// Events returns the channel of asynchronous mpv events. Events are dropped
// when nobody drains the channel.
func (c *Client) Events() <-chan Event {
	return c.events
}

// GetProperty retrieves the value of an mpv property.
// The property name should be the mpv property name (e.g., "time-pos", "duration", "pause").
func (c *Client) GetProperty(ctx context.Context, name string) (interface{}, error) {
	return c.Command(ctx, "get_property", name)
}

// SetProperty sets the value of an mpv property.
// The property name should be the mpv property name (e.g., "pause", "volume").
func (c *Client) SetProperty(ctx context.Context, name string, value interface{}) error {
	_, err := c.Command(ctx, "set_property", name, value)
	return err
}

// ObserveProperty asks mpv to report changes of name as property-change events.
func (c *Client) ObserveProperty(ctx context.Context, id int, name string) error {
	_, err := c.Command(ctx, "observe_property", id, name)
	return err
}

// GetTimePos returns the current playback position in seconds.
func (c *Client) GetTimePos(ctx context.Context) (float64, error) {
	result, err := c.GetProperty(ctx, "time-pos")
	if err != nil {
		return 0, err
	}
	return toFloat64(result)
}

// GetDuration returns the total duration of the loaded file in seconds.
func (c *Client) GetDuration(ctx context.Context) (float64, error) {
	result, err := c.GetProperty(ctx, "duration")
	if err != nil {
		return 0, err
	}
	return toFloat64(result)
}

// GetPaused returns true if playback is paused.
func (c *Client) GetPaused(ctx context.Context) (bool, error) {
	result, err := c.GetProperty(ctx, "pause")
	if err != nil {
		return false, err
	}
	paused, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("mpv: unexpected pause value type: %T", result)
	}
	return paused, nil
}

// toFloat64 converts an interface{} to float64.
// JSON numbers from mpv are decoded as float64.
func toFloat64(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("mpv: unexpected numeric value type: %T", v)
	}
}

// Command sends a JSON IPC command to mpv and waits for its response.
// The command is formatted as {"command": [command, args...], "request_id": <id>}
// and sent as newline-terminated JSON over the socket.
func (c *Client) Command(ctx context.Context, command string, args ...interface{}) (interface{}, error) {
	// Build command array: [command, arg1, arg2, ...]
	cmdArray := make([]interface{}, 0, len(args)+1)
	cmdArray = append(cmdArray, command)
	cmdArray = append(cmdArray, args...)

	reqID := atomic.AddUint64(&requestID, 1)
	data, err := json.Marshal(ipcRequest{Command: cmdArray, RequestID: reqID})
	if err != nil {
		return nil, fmt.Errorf("mpv: failed to marshal command: %w", err)
	}
	data = append(data, '\n')

	reply := make(chan ipcMessage, 1)

	c.mu.Lock()
	if c.conn == nil {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	conn, done := c.conn, c.done
	c.pending[reqID] = reply
	_, err = conn.Write(data)
	if err != nil {
		delete(c.pending, reqID)
	}
	c.mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("mpv: failed to send command: %w", err)
	}

	select {
	case resp := <-reply:
		if resp.Error != "" && resp.Error != "success" {
			return nil, fmt.Errorf("mpv: %s: %s", command, resp.Error)
		}
		return resp.Data, nil
	case <-done:
		return nil, ErrNotConnected
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, reqID)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

// readLoop routes every line from mpv to the waiting request or the event channel.
func (c *Client) readLoop(conn net.Conn, done chan struct{}) {
	defer close(done)

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg ipcMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			// Skip malformed lines
			continue
		}

		if msg.Event != "" {
			ev := Event{Name: msg.Event, Property: msg.Name, Data: msg.Data, Reason: msg.Reason}
			select {
			case c.events <- ev:
			default:
			}
			continue
		}

		c.mu.Lock()
		reply, ok := c.pending[msg.RequestID]
		delete(c.pending, msg.RequestID)
		c.mu.Unlock()
		if ok {
			reply <- msg
		}
	}

	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
}
