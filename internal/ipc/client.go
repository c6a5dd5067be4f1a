package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"time"
)

// Client is a thin wrapper over a Unix socket dial, grounded on the
// teacher's control.Client round-trip helper but framed per §4.4 instead
// of newline-delimited.
type Client struct {
	SocketPath string
	Timeout    time.Duration
}

func NewClient(socketPath string) *Client {
	return &Client{SocketPath: socketPath, Timeout: 30 * time.Second}
}

type halfCloser interface {
	CloseWrite() error
}

// RoundTrip sends one request of kind k and decodes its response body into
// out (nil to ignore the body). Any IPC-layer failure (dial refused,
// malformed frame, premature EOF) is returned as an *IPCError so callers
// can report "daemon unreachable" per spec.md §7.
func (c *Client) RoundTrip(k Kind, payload any, out any) error {
	conn, err := net.Dial("unix", c.SocketPath)
	if err != nil {
		return &IPCError{Op: "dial", Err: err}
	}
	defer conn.Close()

	if c.Timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.Timeout))
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", k, err)
	}

	env := Envelope{Version: ProtocolVersion, Kind: k, Payload: body}
	envBytes, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshaling envelope: %w", err)
	}

	if err := WriteFrame(conn, envBytes); err != nil {
		return &IPCError{Op: "write", Err: err}
	}

	if hc, ok := conn.(halfCloser); ok {
		_ = hc.CloseWrite()
	}

	respBytes, err := ReadFrame(conn)
	if err != nil {
		return &IPCError{Op: "read", Err: err}
	}

	var resp Response
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return &IPCError{Op: "decode", Err: err}
	}
	if resp.Error != "" {
		return fmt.Errorf("%s", resp.Error)
	}
	if out != nil && len(resp.Body) > 0 {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return fmt.Errorf("decoding response body: %w", err)
		}
	}
	return nil
}

// IPCError wraps a transport-layer failure distinctly from a daemon-side
// application error, so callers can errors.As-branch per spec.md §7's
// IPC error-kind policy ("client exits non-zero with 'daemon unreachable'").
type IPCError struct {
	Op  string
	Err error
}

func (e *IPCError) Error() string {
	return fmt.Sprintf("daemon unreachable (%s): %v", e.Op, e.Err)
}

func (e *IPCError) Unwrap() error { return e.Err }
