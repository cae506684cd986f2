package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Lessonlink.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Refresh fetches and activates a fresh dataset snapshot.
func (c *Client) Refresh() (*RefreshResponse, error) {
	var resp RefreshResponse
	if err := c.client.Call("Lessonlink.Refresh", RefreshRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Match submits a batch of schedules for matching.
func (c *Client) Match(req MatchRequest) (*MatchResponse, error) {
	var resp MatchResponse
	if err := c.client.Call("Lessonlink.Match", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Results retrieves stored batch results.
func (c *Client) Results(req ResultsRequest) (*ResultsResponse, error) {
	var resp ResultsResponse
	if err := c.client.Call("Lessonlink.Results", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Override pins a schedule to an operator-chosen meeting.
func (c *Client) Override(req OverrideRequest) (*OverrideResponse, error) {
	var resp OverrideResponse
	if err := c.client.Call("Lessonlink.Override", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatasetHealth retrieves dataset diagnostics.
func (c *Client) DatasetHealth() (*DatasetHealthResponse, error) {
	var resp DatasetHealthResponse
	if err := c.client.Call("Lessonlink.DatasetHealth", DatasetHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop processing.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Lessonlink.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
