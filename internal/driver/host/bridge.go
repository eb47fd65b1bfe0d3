// Package host implements the remote-access side of the Nitrokey agent:
// an HTTP/JSON client that lets a host without direct USB access drive a
// Manager running inside cmd/nitrokey-agent on a machine that does.
// Grounded on the teacher's ASICDevice (bridge.go) — a thin RPC client
// wrapping one long-lived connection behind typed Go methods — adapted
// from a generated gRPC stub client to a plain net/http JSON client
// since gin (the server side, cmd/nitrokey-agent) has no code-generated
// client counterpart to pair it with.
package host

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultAgentAddress is the default address of a nitrokey-agent
// instance on the local network.
const DefaultAgentAddress = "http://127.0.0.1:8787"

// RemoteDevice is a client for a remote nitrokey-agent process.
type RemoteDevice struct {
	baseURL    string
	httpClient *http.Client
}

// NewRemoteDevice dials the agent at the default address.
func NewRemoteDevice() (*RemoteDevice, error) {
	return NewRemoteDeviceWithAddress(DefaultAgentAddress)
}

// NewRemoteDeviceWithAddress dials the agent at addr and verifies it is
// reachable via its health endpoint.
func NewRemoteDeviceWithAddress(addr string) (*RemoteDevice, error) {
	d := &RemoteDevice{
		baseURL:    addr,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	if err := d.ping(); err != nil {
		return nil, fmt.Errorf("failed to reach nitrokey-agent: %w", err)
	}
	return d, nil
}

func (d *RemoteDevice) ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := d.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("agent returned status %d", resp.StatusCode)
	}
	return nil
}

// commandRequest is the JSON body for every POST /commands/{name} call:
// a flat string-keyed argument map, letting one client method send any
// command name without a dedicated request type per command. The agent
// answers only the commands its dispatch table knows and returns an
// error for the rest.
type commandRequest struct {
	Args map[string]string `json:"args,omitempty"`
}

type commandResponse struct {
	Result map[string]string `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Command invokes a named device command on the remote agent and
// returns its result fields.
func (d *RemoteDevice) Command(ctx context.Context, name string, args map[string]string) (map[string]string, error) {
	body, err := json.Marshal(commandRequest{Args: args})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/commands/"+name, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("command %s: %w", name, err)
	}
	defer resp.Body.Close()

	var out commandResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("command %s: decode response: %w", name, err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("command %s: %s", name, out.Error)
	}
	return out.Result, nil
}

// GetStatus fetches the remote device's raw status fields.
func (d *RemoteDevice) GetStatus(ctx context.Context) (map[string]string, error) {
	return d.Command(ctx, "GetStatus", nil)
}

// GetSerialNumber fetches the remote device's serial number.
func (d *RemoteDevice) GetSerialNumber(ctx context.Context) (string, error) {
	result, err := d.Command(ctx, "GetSerialNumber", nil)
	if err != nil {
		return "", err
	}
	return result["serial"], nil
}

// Close releases the client's idle connections.
func (d *RemoteDevice) Close() error {
	d.httpClient.CloseIdleConnections()
	return nil
}
