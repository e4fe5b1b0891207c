package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/fedteam/apiclient"
	"github.com/rs/zerolog/log"
)

const unknownError = "Erro desconhecido"

// Response is the envelope every plugin endpoint answers with.
type Response[T any] struct {
	Success   bool   `json:"success"`
	Data      T      `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

type Status struct {
	Online     bool   `json:"online"`
	Version    string `json:"version"`
	Uptime     int64  `json:"uptime"`
	LastUpdate string `json:"lastUpdate"`
}

type Config struct {
	Enabled   bool           `json:"enabled"`
	Settings  map[string]any `json:"settings"`
	Endpoints []string       `json:"endpoints"`
}

// ConfigUpdate is a partial Config; nil fields are left unchanged.
type ConfigUpdate struct {
	Enabled   *bool          `json:"enabled,omitempty"`
	Settings  map[string]any `json:"settings,omitempty"`
	Endpoints []string       `json:"endpoints,omitempty"`
}

type Device struct {
	ID         string         `json:"id"`
	Name       string         `json:"name,omitempty"`
	Type       DeviceType     `json:"type,omitempty"`
	Connection ConnectionType `json:"connection,omitempty"`
	Connected  bool           `json:"connected"`
}

// DisplayName falls back to a positional label for unnamed devices.
func (d Device) DisplayName(index int) string {
	if d.Name != "" {
		return d.Name
	}
	return "Dispositivo " + strconv.Itoa(index+1)
}

// Error is an envelope that came back with success=false.
type Error struct {
	Path    string
	Code    string
	Message string
}

func (e *Error) Error() string {
	msg := e.Code
	if msg == "" {
		msg = e.Message
	}
	if msg == "" {
		msg = unknownError
	}
	return fmt.Sprintf("plugin %s: %s", e.Path, msg)
}

type Client struct {
	api *apiclient.Client
}

// New builds a plugin client. Every request carries the bearer token when one is set.
func New(baseURL string, timeout time.Duration, opts ...apiclient.Option) *Client {
	opts = append([]apiclient.Option{
		apiclient.WithTarget("plugin"),
		apiclient.WithAuthPolicy(func(string) bool { return true }),
	}, opts...)
	return &Client{api: apiclient.New(baseURL, timeout, opts...)}
}

// For returns a client authenticated with the session's token. A 401 from the
// plugin does not end the session.
func (c *Client) For(tokens apiclient.TokenSource) *Client {
	return &Client{api: c.api.For(tokens, nil)}
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var env Response[T]
	if err := c.api.Do(ctx, method, path, body, &env); err != nil {
		return env.Data, err
	}
	if !env.Success {
		return env.Data, &Error{Path: path, Code: env.Error, Message: env.Message}
	}
	return env.Data, nil
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	return call[Status](ctx, c, http.MethodGet, EndpointStatus, nil)
}

func (c *Client) Config(ctx context.Context) (Config, error) {
	return call[Config](ctx, c, http.MethodGet, EndpointConfig, nil)
}

func (c *Client) UpdateConfig(ctx context.Context, update ConfigUpdate) (Config, error) {
	return call[Config](ctx, c, http.MethodPut, EndpointConfig, update)
}

// Restart asks the plugin to restart and returns its acknowledgement.
func (c *Client) Restart(ctx context.Context) (string, error) {
	out, err := call[struct {
		Message string `json:"message"`
	}](ctx, c, http.MethodPost, EndpointRestart, nil)
	return out.Message, err
}

// Logs returns the latest plugin log lines. limit <= 0 leaves the choice to the plugin.
func (c *Client) Logs(ctx context.Context, limit int) ([]string, error) {
	path := EndpointLogs
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	return call[[]string](ctx, c, http.MethodGet, path, nil)
}

func (c *Client) Execute(ctx context.Context, command Command, params map[string]any) (json.RawMessage, error) {
	body := struct {
		Command Command        `json:"command"`
		Params  map[string]any `json:"params,omitempty"`
	}{command, params}
	return call[json.RawMessage](ctx, c, http.MethodPost, EndpointExecute, body)
}

func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	return call[[]Device](ctx, c, http.MethodGet, EndpointDevices, nil)
}

func (c *Client) ConnectDevice(ctx context.Context, deviceID string) (bool, error) {
	out, err := call[struct {
		Connected bool `json:"connected"`
	}](ctx, c, http.MethodPost, DeviceConnectPath(deviceID), nil)
	return out.Connected, err
}

func (c *Client) DisconnectDevice(ctx context.Context, deviceID string) (bool, error) {
	out, err := call[struct {
		Disconnected bool `json:"disconnected"`
	}](ctx, c, http.MethodPost, DeviceDisconnectPath(deviceID), nil)
	return out.Disconnected, err
}

func (c *Client) SendToDevice(ctx context.Context, deviceID string, data any) (json.RawMessage, error) {
	return call[json.RawMessage](ctx, c, http.MethodPost, DeviceSendPath(deviceID), data)
}

func (c *Client) DeviceStatus(ctx context.Context, deviceID string) (Device, error) {
	return call[Device](ctx, c, http.MethodGet, DeviceStatusPath(deviceID), nil)
}

func (c *Client) Ping(ctx context.Context) (bool, error) {
	out, err := call[struct {
		Pong bool `json:"pong"`
	}](ctx, c, http.MethodGet, EndpointPing, nil)
	return out.Pong, err
}

// IsAvailable reports whether the plugin answers a ping.
func (c *Client) IsAvailable(ctx context.Context) bool {
	if _, err := c.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("Plugin is not available")
		return false
	}
	return true
}

// ErrorMessage extracts the text shown to users for a failed plugin call.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *Error
	if errors.As(err, &pe) {
		if pe.Code != "" {
			return pe.Code
		}
		if pe.Message != "" {
			return pe.Message
		}
		return unknownError
	}
	if msg := apiclient.BackendMessage(err); msg != "" {
		return msg
	}
	if apiclient.IsNetworkError(err) {
		return apiclient.MsgNetworkError
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return unknownError
}
