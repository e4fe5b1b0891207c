package plugin

import (
	"context"

	"github.com/rs/zerolog/log"
)

const DefaultLogLimit = 50

// State is everything the plugin panel renders.
type State struct {
	IsConnected bool
	Status      StatusCode
	Info        *Status
	Config      *Config
	Devices     []Device
	Logs        []string
	Error       string
}

// Load pings the plugin and, when it answers, collects status, config,
// devices and recent logs. The first failure is reported in State.Error.
func (c *Client) Load(ctx context.Context, logLimit int) State {
	state := State{Status: StatusOffline}
	if !c.IsAvailable(ctx) {
		return state
	}
	state.IsConnected = true
	state.Status = StatusOnline

	fail := func(err error, op string) {
		log.Err(err).Str("op", op).Msg("Plugin call failed")
		if state.Error == "" {
			state.Error = ErrorMessage(err)
			state.Status = StatusError
		}
	}

	if info, err := c.Status(ctx); err != nil {
		fail(err, "status")
	} else {
		state.Info = &info
		if !info.Online {
			state.Status = StatusMaintenance
		}
	}
	if cfg, err := c.Config(ctx); err != nil {
		fail(err, "config")
	} else {
		state.Config = &cfg
	}
	if devices, err := c.Devices(ctx); err != nil {
		fail(err, "devices")
	} else {
		state.Devices = devices
	}
	if lines, err := c.Logs(ctx, logLimit); err != nil {
		fail(err, "logs")
	} else {
		state.Logs = lines
	}
	return state
}
