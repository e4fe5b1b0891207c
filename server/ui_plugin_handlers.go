package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jrsteele09/fedteam/appstate"
	"github.com/jrsteele09/fedteam/internal/utils"
	"github.com/jrsteele09/fedteam/plugin"
	"github.com/rs/zerolog/log"
)

// Commands offered on the plugin page.
var pluginCommands = []plugin.Command{
	plugin.CommandSystemInfo,
	plugin.CommandDeviceList,
	plugin.CommandDeviceScan,
	plugin.CommandNetworkStatus,
}

type deviceRow struct {
	plugin.Device
	Label string
}

type pluginView struct {
	State         plugin.State
	Devices       []deviceRow
	CanManage     bool
	Commands      []plugin.Command
	Command       plugin.Command
	CommandResult string
	CommandError  string
	BaseURL       string
}

func (s *Server) pluginFor(r *http.Request) *plugin.Client {
	app, _ := sessionsFromRequest(r)
	if app == nil {
		return s.plugin
	}
	return s.plugin.For(app.Auth())
}

func (s *Server) buildPluginView(r *http.Request) pluginView {
	app, _ := sessionsFromRequest(r)
	st := s.pluginFor(r).Load(r.Context(), plugin.DefaultLogLimit)

	view := pluginView{
		State:     st,
		CanManage: app.Permissions().IsAdmin(),
		Commands:  pluginCommands,
		BaseURL:   s.config.GetPluginBaseURL(),
	}
	for i, d := range st.Devices {
		view.Devices = append(view.Devices, deviceRow{Device: d, Label: d.DisplayName(i)})
	}
	return view
}

// PluginsPageHandler renders the plugin panel: status, config, devices and logs
func (s *Server) PluginsPageHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("plugins.html")

	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:   "Plugins",
			Active:  "plugins",
			Content: tmpl,
			Data:    s.buildPluginView(r),
		})
	}
}

// PluginRestartHandler asks the plugin to restart
func (s *Server) PluginRestartHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msg, err := s.pluginFor(r).Restart(r.Context())
		if err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("Plugin restart failed")
			redirectWithNotification(w, r, RoutePlugins, appstate.NotifyError, plugin.ErrorMessage(err))
			return
		}
		if msg == "" {
			msg = "Plugin reiniciado."
		}
		redirectWithNotification(w, r, RoutePlugins, appstate.NotifySuccess, msg)
	}
}

// PluginConfigHandler enables or disables the plugin
func (s *Server) PluginConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		enabled, err := strconv.ParseBool(r.FormValue("enabled"))
		if err != nil {
			redirectWithNotification(w, r, RoutePlugins, appstate.NotifyError, "Configuração inválida.")
			return
		}

		cfg, err := s.pluginFor(r).UpdateConfig(r.Context(), plugin.ConfigUpdate{Enabled: utils.Ptr(enabled)})
		if err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Msg("Plugin config update failed")
			redirectWithNotification(w, r, RoutePlugins, appstate.NotifyError, plugin.ErrorMessage(err))
			return
		}
		msg := "Plugin desativado."
		if cfg.Enabled {
			msg = "Plugin ativado."
		}
		redirectWithNotification(w, r, RoutePlugins, appstate.NotifySuccess, msg)
	}
}

// PluginCommandHandler runs a command and renders the panel with its result
func (s *Server) PluginCommandHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("plugins.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}
		cmd := plugin.Command(r.FormValue("command"))

		status := http.StatusOK
		result, err := s.pluginFor(r).Execute(r.Context(), cmd, nil)
		view := s.buildPluginView(r)
		view.Command = cmd
		if err != nil {
			log.Ctx(r.Context()).Warn().Err(err).Str("command", string(cmd)).Msg("Plugin command failed")
			view.CommandError = plugin.ErrorMessage(err)
			status = http.StatusBadGateway
		} else {
			view.CommandResult = prettyJSON(result)
		}

		s.renderPage(w, r, status, pageView{
			Title:   "Plugins",
			Active:  "plugins",
			Content: tmpl,
			Data:    view,
		})
	}
}

// PluginDeviceHandler connects, disconnects or sends data to a device
func (s *Server) PluginDeviceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := r.PathValue("id")
		client := s.pluginFor(r)

		var (
			msg string
			err error
		)
		switch r.PathValue("action") {
		case "connect":
			_, err = client.ConnectDevice(ctx, id)
			msg = "Dispositivo conectado."
		case "disconnect":
			_, err = client.DisconnectDevice(ctx, id)
			msg = "Dispositivo desconectado."
		case "send":
			_, err = client.SendToDevice(ctx, id, map[string]string{"payload": r.FormValue("payload")})
			msg = "Dados enviados ao dispositivo."
		default:
			s.renderNotFound(w, r)
			return
		}

		if err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("device", id).Str("action", r.PathValue("action")).Msg("Device action failed")
			redirectWithNotification(w, r, RoutePlugins, appstate.NotifyError, plugin.ErrorMessage(err))
			return
		}
		redirectWithNotification(w, r, RoutePlugins, appstate.NotifySuccess, msg)
	}
}

func prettyJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
