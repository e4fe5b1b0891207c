package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/jrsteele09/fedteam/plugin"
)

const pluginVersion = "1.0.0-mock"

// pluginSim answers the device plugin endpoints so the plugin panel can be
// exercised without hardware.
type pluginSim struct {
	started time.Time
	config  plugin.Config
	devices map[string]*plugin.Device
	order   []string
	logs    []string
	lock    sync.Mutex
}

func newPluginSim() *pluginSim {
	p := &pluginSim{
		started: NowTimeFunc(),
		config: plugin.Config{
			Enabled:   true,
			Settings:  map[string]any{"sampleRate": 50},
			Endpoints: []string{plugin.EndpointData, plugin.EndpointDataStream},
		},
		devices: make(map[string]*plugin.Device),
	}
	for _, d := range []plugin.Device{
		{ID: "hr-01", Name: "Cinta cardíaca", Type: plugin.DeviceSensor, Connection: plugin.ConnectionBluetooth},
		{ID: "gw-01", Name: "Gateway da academia", Type: plugin.DeviceGateway, Connection: plugin.ConnectionEthernet, Connected: true},
		{ID: "ctl-01", Type: plugin.DeviceController, Connection: plugin.ConnectionUSB},
	} {
		p.devices[d.ID] = &d
		p.order = append(p.order, d.ID)
	}
	p.logf("plugin started")
	return p
}

func (p *pluginSim) routes(r *mux.Router) {
	r.HandleFunc(plugin.EndpointPing, p.ping).Methods(http.MethodGet)
	r.HandleFunc(plugin.EndpointStatus, p.status).Methods(http.MethodGet)
	r.HandleFunc(plugin.EndpointConfig, p.getConfig).Methods(http.MethodGet)
	r.HandleFunc(plugin.EndpointConfig, p.updateConfig).Methods(http.MethodPut)
	r.HandleFunc(plugin.EndpointRestart, p.restart).Methods(http.MethodPost)
	r.HandleFunc(plugin.EndpointLogs, p.getLogs).Methods(http.MethodGet)
	r.HandleFunc(plugin.EndpointExecute, p.execute).Methods(http.MethodPost)
	r.HandleFunc(plugin.EndpointDevices, p.listDevices).Methods(http.MethodGet)
	r.HandleFunc(plugin.EndpointDevices+"/{id}/{action:connect|disconnect|send}", p.deviceAction).Methods(http.MethodPost)
	r.HandleFunc(plugin.EndpointDevices+"/{id}/status", p.deviceStatus).Methods(http.MethodGet)
}

func (p *pluginSim) logf(format string, args ...any) {
	line := NowTimeFunc().Format(time.RFC3339) + " " + fmt.Sprintf(format, args...)
	p.logs = append(p.logs, line)
	if len(p.logs) > 500 {
		p.logs = p.logs[len(p.logs)-500:]
	}
}

func pluginOK(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, plugin.Response[any]{
		Success:   true,
		Data:      data,
		Timestamp: NowTimeFunc().Format(time.RFC3339),
	})
}

func pluginFail(w http.ResponseWriter, status int, code plugin.ErrorCode, message string) {
	writeJSON(w, status, plugin.Response[any]{
		Error:     string(code),
		Message:   message,
		Timestamp: NowTimeFunc().Format(time.RFC3339),
	})
}

func (p *pluginSim) ping(w http.ResponseWriter, _ *http.Request) {
	pluginOK(w, map[string]bool{"pong": true})
}

func (p *pluginSim) status(w http.ResponseWriter, _ *http.Request) {
	p.lock.Lock()
	defer p.lock.Unlock()
	pluginOK(w, plugin.Status{
		Online:     p.config.Enabled,
		Version:    pluginVersion,
		Uptime:     int64(NowTimeFunc().Sub(p.started) / time.Second),
		LastUpdate: p.started.Format(time.RFC3339),
	})
}

func (p *pluginSim) getConfig(w http.ResponseWriter, _ *http.Request) {
	p.lock.Lock()
	defer p.lock.Unlock()
	pluginOK(w, p.config)
}

func (p *pluginSim) updateConfig(w http.ResponseWriter, r *http.Request) {
	var in plugin.ConfigUpdate
	if err := decode(r, &in); err != nil {
		pluginFail(w, http.StatusBadRequest, plugin.ErrCodeInvalidData, err.Error())
		return
	}
	p.lock.Lock()
	defer p.lock.Unlock()
	if in.Enabled != nil {
		p.config.Enabled = *in.Enabled
	}
	for k, v := range in.Settings {
		p.config.Settings[k] = v
	}
	if in.Endpoints != nil {
		p.config.Endpoints = in.Endpoints
	}
	p.logf("config updated")
	pluginOK(w, p.config)
}

func (p *pluginSim) restart(w http.ResponseWriter, _ *http.Request) {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.started = NowTimeFunc()
	p.logf("plugin restarted")
	pluginOK(w, map[string]string{"message": "Plugin reiniciado"})
}

func (p *pluginSim) getLogs(w http.ResponseWriter, r *http.Request) {
	p.lock.Lock()
	defer p.lock.Unlock()
	lines := p.logs
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit < len(lines) {
		lines = lines[len(lines)-limit:]
	}
	pluginOK(w, append([]string(nil), lines...))
}

func (p *pluginSim) execute(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Command plugin.Command `json:"command"`
		Params  map[string]any `json:"params"`
	}
	if err := decode(r, &in); err != nil {
		pluginFail(w, http.StatusBadRequest, plugin.ErrCodeInvalidData, err.Error())
		return
	}
	p.lock.Lock()
	defer p.lock.Unlock()

	switch in.Command {
	case plugin.CommandSystemInfo:
		pluginOK(w, map[string]any{"version": pluginVersion, "devices": len(p.devices)})
	case plugin.CommandDeviceList, plugin.CommandDeviceScan:
		pluginOK(w, p.deviceList())
	case plugin.CommandNetworkStatus:
		pluginOK(w, map[string]any{"online": true})
	default:
		pluginFail(w, http.StatusBadRequest, plugin.ErrCodeInvalidCommand, "Comando inválido")
		return
	}
	p.logf("executed %s", in.Command)
}

func (p *pluginSim) deviceList() []plugin.Device {
	out := make([]plugin.Device, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, *p.devices[id])
	}
	return out
}

func (p *pluginSim) listDevices(w http.ResponseWriter, _ *http.Request) {
	p.lock.Lock()
	defer p.lock.Unlock()
	pluginOK(w, p.deviceList())
}

func (p *pluginSim) deviceAction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	p.lock.Lock()
	defer p.lock.Unlock()

	d, ok := p.devices[vars["id"]]
	if !ok {
		pluginFail(w, http.StatusNotFound, plugin.ErrCodeDeviceNotFound, "Dispositivo não encontrado")
		return
	}
	switch vars["action"] {
	case "connect":
		d.Connected = true
		p.logf("device %s connected", d.ID)
		pluginOK(w, map[string]bool{"connected": true})
	case "disconnect":
		d.Connected = false
		p.logf("device %s disconnected", d.ID)
		pluginOK(w, map[string]bool{"disconnected": true})
	case "send":
		if !d.Connected {
			pluginFail(w, http.StatusConflict, plugin.ErrCodeConnectionFailed, "Dispositivo desconectado")
			return
		}
		var payload json.RawMessage
		if err := decode(r, &payload); err != nil {
			pluginFail(w, http.StatusBadRequest, plugin.ErrCodeInvalidData, err.Error())
			return
		}
		p.logf("sent %d bytes to %s", len(payload), d.ID)
		pluginOK(w, map[string]any{"delivered": true})
	}
}

func (p *pluginSim) deviceStatus(w http.ResponseWriter, r *http.Request) {
	p.lock.Lock()
	defer p.lock.Unlock()
	d, ok := p.devices[mux.Vars(r)["id"]]
	if !ok {
		pluginFail(w, http.StatusNotFound, plugin.ErrCodeDeviceNotFound, "Dispositivo não encontrado")
		return
	}
	pluginOK(w, *d)
}
