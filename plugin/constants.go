package plugin

import "net/url"

const (
	EndpointStatus  = "/status"
	EndpointConfig  = "/config"
	EndpointLogs    = "/logs"
	EndpointPing    = "/ping"
	EndpointRestart = "/restart"
	EndpointExecute = "/execute"
	EndpointDevices = "/devices"

	EndpointData            = "/data"
	EndpointDataStream      = "/data/stream"
	EndpointDataHistory     = "/data/history"
	EndpointSettings        = "/settings"
	EndpointSettingsBackup  = "/settings/backup"
	EndpointSettingsRestore = "/settings/restore"
)

func DeviceConnectPath(deviceID string) string    { return devicePath(deviceID, "connect") }
func DeviceDisconnectPath(deviceID string) string { return devicePath(deviceID, "disconnect") }
func DeviceSendPath(deviceID string) string       { return devicePath(deviceID, "send") }
func DeviceStatusPath(deviceID string) string     { return devicePath(deviceID, "status") }

func devicePath(deviceID, action string) string {
	return EndpointDevices + "/" + url.PathEscape(deviceID) + "/" + action
}

type Command string

const (
	CommandSystemInfo       Command = "system.info"
	CommandSystemReboot     Command = "system.reboot"
	CommandSystemShutdown   Command = "system.shutdown"
	CommandDeviceScan       Command = "device.scan"
	CommandDeviceList       Command = "device.list"
	CommandDeviceReset      Command = "device.reset"
	CommandNetworkStatus    Command = "network.status"
	CommandNetworkReconnect Command = "network.reconnect"
	CommandDataExport       Command = "data.export"
	CommandDataImport       Command = "data.import"
	CommandDataClear        Command = "data.clear"
)

type StatusCode string

const (
	StatusOnline      StatusCode = "online"
	StatusOffline     StatusCode = "offline"
	StatusConnecting  StatusCode = "connecting"
	StatusError       StatusCode = "error"
	StatusMaintenance StatusCode = "maintenance"
)

type DeviceType string

const (
	DeviceSensor     DeviceType = "sensor"
	DeviceActuator   DeviceType = "actuator"
	DeviceController DeviceType = "controller"
	DeviceGateway    DeviceType = "gateway"
	DeviceUnknown    DeviceType = "unknown"
)

type ConnectionType string

const (
	ConnectionUSB       ConnectionType = "usb"
	ConnectionSerial    ConnectionType = "serial"
	ConnectionEthernet  ConnectionType = "ethernet"
	ConnectionWifi      ConnectionType = "wifi"
	ConnectionBluetooth ConnectionType = "bluetooth"
	ConnectionZigbee    ConnectionType = "zigbee"
)

type ErrorCode string

const (
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeDeviceNotFound     ErrorCode = "DEVICE_NOT_FOUND"
	ErrCodeInvalidCommand     ErrorCode = "INVALID_COMMAND"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"
	ErrCodePermissionDenied   ErrorCode = "PERMISSION_DENIED"
	ErrCodeInvalidData        ErrorCode = "INVALID_DATA"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
)
