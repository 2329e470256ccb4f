package models

const (
	DeviceStatusOnline      = "online"
	DeviceStatusOffline     = "offline"
	DeviceStatusMaintenance = "maintenance"

	DeviceTypeTrafficSensor = "traffic_sensor"
	DeviceTypeCamera        = "camera"

	TopicTrafficSamples = "traffic_samples"
)

// DefaultLocations is the monitored set used when none is configured.
var DefaultLocations = []string{
	"Main St & 1st Ave",
	"Central Square",
	"Highway I-95",
	"Bridge Entrance",
	"Tunnel Exit",
}
