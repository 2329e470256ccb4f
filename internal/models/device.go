package models

import "time"

type Device struct {
	ID           string    `json:"id"`
	DeviceID     string    `json:"device_id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"` // "traffic_sensor", "camera", "air_quality"
	Location     string    `json:"location"`
	Manufacturer string    `json:"manufacturer"`
	Status       string    `json:"status"` // "online", "offline", "maintenance"
	LastSeen     time.Time `json:"last_seen"`
}
