package models

import "time"

// TrafficSample is one persisted traffic reading for a monitored location.
// Samples are append-only: once stored they are never updated or deleted.
type TrafficSample struct {
	ID              string    `json:"id"`
	Location        string    `json:"location"`
	CongestionLevel int       `json:"congestion_level"` // 1 (free flow) to 10 (gridlock)
	AverageSpeed    float64   `json:"average_speed"`    // km/h
	VehicleCount    int       `json:"vehicle_count"`
	Timestamp       time.Time `json:"timestamp"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
}

// Point returns the sample coordinates as a Location.
func (t *TrafficSample) Point() Location {
	return Location{Lat: t.Latitude, Lon: t.Longitude}
}

// TrafficSampleRecord is the flat Parquet row for a TrafficSample.
type TrafficSampleRecord struct {
	ID              string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Location        string  `parquet:"name=location, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	CongestionLevel int32   `parquet:"name=congestion_level, type=INT32"`
	AverageSpeed    float64 `parquet:"name=average_speed, type=DOUBLE"`
	VehicleCount    int32   `parquet:"name=vehicle_count, type=INT32"`
	Timestamp       int64   `parquet:"name=timestamp, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	Latitude        float64 `parquet:"name=latitude, type=DOUBLE"`
	Longitude       float64 `parquet:"name=longitude, type=DOUBLE"`
}

// Record converts the sample into its Parquet row.
func (t *TrafficSample) Record() TrafficSampleRecord {
	return TrafficSampleRecord{
		ID:              t.ID,
		Location:        t.Location,
		CongestionLevel: int32(t.CongestionLevel),
		AverageSpeed:    t.AverageSpeed,
		VehicleCount:    int32(t.VehicleCount),
		Timestamp:       t.Timestamp.UnixMilli(),
		Latitude:        t.Latitude,
		Longitude:       t.Longitude,
	}
}
