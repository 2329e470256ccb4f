package models

import "fmt"

type Location struct {
	Lat float64 `json:"lat" parquet:"name=lat,type=DOUBLE"`
	Lon float64 `json:"lon" parquet:"name=lon,type=DOUBLE"`
}

// Jitter returns l shifted by the given offsets on each axis.
func (l Location) Jitter(dLat, dLon float64) Location {
	return Location{Lat: l.Lat + dLat, Lon: l.Lon + dLon}
}

func (l Location) String() string {
	return fmt.Sprintf("POINT(%f %f)", l.Lon, l.Lat)
}

func (l *Location) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		_, err := fmt.Sscanf(string(v), "POINT(%f %f)", &l.Lon, &l.Lat)
		return err
	case string:
		_, err := fmt.Sscanf(v, "POINT(%f %f)", &l.Lon, &l.Lat)
		return err
	default:
		return fmt.Errorf("unsupported type for Location: %T", value)
	}
}
