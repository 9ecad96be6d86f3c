package models

import "fmt"

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lng"`
}

func (l Location) Validate() error {
	if l.Lat < -90 || l.Lat > 90 {
		return fmt.Errorf("latitude out of range: %f", l.Lat)
	}
	if l.Lon < -180 || l.Lon > 180 {
		return fmt.Errorf("longitude out of range: %f", l.Lon)
	}
	return nil
}
