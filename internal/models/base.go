package models

import "github.com/google/uuid"

// ensureID keeps a caller supplied id and otherwise mints a random UUID.
func ensureID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

// Location is a geocoordinate. Both halves are pointers so that an absent
// coordinate is distinguishable from 0,0.
type Location struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// Complete reports whether both latitude and longitude are set.
func (l Location) Complete() bool { return l.Lat != nil && l.Lng != nil }

// Empty reports whether neither half is set.
func (l Location) Empty() bool { return l.Lat == nil && l.Lng == nil }
