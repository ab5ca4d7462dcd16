package model

import "time"

// Device is a model of the persistency layer
type Device struct {
	ID        string
	Name      string
	Type      string
	Status    string
	VersionID int64
	UpdatedAt time.Time
}
