package models

import "time"

// LogEntry is one captured diagnostic line.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp" example:"2025-11-05T10:00:00Z"`
	Level     string    `json:"level" example:"INFO"`
	Target    string    `json:"target" example:"cache"`
	Message   string    `json:"message" example:"Upserting document"`
} // @name LogEntry

// LogListResponse is a snapshot of the log buffer.
type LogListResponse struct {
	Entries []LogEntry `json:"entries"`
	Count   int        `json:"count" example:"1"`
} // @name LogListResponse

// LogCountResponse reports the number of buffered entries.
type LogCountResponse struct {
	Count    int `json:"count" example:"12"`
	Capacity int `json:"capacity" example:"1000"`
} // @name LogCountResponse

// LogExportResponse describes a file written by an export.
type LogExportResponse struct {
	Path    string `json:"path" example:"logs/edge-cache-20251105-100000.log"`
	Entries int    `json:"entries" example:"12"`
	Bytes   int64  `json:"bytes" example:"2048"`
} // @name LogExportResponse

// StoreStatusResponse describes the document store of the session.
type StoreStatusResponse struct {
	Initialized bool   `json:"initialized" example:"true"`
	Driver      string `json:"driver" example:"sqlite"`
	Location    string `json:"location,omitempty" example:"./data/edge-cache.db"`
	Collection  string `json:"collection" example:"dittoappconfigs"`
	Observers   int    `json:"observers" example:"1"`
	Status      string `json:"status" example:"Store initialized (driver: sqlite, location: ./data/edge-cache.db)"`
} // @name StoreStatusResponse

// ObserverResponse reports the state of an observer registration.
type ObserverResponse struct {
	Concern    string `json:"concern" example:"app-configs"`
	Registered bool   `json:"registered" example:"true"`
	Created    bool   `json:"created" example:"true"`
} // @name ObserverResponse
