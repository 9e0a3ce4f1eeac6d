package ws

import "time"

// ConnInfo carries the metadata attached to a live connection for metrics,
// event publishing and audit.
type ConnInfo struct {
	ConnID      string
	UserID      int
	Username    string
	DeviceID    string
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
