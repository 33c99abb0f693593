// Package addon locates the prebuilt audio-utils helper and speaks the
// call-id protocol to it over stdin/stdout, one JSON object per line.
package addon

// Protocol operations.
const (
	OpInfo         = "info"
	OpGetDuration  = "get_duration"
	OpGetLastError = "get_last_error"
)

// Request is sent by the client.
type Request struct {
	Op     string `json:"op"`
	CallID uint32 `json:"call_id"`
	Path   string `json:"path,omitempty"`
}

// Response answers exactly one Request and echoes its call id.
type Response struct {
	CallID   uint32  `json:"call_id"`
	OK       bool    `json:"ok"`
	Duration float64 `json:"duration,omitempty"`
	Error    string  `json:"error,omitempty"`
	Backend  string  `json:"backend,omitempty"`
}
