// Package daemon provides daemon event logging infrastructure.
package daemon

// JSONLogEntry is a JSON structure for log events. JSONWriter does not
// use it: it writes a flat map with the metadata keys at the root.
// encoding/json has no inline option, so marshalling this struct nests
// Metadata under a "Metadata" key. Component
// names one of resctld's own subsystems (runner, reporter, sweep, sampler),
// not an arbitrary supervised process.
type JSONLogEntry struct {
	Timestamp string         `json:"ts"`
	Level     string         `json:"level"`
	Component string         `json:"component,omitempty"`
	Event     string         `json:"event"`
	Message   string         `json:"message,omitempty"`
	Metadata  map[string]any `json:",inline"`
}
