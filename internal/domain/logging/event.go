// Package logging provides domain types for daemon event logging.
package logging

import "time"

// defaultMetadataCapacity is the initial capacity for metadata maps.
// Preallocated for typical 2-4 metadata entries to reduce allocations.
const defaultMetadataCapacity int = 4

// LogEvent represents an agent or sweep-driver event to be logged.
//
// This entity captures all information about one component's event,
// including timestamp, severity, the emitting component, and arbitrary
// metadata. Component identifies one of the daemon's own subsystems
// (runner, reporter, sweep, sampler, oomd, sideloader, balloon, bench)
// rather than an arbitrary supervised process name — resctld supervises
// a fixed, known set of internal components, not user-defined services.
type LogEvent struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time
	// Level is the severity level.
	Level Level
	// Component is the emitting component's name (empty for daemon-level events).
	Component string
	// EventType is the event type (e.g., "started", "stopped", "failed").
	EventType string
	// Message is a human-readable description.
	Message string
	// Metadata contains additional event data (PID, ExitCode, Error, etc.).
	Metadata map[string]any
}

// NewLogEvent creates a new LogEvent with the current timestamp.
//
// Params:
//   - level: the severity level.
//   - component: the emitting component's name (empty for daemon-level).
//   - eventType: the event type.
//   - message: the event message.
//
// Returns:
//   - LogEvent: the created event.
func NewLogEvent(level Level, component, eventType, message string) LogEvent {
	// Create event with preallocated metadata map.
	return LogEvent{
		Timestamp: time.Now(),
		Level:     level,
		Component: component,
		EventType: eventType,
		Message:   message,
		Metadata:  make(map[string]any, defaultMetadataCapacity),
	}
}

// WithMeta returns a copy of the event with the specified metadata key-value pair added.
//
// Params:
//   - key: the metadata key.
//   - value: the metadata value.
//
// Returns:
//   - LogEvent: the event with the added metadata.
func (e LogEvent) WithMeta(key string, value any) LogEvent {
	// Create a copy of metadata to avoid mutating the original.
	newMeta := make(map[string]any, len(e.Metadata)+1)
	// Copy existing metadata.
	for k, v := range e.Metadata {
		newMeta[k] = v
	}
	newMeta[key] = value

	// Return new event with updated metadata.
	return LogEvent{
		Timestamp: e.Timestamp,
		Level:     e.Level,
		Component: e.Component,
		EventType: e.EventType,
		Message:   e.Message,
		Metadata:  newMeta,
	}
}

// WithMetadata returns a copy of the event with all specified metadata added.
//
// Params:
//   - meta: the metadata map to add.
//
// Returns:
//   - LogEvent: the event with the added metadata.
func (e LogEvent) WithMetadata(meta map[string]any) LogEvent {
	// Return unchanged if no metadata to add.
	if meta == nil {
		// No changes needed.
		return e
	}

	// Create a copy of metadata to avoid mutating the original.
	newMeta := make(map[string]any, len(e.Metadata)+len(meta))
	// Copy existing metadata.
	for k, v := range e.Metadata {
		newMeta[k] = v
	}
	// Merge new metadata.
	for k, v := range meta {
		newMeta[k] = v
	}

	// Return new event with merged metadata.
	return LogEvent{
		Timestamp: e.Timestamp,
		Level:     e.Level,
		Component: e.Component,
		EventType: e.EventType,
		Message:   e.Message,
		Metadata:  newMeta,
	}
}
