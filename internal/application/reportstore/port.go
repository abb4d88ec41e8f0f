// Package reportstore defines the port the reporter uses to persist
// report.json buckets and maintain the second/minute report rings
// (spec.md §4.6 "Reporter", §9 "Report ring").
package reportstore

import "github.com/kodflow/resctld/internal/domain/report"

// Store is the port a reporter writes through. An implementation
// atomically writes {report_d}/{unix_second}.json, refreshes the
// report.json symlink, prunes files older than retention, and keeps an
// in-memory Ring for callers that need recent history without re-
// reading the filesystem.
//
// Store is safe for concurrent use: spec.md §5 calls for "a dedicated
// mutex" guarding the ring independent of the runner mutex.
type Store interface {
	// PutSecond persists rep as this instant's second-cadence bucket.
	PutSecond(rep report.Report) error
	// PutMinute persists rep as this instant's minute-cadence bucket,
	// called once every 60 seconds with the minute-aligned report.
	PutMinute(rep report.Report) error

	// SecondRing returns the retained second-cadence history.
	SecondRing() *report.Ring
	// MinuteRing returns the retained minute-cadence history.
	MinuteRing() *report.Ring
}
