package ring

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kodflow/resctld/internal/domain/qos"
	"github.com/kodflow/resctld/internal/domain/report"
)

// DiskStudier implements application/sweep.Studier for a sweep driver
// running as a separate process from the agent (cmd/resctl-bench):
// rather than sharing the agent's in-memory report.Ring, it rebuilds
// one from the second-cadence bucket files the agent's reportstore/file
// adapter persists under Dir/second (spec.md §6 "Report directories
// hold one file per bucket"), then delegates to Studier.
//
// Grounded on reportstore/file.Store's own bucket-file naming
// convention ("<unix_second>.json" under a cadence subdirectory) so the
// sweep driver reads exactly what the agent wrote, without needing an
// RPC or shared-memory channel between the two processes.
type DiskStudier struct {
	// Dir is the agent's report directory (report_d's parent, i.e. the
	// directory passed to reportstore/file.New).
	Dir string
	// Cadence and Retention size the rebuilt Ring the same way the
	// agent's own second-cadence aggregator does.
	Cadence, Retention int64
}

// NewDiskStudier returns a DiskStudier reading bucket files from dir.
func NewDiskStudier(dir string, cadence, retention int64) *DiskStudier {
	return &DiskStudier{Dir: dir, Cadence: cadence, Retention: retention}
}

// Study implements sweep.Studier by reloading the relevant bucket files
// from disk and delegating to Studier.Study over the freshly-built ring.
func (d *DiskStudier) Study(period qos.Period) (vrate, readLat, writeLat qos.Study, err error) {
	r, err := d.load(period)
	if err != nil {
		return qos.Study{}, qos.Study{}, qos.Study{}, err
	}
	return New(r).Study(period)
}

// load rebuilds a report.Ring from every second-cadence bucket file
// whose embedded timestamp falls within [period.Start, period.End],
// widened by one retention window on either side so Ring.Within's own
// boundary semantics see a complete picture.
func (d *DiskStudier) load(period qos.Period) (*report.Ring, error) {
	dir := filepath.Join(d.Dir, "second")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read report dir %s: %w", dir, err)
	}

	r := report.NewRing(d.Cadence, d.Retention)
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".json") || strings.HasPrefix(name, ".tmp-") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name)) // #nosec G304 -- dir is trusted bootstrap config, entries come from ReadDir
		if err != nil {
			continue
		}
		var rep report.Report
		if err := json.Unmarshal(data, &rep); err != nil {
			continue
		}
		ts := rep.Timestamp.Unix()
		if ts < period.Start-d.Retention || ts >= period.End+d.Retention {
			continue
		}
		r.Push(ts, rep)
	}
	return r, nil
}
