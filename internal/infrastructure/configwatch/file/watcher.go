// Package file adapts configwatch.Watcher onto the five JSON control
// files spec.md §6 documents (cmd.json, bench.json, slice.json,
// oomd.json, side_def.json), grounded on the teacher's
// infrastructure/persistence/config/yaml.Loader (path-based Load +
// stored-path Reload) and os.CreateTemp/os.Rename atomic-write idiom
// used throughout the teacher's file-writer adapters.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kodflow/resctld/internal/application/configwatch"
	"github.com/kodflow/resctld/internal/domain/benchknobs"
	"github.com/kodflow/resctld/internal/domain/command"
	"github.com/kodflow/resctld/internal/domain/sliceknobs"
)

// filePerm is the mode new control files are created with.
const filePerm = 0o644

// stamp is the mtime+size fingerprint Poll uses to decide whether a
// file needs to be re-parsed (spec.md §4.1 "Reload policy").
type stamp struct {
	size    int64
	modTime int64
}

func statStamp(path string) (stamp, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return stamp{}, err
	}
	return stamp{size: fi.Size(), modTime: fi.ModTime().UnixNano()}, nil
}

// Paths names the five watched files plus the ack file Watcher writes.
type Paths struct {
	Cmd      string
	Ack      string
	Bench    string
	Slice    string
	OOMD     string
	SideDefs string
}

// Watcher implements application/configwatch.Watcher over Paths.
type Watcher struct {
	paths Paths

	cmdStamp      stamp
	benchStamp    stamp
	sliceStamp    stamp
	oomdStamp     stamp
	sideDefsStamp stamp

	snap configwatch.Snapshot
}

// New constructs a Watcher. Call Load once before the first Poll.
func New(paths Paths) *Watcher {
	return &Watcher{paths: paths}
}

// Load implements configwatch.Watcher.
func (w *Watcher) Load() (configwatch.Snapshot, error) {
	var snap configwatch.Snapshot
	var err error

	if snap.Cmd, w.cmdStamp, err = loadJSON[command.Command](w.paths.Cmd); err != nil {
		return configwatch.Snapshot{}, fmt.Errorf("load cmd.json: %w", err)
	}
	if snap.Bench, w.benchStamp, err = loadJSON[benchknobs.BenchKnobs](w.paths.Bench); err != nil {
		return configwatch.Snapshot{}, fmt.Errorf("load bench.json: %w", err)
	}
	if snap.Slice, w.sliceStamp, err = loadJSON[sliceknobs.SliceKnobs](w.paths.Slice); err != nil {
		return configwatch.Snapshot{}, fmt.Errorf("load slice.json: %w", err)
	}
	if snap.OOMD, w.oomdStamp, err = loadJSON[configwatch.OOMDConfig](w.paths.OOMD); err != nil {
		return configwatch.Snapshot{}, fmt.Errorf("load oomd.json: %w", err)
	}
	if snap.SideDefs, w.sideDefsStamp, err = loadJSON[map[string]configwatch.SideDef](w.paths.SideDefs); err != nil {
		return configwatch.Snapshot{}, fmt.Errorf("load side_def.json: %w", err)
	}

	w.snap = snap
	return snap, nil
}

// Poll implements configwatch.Watcher.
func (w *Watcher) Poll() (configwatch.Snapshot, configwatch.Changed, error) {
	var changed configwatch.Changed

	if reloaded, v, st, err := reloadIfChanged(w.paths.Cmd, w.cmdStamp, w.snap.Cmd); err != nil {
		return configwatch.Snapshot{}, changed, fmt.Errorf("poll cmd.json: %w", err)
	} else if reloaded {
		w.snap.Cmd, w.cmdStamp, changed.Cmd = v, st, true
	}

	if reloaded, v, st, err := reloadIfChanged(w.paths.Bench, w.benchStamp, w.snap.Bench); err != nil {
		return configwatch.Snapshot{}, changed, fmt.Errorf("poll bench.json: %w", err)
	} else if reloaded {
		w.snap.Bench, w.benchStamp, changed.Bench = v, st, true
	}

	if reloaded, v, st, err := reloadIfChanged(w.paths.Slice, w.sliceStamp, w.snap.Slice); err != nil {
		return configwatch.Snapshot{}, changed, fmt.Errorf("poll slice.json: %w", err)
	} else if reloaded {
		w.snap.Slice, w.sliceStamp, changed.Slice = v, st, true
	}

	if reloaded, v, st, err := reloadIfChanged(w.paths.OOMD, w.oomdStamp, w.snap.OOMD); err != nil {
		return configwatch.Snapshot{}, changed, fmt.Errorf("poll oomd.json: %w", err)
	} else if reloaded {
		w.snap.OOMD, w.oomdStamp, changed.OOMD = v, st, true
	}

	if reloaded, v, st, err := reloadIfChanged(w.paths.SideDefs, w.sideDefsStamp, w.snap.SideDefs); err != nil {
		return configwatch.Snapshot{}, changed, fmt.Errorf("poll side_def.json: %w", err)
	} else if reloaded {
		w.snap.SideDefs, w.sideDefsStamp, changed.SideDefs = v, st, true
	}

	return w.snap, changed, nil
}

// reloadIfChanged re-parses path only when its mtime+size stamp differs
// from prev. If the file is absent it is treated as unchanged (missing
// optional control files keep their last-known value).
//
// Go methods cannot carry their own type parameters, so this is a
// package-level function rather than a method on Watcher.
func reloadIfChanged[T any](path string, prev stamp, current T) (bool, T, stamp, error) {
	st, err := statStamp(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, current, prev, nil
		}
		return false, current, prev, err
	}
	if st == prev {
		return false, current, prev, nil
	}

	v, newStamp, err := loadJSON[T](path)
	if err != nil {
		return false, current, prev, err
	}
	return true, v, newStamp, nil
}

// loadJSON reads and unmarshals path, returning a zero value and zero
// stamp if the file does not exist yet (several control files are
// optional until the orchestrator external to this module writes them).
func loadJSON[T any](path string) (T, stamp, error) {
	var v T
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from trusted bootstrap config
	if err != nil {
		if os.IsNotExist(err) {
			return v, stamp{}, nil
		}
		return v, stamp{}, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, stamp{}, fmt.Errorf("parse %s: %w", path, err)
	}
	st, err := statStamp(path)
	if err != nil {
		return v, stamp{}, err
	}
	return v, st, nil
}

// writeAtomic writes data to path via a temp file in the same
// directory followed by os.Rename, the teacher's atomic-commit idiom.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, filePerm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// WriteAck implements configwatch.Watcher.
func (w *Watcher) WriteAck(cmdSeq uint64) error {
	data, err := json.Marshal(command.Ack{CmdSeq: cmdSeq})
	if err != nil {
		return fmt.Errorf("marshal cmd_ack.json: %w", err)
	}
	return writeAtomic(w.paths.Ack, data)
}

// WriteBench implements configwatch.Watcher.
func (w *Watcher) WriteBench(bench benchknobs.BenchKnobs) error {
	data, err := json.Marshal(bench)
	if err != nil {
		return fmt.Errorf("marshal bench.json: %w", err)
	}
	if err := writeAtomic(w.paths.Bench, data); err != nil {
		return err
	}
	st, err := statStamp(w.paths.Bench)
	if err == nil {
		w.benchStamp = st
		w.snap.Bench = bench
	}
	return nil
}

// WriteSlice implements configwatch.Watcher.
func (w *Watcher) WriteSlice(slice sliceknobs.SliceKnobs) error {
	data, err := json.Marshal(slice)
	if err != nil {
		return fmt.Errorf("marshal slice.json: %w", err)
	}
	if err := writeAtomic(w.paths.Slice, data); err != nil {
		return err
	}
	st, err := statStamp(w.paths.Slice)
	if err == nil {
		w.sliceStamp = st
		w.snap.Slice = slice
	}
	return nil
}
