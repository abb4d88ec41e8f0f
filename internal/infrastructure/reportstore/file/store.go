// Package file adapts application/reportstore.Store onto the on-disk
// report.json/report-1min.json history spec.md §3 describes ("created
// by the reporter, committed to disk atomically (write-to-staging then
// rename; a symlink points to the latest)"), grounded on the teacher's
// observability/logging/daemon.FileWriter (os.MkdirAll + restrictive
// permissions) and the teacher's general atomic-write idiom used by the
// YAML config loader's companion writer.
package file

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/kodflow/resctld/internal/domain/report"
)

const (
	dirPermissions  os.FileMode = 0o750
	filePermissions os.FileMode = 0o640

	secondSymlink = "report.json"
	minuteSymlink = "report-1min.json"
)

// Store implements application/reportstore.Store, writing one JSON
// file per bucket into Dir/second and Dir/minute, swinging a symlink to
// the latest, and pruning files older than Retention.
type Store struct {
	// Dir is the report directory (spec.md §6 calls this report_d).
	Dir string
	// Retention bounds how long on-disk bucket files are kept, in
	// seconds, independent of the in-memory Ring's own retention.
	Retention int64

	mu          sync.Mutex
	secondRing  *report.Ring
	minuteRing  *report.Ring
}

// New constructs a Store. secondCadence/minuteCadence and their ring
// retention windows (seconds) size the in-memory Ring history; diskRetention
// bounds the on-disk files independently.
func New(dir string, secondCadence, secondRetention, minuteCadence, minuteRetention, diskRetention int64) *Store {
	return &Store{
		Dir:        dir,
		Retention:  diskRetention,
		secondRing: report.NewRing(secondCadence, secondRetention),
		minuteRing: report.NewRing(minuteCadence, minuteRetention),
	}
}

// PutSecond implements reportstore.Store.
func (s *Store) PutSecond(rep report.Report) error {
	return s.put("second", secondSymlink, s.secondRing, rep)
}

// PutMinute implements reportstore.Store.
func (s *Store) PutMinute(rep report.Report) error {
	return s.put("minute", minuteSymlink, s.minuteRing, rep)
}

// SecondRing implements reportstore.Store.
func (s *Store) SecondRing() *report.Ring {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secondRing
}

// MinuteRing implements reportstore.Store.
func (s *Store) MinuteRing() *report.Ring {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.minuteRing
}

func (s *Store) put(subdir, symlinkName string, ring *report.Ring, rep report.Report) error {
	dir := filepath.Join(s.Dir, subdir)
	if err := os.MkdirAll(dir, dirPermissions); err != nil {
		return fmt.Errorf("create %s dir: %w", subdir, err)
	}

	data, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	name := strconv.FormatInt(rep.Timestamp.Unix(), 10) + ".json"
	finalPath := filepath.Join(dir, name)
	if err := writeAtomic(finalPath, data); err != nil {
		return err
	}

	if err := swingSymlink(filepath.Join(s.Dir, symlinkName), finalPath); err != nil {
		return fmt.Errorf("swing %s symlink: %w", symlinkName, err)
	}

	s.mu.Lock()
	ring.Push(rep.Timestamp.Unix(), rep)
	s.mu.Unlock()

	if s.Retention > 0 {
		pruneOlderThan(dir, rep.Timestamp.Unix()-s.Retention)
	}
	return nil
}

// writeAtomic writes data to path via a temp file in the same directory
// followed by os.Rename.
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
	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// swingSymlink points linkPath at target, replacing any prior symlink
// atomically via a temp-symlink-then-rename.
func swingSymlink(linkPath, target string) error {
	tmpLink := linkPath + ".tmp"
	_ = os.Remove(tmpLink)
	if err := os.Symlink(target, tmpLink); err != nil {
		return fmt.Errorf("create temp symlink: %w", err)
	}
	return os.Rename(tmpLink, linkPath)
}

// pruneOlderThan removes bucket files in dir named "<unix>.json" whose
// embedded timestamp is before cutoff. Errors are ignored: a failed
// prune pass is retried on the next tick rather than failing the write
// that triggered it.
func pruneOlderThan(dir string, cutoff int64) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		ts, err := strconv.ParseInt(strings.TrimSuffix(name, ".json"), 10, 64)
		if err != nil || ts >= cutoff {
			continue
		}
		_ = os.Remove(filepath.Join(dir, name))
	}
}

// listBucketFiles returns the bucket filenames in dir, sorted lexically
// by name, which is timestamp order when every name has the same number
// of digits. Nothing in the package calls it.
func listBucketFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".json") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}
