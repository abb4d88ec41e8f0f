//go:build linux

// Package cgroup reads cgroup v2 accounting files directly off sysfs.
//
// spec.md §6 pins the daemon's input to "standard v2 format" only, so
// this package carries no v1/hybrid detection: it is a single reader
// shaped around the handful of files SampleSlice/SampleSystem actually
// need, not a general-purpose cgroup client.
package cgroup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kodflow/resctld/internal/application/sampler"
	domlog "github.com/kodflow/resctld/internal/domain/logging"
	"github.com/kodflow/resctld/internal/domain/usage"
	"github.com/kodflow/resctld/internal/infrastructure/procfs"
)

const microsecondsPerSecond float64 = 1_000_000

const (
	// baseDecimal is the base for decimal number parsing.
	baseDecimal int = 10
	// bitSize64 is the bit size for uint64 parsing.
	bitSize64 int = 64
	// expectedStatFields is the number of fields per line in stat files.
	expectedStatFields int = 2
)

// DefaultCgroupPath is the standard cgroup v2 mount point.
const DefaultCgroupPath string = "/sys/fs/cgroup"

// CPUStat is cpu.stat's usage_usec/system_usec pair, the only two
// fields SampleSlice's CPUBusy/CPUSys need.
type CPUStat struct {
	UsageUsec  uint64
	SystemUsec uint64
}

// Sampler implements application/sampler.Sampler on top of the cgroup v2
// file layout plus /proc, grounded on original_source/rd-agent's
// read_cgroup_usage/read_system_usage/read_swap_free (spec.md §4.3).
type Sampler struct {
	// Root is the cgroup v2 mount point (typically /sys/fs/cgroup),
	// the boundary read_swap_free's ancestor walk stops before.
	Root string
	// DevMajor and DevMinor identify the block device io.stat and
	// /proc/diskstats entries are filtered to.
	DevMajor, DevMinor uint32
	// Logger receives a debug event for every missing or malformed
	// kernel file, per spec.md §4.3's "fall back to zeroed values
	// with a debug-level log".
	Logger domlog.Logger
}

// NewSampler builds a Sampler rooted at the default cgroup v2 mount.
func NewSampler(devMajor, devMinor uint32, logger domlog.Logger) *Sampler {
	return &Sampler{Root: DefaultCgroupPath, DevMajor: devMajor, DevMinor: devMinor, Logger: logger}
}

func (s *Sampler) debugf(path string, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.Debug("sampler", "sampler_fallback", fmt.Sprintf("read %s", path), map[string]any{"error": err.Error()})
}

// SampleSlice implements application/sampler.Sampler.
func (s *Sampler) SampleSlice(cgroupPath string) (usage.Usage, error) {
	var u usage.Usage
	u.MemStat = make(map[string]uint64)
	u.IOStat = make(map[string]uint64)

	if cpuStat, err := s.readCPUStat(filepath.Join(cgroupPath, "cpu.stat")); err == nil {
		u.CPUBusy = float64(cpuStat.UsageUsec) / microsecondsPerSecond
		u.CPUSys = float64(cpuStat.SystemUsec) / microsecondsPerSecond
	} else {
		s.debugf("cpu.stat", err)
	}

	if v, err := readUint64File(filepath.Join(cgroupPath, "memory.current")); err == nil {
		u.MemBytes = v
	} else {
		s.debugf("memory.current", err)
	}

	if v, err := readUint64File(filepath.Join(cgroupPath, "memory.swap.current")); err == nil {
		u.SwapBytes = v
	} else {
		s.debugf("memory.swap.current", err)
	}

	if v, err := s.readSwapFree(cgroupPath); err == nil {
		u.SwapFree = v
	} else {
		s.debugf("memory.swap.max (ancestor walk)", err)
	}

	if stat, err := s.readStatFile(filepath.Join(cgroupPath, "memory.stat")); err == nil {
		u.MemStat = stat
	} else {
		s.debugf("memory.stat", err)
	}

	if io, err := s.readIOStat(filepath.Join(cgroupPath, "io.stat")); err == nil {
		u.IOReadBytes = io.readBytes
		u.IOWriteBytes = io.writeBytes
		u.IOCostUsage = io.costUsage
		u.IOStat = io.rest
	} else {
		s.debugf("io.stat", err)
	}

	if p, err := readPressureFile(filepath.Join(cgroupPath, "cpu.pressure")); err == nil {
		u.CPUPressure = p
	} else {
		s.debugf("cpu.pressure", err)
	}
	if p, err := readPressureFile(filepath.Join(cgroupPath, "memory.pressure")); err == nil {
		u.MemPressure = p
	} else {
		s.debugf("memory.pressure", err)
	}
	if p, err := readPressureFile(filepath.Join(cgroupPath, "io.pressure")); err == nil {
		u.IOPressure = p
	} else {
		s.debugf("io.pressure", err)
	}

	return u, nil
}

// readCPUStat parses cpu.stat's usage_usec/system_usec lines.
func (s *Sampler) readCPUStat(path string) (CPUStat, error) {
	f, err := os.Open(path)
	if err != nil {
		return CPUStat{}, err
	}
	defer func() { _ = f.Close() }()

	var stat CPUStat
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != expectedStatFields {
			continue
		}
		v, err := strconv.ParseUint(fields[1], baseDecimal, bitSize64)
		if err != nil {
			continue
		}
		switch fields[0] {
		case "usage_usec":
			stat.UsageUsec = v
		case "system_usec":
			stat.SystemUsec = v
		}
	}
	return stat, scanner.Err()
}

// readStatFile parses a flat "key value" file (memory.stat) into a map.
func (s *Sampler) readStatFile(path string) (map[string]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	out := make(map[string]uint64)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != expectedStatFields {
			continue
		}
		v, err := strconv.ParseUint(fields[1], baseDecimal, bitSize64)
		if err != nil {
			continue
		}
		out[fields[0]] = v
	}
	return out, scanner.Err()
}

// readSwapFree walks cgroupPath's ancestor chain up to (excluding) s.Root,
// taking the min of (memory.swap.max - memory.swap.current) at each level,
// starting from the system-wide swap_free as the floor (spec.md §4.3;
// open question on root-exclusion resolved per the original's literal
// behavior, recorded in DESIGN.md).
func (s *Sampler) readSwapFree(cgroupPath string) (uint64, error) {
	mi, err := procfs.ReadMeminfo()
	if err != nil {
		return 0, err
	}
	free := mi.SwapFree

	root := filepath.Clean(s.Root)
	path := filepath.Clean(cgroupPath)
	for path != root && len(path) > len(root) {
		maxRaw, err := os.ReadFile(filepath.Join(path, "memory.swap.max"))
		if err != nil {
			break
		}
		maxStr := strings.TrimSpace(string(maxRaw))
		var maxVal uint64 = ^uint64(0)
		if maxStr != "max" {
			if v, err := strconv.ParseUint(maxStr, baseDecimal, bitSize64); err == nil {
				maxVal = v
			}
		}

		cur, err := readUint64File(filepath.Join(path, "memory.swap.current"))
		if err != nil {
			cur = 0
		}

		var avail uint64
		if maxVal > cur {
			avail = maxVal - cur
		}
		if avail < free {
			free = avail
		}

		path = filepath.Dir(path)
	}

	return free, nil
}

// ioStatRow is io.stat's fields for one device, split into the named
// counters the domain models explicitly and the remainder.
type ioStatRow struct {
	readBytes, writeBytes, costUsage uint64
	rest                             map[string]uint64
}

// readIOStat parses io.stat, keeping only the row matching s.DevMajor:DevMinor
// (spec.md §4.3: "io.stat filtered to the target device").
func (s *Sampler) readIOStat(path string) (ioStatRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return ioStatRow{}, err
	}
	defer func() { _ = f.Close() }()

	wantDev := fmt.Sprintf("%d:%d", s.DevMajor, s.DevMinor)
	row := ioStatRow{rest: make(map[string]uint64)}

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 1 || fields[0] != wantDev {
			continue
		}
		for _, kv := range fields[1:] {
			key, val, ok := strings.Cut(kv, "=")
			if !ok {
				continue
			}
			v, err := strconv.ParseUint(val, baseDecimal, bitSize64)
			if err != nil {
				continue
			}
			switch key {
			case "rbytes":
				row.readBytes = v
			case "wbytes":
				row.writeBytes = v
			case "cost.usage":
				row.costUsage = v
			default:
				row.rest[key] = v
			}
		}
		break
	}
	return row, scanner.Err()
}

// readPressureFile parses a PSI file's "some"/"full" lines, taking each
// line's total= field (microseconds) and normalising to seconds
// (spec.md §6 "Cgroup inputs").
func readPressureFile(path string) (usage.Pressure, error) {
	f, err := os.Open(path)
	if err != nil {
		return usage.Pressure{}, err
	}
	defer func() { _ = f.Close() }()

	var p usage.Pressure
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		which := fields[0]
		var total uint64
		for _, kv := range fields[1:] {
			key, val, ok := strings.Cut(kv, "=")
			if !ok || key != "total" {
				continue
			}
			if v, err := strconv.ParseUint(val, baseDecimal, bitSize64); err == nil {
				total = v
			}
		}
		switch which {
		case "some":
			p.Some = float64(total) / microsecondsPerSecond
		case "full":
			p.Full = float64(total) / microsecondsPerSecond
		}
	}
	return p, scanner.Err()
}

func readUint64File(path string) (uint64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(data)), baseDecimal, bitSize64)
}

// SampleSystem implements application/sampler.Sampler, reading the
// host-wide counters from /proc instead of a cgroup (spec.md §4.3:
// "For the system-wide variant, read /proc/stat, /proc/meminfo, and
// /proc/diskstats instead").
func (s *Sampler) SampleSystem() (sampler.SystemUsage, error) {
	var out sampler.SystemUsage

	if v, err := procfs.CPUTotal(); err == nil {
		out.CPUTotal = v
	} else {
		s.debugf("/proc/stat", err)
	}

	if v, err := procfs.LoadAvg1(); err == nil {
		out.LoadAvg1 = v
	} else {
		s.debugf("/proc/loadavg", err)
	}

	if mi, err := procfs.ReadMeminfo(); err == nil {
		out.MemTotal = mi.MemTotal
		out.MemAvail = mi.MemAvail
		out.SwapTotal = mi.SwapTotal
		if mi.SwapTotal > mi.SwapFree {
			out.SwapUsed = mi.SwapTotal - mi.SwapFree
		}
	} else {
		s.debugf("/proc/meminfo", err)
	}

	if ds, err := procfs.ReadDiskStats(s.DevMajor, s.DevMinor); err == nil {
		out.DiskReadBytes = ds.ReadBytes
		out.DiskWriteBytes = ds.WriteBytes
	} else {
		s.debugf("/proc/diskstats", err)
	}

	return out, nil
}

// SampleVMStat implements application/sampler.Sampler.
func (s *Sampler) SampleVMStat() (map[string]uint64, error) {
	vm, err := procfs.ReadVMStat()
	if err != nil {
		s.debugf("/proc/vmstat", err)
		return map[string]uint64{}, nil
	}
	return vm, nil
}
