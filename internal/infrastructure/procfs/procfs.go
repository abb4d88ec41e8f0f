//go:build linux

// Package procfs reads the system-wide counters the usage sampler's
// SampleSystem and SampleVMStat variants need from /proc (spec.md §4.3:
// "For the system-wide variant, read /proc/stat, /proc/meminfo, and
// /proc/diskstats instead"), grounded on original_source/rd-agent's
// read_system_usage and the teacher's resources/cgroup file-parsing idiom
// (bufio.Scanner line splitting, strconv.ParseUint, zero-on-missing).
package procfs

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	baseDecimal = 10
	bitSize64   = 64

	// clockTicksPerSecond is the kernel's USER_HZ, sysconf(_SC_CLK_TCK).
	// Every mainstream Linux distribution on every architecture this
	// module targets reports 100; there is no portable stdlib accessor
	// for it short of cgo.
	clockTicksPerSecond = 100.0

	statPath     = "/proc/stat"
	loadavgPath  = "/proc/loadavg"
	meminfoPath  = "/proc/meminfo"
	diskstatPath = "/proc/diskstats"
	vmstatPath   = "/proc/vmstat"
)

// CPUTotal reads /proc/stat's aggregate "cpu " line and returns the
// cumulative time in seconds across all ticks (user+nice+system+idle+
// iowait+irq+softirq+steal+guest+guest_nice), mirroring
// original_source/rd-agent's cpu_total.
func CPUTotal() (float64, error) {
	f, err := os.Open(statPath)
	if err != nil {
		return 0, fmt.Errorf("open /proc/stat: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] != "cpu" {
			continue
		}
		var total uint64
		for _, raw := range fields[1:] {
			v, err := strconv.ParseUint(raw, baseDecimal, bitSize64)
			if err != nil {
				continue
			}
			total += v
		}
		return float64(total) / clockTicksPerSecond, nil
	}
	return 0, scanner.Err()
}

// LoadAvg1 reads the 1-minute load average from /proc/loadavg.
func LoadAvg1() (float64, error) {
	data, err := os.ReadFile(loadavgPath)
	if err != nil {
		return 0, fmt.Errorf("read /proc/loadavg: %w", err)
	}
	fields := strings.Fields(string(data))
	if len(fields) == 0 {
		return 0, nil
	}
	v, err := strconv.ParseFloat(fields[0], bitSize64)
	if err != nil {
		return 0, fmt.Errorf("parse /proc/loadavg: %w", err)
	}
	return v, nil
}

// Meminfo is the subset of /proc/meminfo the sampler needs, in bytes.
type Meminfo struct {
	MemTotal  uint64
	MemAvail  uint64
	SwapTotal uint64
	SwapFree  uint64
}

// ReadMeminfo parses /proc/meminfo's MemTotal/MemAvailable/SwapTotal/
// SwapFree keys (values given in kB, scaled to bytes).
func ReadMeminfo() (Meminfo, error) {
	f, err := os.Open(meminfoPath)
	if err != nil {
		return Meminfo{}, fmt.Errorf("open /proc/meminfo: %w", err)
	}
	defer func() { _ = f.Close() }()

	var mi Meminfo
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := parseMeminfoLine(scanner.Text())
		if !ok {
			continue
		}
		switch key {
		case "MemTotal":
			mi.MemTotal = value
		case "MemAvailable":
			mi.MemAvail = value
		case "SwapTotal":
			mi.SwapTotal = value
		case "SwapFree":
			mi.SwapFree = value
		}
	}
	return mi, scanner.Err()
}

// parseMeminfoLine parses one "Key:     123 kB" line into bytes.
func parseMeminfoLine(line string) (key string, bytes uint64, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", 0, false
	}
	key = strings.TrimSuffix(fields[0], ":")
	v, err := strconv.ParseUint(fields[1], baseDecimal, bitSize64)
	if err != nil {
		return "", 0, false
	}
	return key, v * 1024, true
}

// DiskStats is the subset of a /proc/diskstats row the sampler needs.
type DiskStats struct {
	ReadBytes  uint64
	WriteBytes uint64
}

// ReadDiskStats scans /proc/diskstats for the row matching major:minor
// and returns its cumulative sectors-read/written converted to bytes
// (512 bytes/sector, per original_source/rd-agent's read_system_usage).
func ReadDiskStats(major, minor uint32) (DiskStats, error) {
	f, err := os.Open(diskstatPath)
	if err != nil {
		return DiskStats{}, fmt.Errorf("open /proc/diskstats: %w", err)
	}
	defer func() { _ = f.Close() }()

	const sectorBytes = 512
	const (
		fieldMajor = iota
		fieldMinor
		fieldName
		fieldReadsCompleted
		fieldReadsMerged
		fieldSectorsRead
		fieldTimeReading
		fieldWritesCompleted
		fieldWritesMerged
		fieldSectorsWritten
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) <= fieldSectorsWritten {
			continue
		}
		maj, err := strconv.ParseUint(fields[fieldMajor], baseDecimal, 32)
		if err != nil {
			continue
		}
		minr, err := strconv.ParseUint(fields[fieldMinor], baseDecimal, 32)
		if err != nil {
			continue
		}
		if uint32(maj) != major || uint32(minr) != minor {
			continue
		}
		readSectors, _ := strconv.ParseUint(fields[fieldSectorsRead], baseDecimal, bitSize64)
		writeSectors, _ := strconv.ParseUint(fields[fieldSectorsWritten], baseDecimal, bitSize64)
		return DiskStats{ReadBytes: readSectors * sectorBytes, WriteBytes: writeSectors * sectorBytes}, nil
	}
	return DiskStats{}, scanner.Err()
}

// ReadVMStat reads /proc/vmstat verbatim into a key/value map (spec.md
// §4.4 step 4: "overwrite report.vmstat from /proc/vmstat").
func ReadVMStat() (map[string]uint64, error) {
	f, err := os.Open(vmstatPath)
	if err != nil {
		return nil, fmt.Errorf("open /proc/vmstat: %w", err)
	}
	defer func() { _ = f.Close() }()

	out := make(map[string]uint64)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
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
