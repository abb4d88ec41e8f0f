// Package sysfs adapts application/kernelctl.Kernel onto the host-wide
// sysfs/procfs knobs spec.md §4.7/§4.8 describe: swap aggressiveness,
// zswap, the scratch device's IO scheduler, and its iocost model/QoS,
// grounded on the teacher's resources/cgroup v1/v2 readers' "read a
// small sysfs-ish file, trim, parse" idiom
// (internal/infrastructure/resources/cgroup/v2.go).
package sysfs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/kodflow/resctld/internal/domain/benchknobs"
)

const (
	swappinessPath   = "/proc/sys/vm/swappiness"
	zswapEnabledPath = "/sys/module/zswap/parameters/enabled"

	filePerm = 0o644
)

// Kernel implements application/kernelctl.Kernel over the real sysfs
// and procfs trees, rooted at Root (the empty string means "/", a test
// can point Root at a fixture tree instead).
type Kernel struct {
	Root string
}

// New returns a Kernel rooted at the real filesystem.
func New() *Kernel {
	return &Kernel{}
}

func (k *Kernel) path(p string) string {
	if k.Root == "" {
		return p
	}
	return k.Root + p
}

// Swappiness implements kernelctl.Kernel.
func (k *Kernel) Swappiness() (uint32, error) {
	v, err := readUint(k.path(swappinessPath))
	if err != nil {
		return 0, fmt.Errorf("read swappiness: %w", err)
	}
	return uint32(v), nil
}

// SetSwappiness implements kernelctl.Kernel.
func (k *Kernel) SetSwappiness(target uint32) error {
	current, err := k.Swappiness()
	if err == nil && current == target {
		return nil
	}
	return writeFile(k.path(swappinessPath), strconv.FormatUint(uint64(target), 10))
}

// ZswapEnabled implements kernelctl.Kernel.
func (k *Kernel) ZswapEnabled() (bool, error) {
	data, err := os.ReadFile(k.path(zswapEnabledPath)) // #nosec G304 -- fixed kernel parameter path
	if err != nil {
		return false, fmt.Errorf("read zswap enabled: %w", err)
	}
	return strings.TrimSpace(string(data)) == "Y", nil
}

// SetZswapEnabled implements kernelctl.Kernel.
func (k *Kernel) SetZswapEnabled(enabled bool) error {
	current, err := k.ZswapEnabled()
	if err == nil && current == enabled {
		return nil
	}
	val := "N"
	if enabled {
		val = "Y"
	}
	return writeFile(k.path(zswapEnabledPath), val)
}

// SetIOScheduler implements kernelctl.Kernel.
func (k *Kernel) SetIOScheduler(dev string, name string) error {
	path := k.path(fmt.Sprintf("/sys/block/%s/queue/scheduler", dev))
	current, err := os.ReadFile(path) // #nosec G304 -- dev comes from trusted bootstrap config
	if err == nil && currentScheduler(string(current)) == name {
		return nil
	}
	return writeFile(path, name)
}

// currentScheduler extracts the active entry from a scheduler file's
// "[mq-deadline] bfq none" style content.
func currentScheduler(content string) string {
	for _, field := range strings.Fields(content) {
		if strings.HasPrefix(field, "[") && strings.HasSuffix(field, "]") {
			return strings.Trim(field, "[]")
		}
	}
	return ""
}

// ApplyIOCost implements kernelctl.Kernel.
func (k *Kernel) ApplyIOCost(dev string, model benchknobs.Model, qos benchknobs.QoS) error {
	major, minor, err := devMajorMinor(dev)
	if err != nil {
		return err
	}

	modelPath := k.path("/sys/fs/cgroup/io.cost.model")
	modelLine := fmt.Sprintf(
		"%d:%d ctrl=user model=linear rbps=%d rseqiops=%d rrandiops=%d wbps=%d wseqiops=%d wrandiops=%d",
		major, minor, model.RBps, model.RSeqIOps, model.RRandIOps, model.WBps, model.WSeqIOps, model.WRandIOps,
	)
	if err := writeFile(modelPath, modelLine); err != nil {
		return fmt.Errorf("apply io.cost.model: %w", err)
	}

	qosPath := k.path("/sys/fs/cgroup/io.cost.qos")
	qosLine := fmt.Sprintf(
		"%d:%d enable=%d ctrl=user rpct=%.2f rlat=%d wpct=%.2f wlat=%d min=%.2f max=%.2f",
		major, minor, qos.Enable, qos.RPct, qos.RLat, qos.WPct, qos.WLat, qos.Min, qos.Max,
	)
	if err := writeFile(qosPath, qosLine); err != nil {
		return fmt.Errorf("apply io.cost.qos: %w", err)
	}
	return nil
}

// ReadIOCostQoS implements kernelctl.Kernel.
func (k *Kernel) ReadIOCostQoS(dev string) (benchknobs.QoS, error) {
	major, minor, err := devMajorMinor(dev)
	if err != nil {
		return benchknobs.QoS{}, err
	}

	data, err := os.ReadFile(k.path("/sys/fs/cgroup/io.cost.qos")) // #nosec G304 -- fixed cgroupfs path
	if err != nil {
		return benchknobs.QoS{}, fmt.Errorf("read io.cost.qos: %w", err)
	}

	prefix := fmt.Sprintf("%d:%d ", major, minor)
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, prefix) {
			continue
		}
		return parseQoSLine(line)
	}
	return benchknobs.QoS{}, fmt.Errorf("io.cost.qos: no entry for device %s", dev)
}

func parseQoSLine(line string) (benchknobs.QoS, error) {
	var qos benchknobs.QoS
	for _, field := range strings.Fields(line) {
		k, v, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}
		switch k {
		case "enable":
			qos.Enable, _ = strconv.Atoi(v)
		case "rpct":
			qos.RPct, _ = strconv.ParseFloat(v, 64)
		case "rlat":
			qos.RLat, _ = strconv.ParseUint(v, 10, 64)
		case "wpct":
			qos.WPct, _ = strconv.ParseFloat(v, 64)
		case "wlat":
			qos.WLat, _ = strconv.ParseUint(v, 10, 64)
		case "min":
			qos.Min, _ = strconv.ParseFloat(v, 64)
		case "max":
			qos.Max, _ = strconv.ParseFloat(v, 64)
		}
	}
	return qos, nil
}

// DevMajorMinor resolves a block device name ("sda") to its major:minor
// pair, exported for bootstrap wiring that needs the same resolution
// sampler.NewSampler requires (spec.md §4.3 "given a block-device
// major:minor and a cgroup path").
func DevMajorMinor(dev string) (uint32, uint32, error) {
	return devMajorMinor(dev)
}

// devMajorMinor resolves a block device name ("sda") to its major:minor
// pair via /sys/class/block/{dev}/dev, which the kernel formats as
// "major:minor\n".
func devMajorMinor(dev string) (uint32, uint32, error) {
	data, err := os.ReadFile(fmt.Sprintf("/sys/class/block/%s/dev", dev)) // #nosec G304 -- dev is trusted bootstrap config
	if err != nil {
		return 0, 0, fmt.Errorf("resolve device %s: %w", dev, err)
	}
	majorStr, minorStr, ok := strings.Cut(strings.TrimSpace(string(data)), ":")
	if !ok {
		return 0, 0, fmt.Errorf("resolve device %s: malformed dev entry %q", dev, data)
	}
	major, err := strconv.ParseUint(majorStr, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve device %s: %w", dev, err)
	}
	minor, err := strconv.ParseUint(minorStr, 10, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("resolve device %s: %w", dev, err)
	}
	return uint32(major), uint32(minor), nil
}

func readUint(path string) (uint64, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- fixed kernel parameter path
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), filePerm) // #nosec G306 -- kernel knobs require world-readable perms to match existing sysfs mode
}
