// Package benchknobs provides the domain types for bench.json, the output
// of benchmarks and an input to reconciliation (spec.md §3, "Bench knobs").
package benchknobs

// QoS holds the iocost controller's quality-of-service knobs (spec.md
// §3 "QoS override", base form with no off/skip bits).
type QoS struct {
	Enable int     `json:"enable"`
	RPct   float64 `json:"rpct"`
	RLat   uint64  `json:"rlat"`
	WPct   float64 `json:"wpct"`
	WLat   uint64  `json:"wlat"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Equal reports whether two QoS values are bit-equal in every recognized field.
func (q QoS) Equal(o QoS) bool {
	return q == o
}

// Model holds the iocost linear cost model parameters produced by the
// iocost-bench sub-process.
type Model struct {
	CtrlName    string  `json:"ctrl"`
	RBps        uint64  `json:"rbps"`
	RSeqIOps    uint64  `json:"rseqiops"`
	RRandIOps   uint64  `json:"rrandiops"`
	WBps        uint64  `json:"wbps"`
	WSeqIOps    uint64  `json:"wseqiops"`
	WRandIOps   uint64  `json:"wrandiops"`
}

// IOCost wraps the model and QoS the iocost benchmark produced or the
// sweep driver last composed.
type IOCost struct {
	Model Model `json:"model"`
	QoS   QoS   `json:"qos"`
}

// Hashd holds the reference-app calibration produced by the hashd bench.
type Hashd struct {
	MemSize    int64   `json:"mem_size"`
	MemProfile uint64  `json:"mem_profile"`
}

// BenchKnobs is the full content of bench.json.
type BenchKnobs struct {
	HashdSeq  uint64 `json:"hashd_seq"`
	IocostSeq uint64 `json:"iocost_seq"`
	IOCost    IOCost `json:"iocost"`
	Hashd     Hashd  `json:"hashd"`
}
