// Package balloon defines the port the runner uses to pin memory away
// from the reference workload while Running or while the hashd
// benchmark calibrates (GLOSSARY: "Balloon").
package balloon

// Balloon is the port a reconciler calls to (re)size or tear down the
// memory-pinning sub-process. Resize is idempotent: resizing to the
// currently-pinned size is a no-op for the implementation to decide.
type Balloon interface {
	// Resize pins bytes of memory, starting the sub-process on first use.
	// A bytes of zero is equivalent to Stop.
	Resize(bytes int64) error
	// Stop releases any pinned memory and stops the sub-process.
	Stop() error
}
