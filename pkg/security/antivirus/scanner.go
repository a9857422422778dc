// Package antivirus scans uploaded files before they reach storage.
package antivirus

import (
	"context"
	"errors"
	"io"
)

// ErrNoScanner is reported when a chain has no reachable scanner.
var ErrNoScanner = errors.New("antivirus: no scanner available")

// ScanResult is the verdict for one file. A scan that could not complete
// is reported as Infected with Error set, so callers fail closed.
type ScanResult struct {
	Infected    bool
	ThreatName  string
	ScannerName string
	Error       error
}

// Scanner checks file content for malware.
type Scanner interface {
	Scan(ctx context.Context, filename string, data io.Reader) ScanResult
	Name() string
	Available(ctx context.Context) bool
}

// NoOpScanner reports every file as clean. It is used when no scanning
// daemon is configured.
type NoOpScanner struct{}

var _ Scanner = NoOpScanner{}

func NewNoOpScanner() NoOpScanner { return NoOpScanner{} }

func (NoOpScanner) Scan(context.Context, string, io.Reader) ScanResult {
	return ScanResult{ScannerName: "noop"}
}

func (NoOpScanner) Name() string { return "noop" }

func (NoOpScanner) Available(context.Context) bool { return true }

// ChainScanner delegates to the first available scanner. The reader can
// only be consumed once, so later scanners are fallbacks, not second
// opinions.
type ChainScanner struct {
	scanners []Scanner
}

var _ Scanner = (*ChainScanner)(nil)

func NewChainScanner(scanners ...Scanner) *ChainScanner {
	return &ChainScanner{scanners: scanners}
}

func (c *ChainScanner) Scan(ctx context.Context, filename string, data io.Reader) ScanResult {
	for _, s := range c.scanners {
		if s.Available(ctx) {
			return s.Scan(ctx, filename, data)
		}
	}
	return ScanResult{Infected: true, ScannerName: c.Name(), Error: ErrNoScanner}
}

func (c *ChainScanner) Name() string { return "chain" }

func (c *ChainScanner) Available(ctx context.Context) bool {
	for _, s := range c.scanners {
		if s.Available(ctx) {
			return true
		}
	}
	return false
}
