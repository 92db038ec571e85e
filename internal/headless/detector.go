// Package headless renders JavaScript-heavy product pages with a real
// browser when proxied static markup is not enough.
package headless

import (
	"bytes"
	"strings"
)

// Detector decides whether a fetched body warrants a headless re-fetch.
type Detector struct {
	BodyLengthThreshold int
}

// NewDetector creates a Detector; threshold 0 picks the default.
func NewDetector(threshold int) *Detector {
	if threshold == 0 {
		threshold = 2048
	}
	return &Detector{BodyLengthThreshold: threshold}
}

var spaMarkers = [][]byte{
	[]byte("__next"),
	[]byte(`id="root"`),
	[]byte(`id="app"`),
	[]byte("data-reactroot"),
}

// ShouldPromote reports whether body looks like an SPA shell that the proxy
// could not render: empty, or short and mostly script, or carrying a known
// client-side-render marker.
func (d *Detector) ShouldPromote(body []byte) bool {
	if len(body) == 0 {
		return true
	}
	if len(body) < d.BodyLengthThreshold && scriptDensityHigh(body) {
		return true
	}
	for _, marker := range spaMarkers {
		if bytes.Contains(body, marker) {
			return true
		}
	}
	return false
}

// scriptDensityHigh reports whether script tags cover more than half of the
// document.
func scriptDensityHigh(body []byte) bool {
	lower := strings.ToLower(string(body))
	total := len(lower)
	if total == 0 {
		return false
	}

	const (
		openTag  = "<script"
		closeTag = "</script>"
	)
	coverage := 0
	pos := 0
	for {
		start := strings.Index(lower[pos:], openTag)
		if start == -1 {
			break
		}
		start += pos
		end := strings.Index(lower[start:], closeTag)
		if end == -1 {
			coverage += total - start
			break
		}
		end = start + end + len(closeTag)
		coverage += end - start
		pos = end
	}
	return coverage*2 > total
}
