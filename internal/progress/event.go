// Package progress defines the event stream emitted by the extraction
// subsystem while a product record is being built.
package progress

import (
	"errors"
	"time"
)

// Stage denotes the milestone represented by an Event.
type Stage string

// Supported progress stages.
const (
	StageFetchStart Stage = "FETCH_START"
	StageFetchDone  Stage = "FETCH_DONE"
	StageDegraded   Stage = "DEGRADED"
)

// Fields reported by extraction events.
const (
	FieldImages = "images"
	FieldPrice  = "price"
)

// Event captures one extraction milestone.
type Event struct {
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// Field names the product field being extracted.
	Field string
	// Marketplace labels the dispatch target.
	Marketplace string
	// URL is the product page URL.
	URL string
	// Dur captures fetch latency for FETCH_DONE events.
	Dur time.Duration
	// Note carries low-volume debug context (e.g. degrade reason).
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageFetchStart, StageFetchDone, StageDegraded:
	default:
		return errors.New("unknown stage")
	}
	if e.Field == "" {
		return errors.New("field is required")
	}
	return nil
}
