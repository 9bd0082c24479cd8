// Package provider supplies indicator readings to the scoring pipeline.
// Providers are fallible by design: a failed provider contributes
// nothing for the cycle and the aggregator treats the missing readings
// as data gaps.
package provider

import (
	"context"

	"github.com/macrointel/macrointel/internal/regime"
)

// Provider fetches a batch of readings. Implementations wrap one
// upstream data source (market data API, file drop, fixture).
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Fetch returns the readings this provider can currently supply.
	// An indicator the source cannot produce is simply absent from the
	// set; Fetch errors mean the whole source is unavailable.
	Fetch(ctx context.Context) (regime.ReadingSet, error)
}

// ErrorReporter receives provider failure notices. The metrics registry
// satisfies this.
type ErrorReporter interface {
	RecordProviderError(provider, errorType string)
}
