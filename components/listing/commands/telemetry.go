package commands

import (
	"context"

	"github.com/nearbytask/admin-dashboard/components/listing"
)

// Telemetry is the event sink shared with the listing screens.
type Telemetry = listing.Telemetry

var discardTelemetry = listing.TelemetryFunc(func(context.Context, string, map[string]any) {})

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return discardTelemetry
	}
	return t
}
