package sim

import (
	"voxelfront/server/internal/telemetry"
	"voxelfront/server/logging"
)

// Deps carries shared infrastructure dependencies required by the loop.
type Deps struct {
	Logger  telemetry.Logger
	Metrics telemetry.Metrics
	Clock   logging.Clock
}

func (d Deps) normalized() Deps {
	if d.Logger == nil {
		d.Logger = telemetry.NopLogger()
	}
	if d.Clock == nil {
		d.Clock = logging.SystemClock()
	}
	return d
}
