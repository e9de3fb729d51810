package sim

import (
	"context"

	"voxelfront/server/internal/telemetry"
	"voxelfront/server/logging"
	loggingsimulation "voxelfront/server/logging/simulation"
)

// TelemetryHooks returns loop hooks that record tick timing and command
// drops as metrics and structured events. A tick over budget publishes a
// warning carrying the current overrun streak.
func TelemetryHooks(pub logging.Publisher, logger telemetry.Logger) LoopHooks {
	if logger == nil {
		logger = telemetry.NopLogger()
	}
	var streak uint64
	return LoopHooks{
		AfterStep: func(result LoopStepResult) {
			telemetry.RecordTick(result.Duration)
			if result.Err != nil {
				logger.Printf("[sim] tick %d rejected commands: %v", result.Tick, result.Err)
			}
			if result.Budget <= 0 || result.Duration <= result.Budget {
				streak = 0
				return
			}
			streak++
			loggingsimulation.TickBudgetOverrun(context.Background(), pub, result.Tick, loggingsimulation.TickBudgetOverrunPayload{
				DurationMillis: result.Duration.Milliseconds(),
				BudgetMillis:   result.Budget.Milliseconds(),
				Ratio:          float64(result.Duration) / float64(result.Budget),
				Streak:         streak,
			}, nil)
		},
		OnCommandDrop: func(reason string, cmd Command) {
			loggingsimulation.CommandDropped(context.Background(), pub, cmd.OriginTick, logging.ActorRef(cmd.ActorID), loggingsimulation.CommandDroppedPayload{
				Command: string(cmd.Type),
				Reason:  reason,
			}, nil)
		},
		OnQueueWarning: func(length int) {
			logger.Printf("[sim] command queue length %d", length)
		},
	}
}
