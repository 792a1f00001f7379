package core

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"
)

// activeRuns tracks which collection directories have a run in flight.
var (
	activeRuns   = make(map[string]bool)
	activeRunsMu sync.Mutex
)

// Orchestrator executes a sequence of pipeline stages.
type Orchestrator struct {
	stages []Stage
	state  *State
	logger *slog.Logger
}

// NewOrchestrator creates a new Orchestrator with the given stages.
func NewOrchestrator(state *State, stages []Stage, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		stages: stages,
		state:  state,
		logger: logger,
	}
}

// Execute runs all stages in sequence.
// Returns a Result with execution details and any errors.
func (o *Orchestrator) Execute(ctx context.Context) (*Result, error) {
	result := &Result{
		Success:      false,
		StageResults: make(map[string]*StageResult),
	}

	if !o.acquireRun() {
		return result, ErrRunAlreadyActive
	}
	defer o.releaseRun()

	o.logger.InfoContext(ctx, "starting batch run",
		slog.String("collection", o.state.CollectionDir),
		slog.String("mode", string(o.state.Mode)),
		slog.Int("stage_count", len(o.stages)),
	)

	startTime := time.Now()

	for i, stage := range o.stages {
		select {
		case <-ctx.Done():
			result.Errors = append(result.Errors, ctx.Err())
			result.Duration = time.Since(startTime)
			o.cleanupStages(ctx, o.stages[:i+1])
			return result, ctx.Err()
		default:
		}

		stageResult, err := o.executeStage(ctx, i, stage)
		result.StageResults[stage.ID()] = stageResult

		if err != nil {
			result.Errors = append(result.Errors, NewStageError(stage.ID(), stage.Name(), err))
			result.Duration = time.Since(startTime)
			o.cleanupStages(ctx, o.stages[:i+1])
			return result, err
		}
	}

	result.Success = true
	result.Stats = o.state.Stats
	result.Renames = o.state.Renames
	result.Duration = time.Since(startTime)
	result.Errors = o.state.Errors

	o.logger.InfoContext(ctx, "batch run completed",
		slog.String("collection", o.state.CollectionDir),
		slog.Int("processed", result.Stats.Processed),
		slog.Int("failed", result.Stats.Failed),
		slog.Duration("duration", result.Duration),
		slog.Bool("success", result.Success),
	)

	o.cleanupStages(ctx, o.stages)

	return result, nil
}

// executeStage runs a single stage and handles logging.
func (o *Orchestrator) executeStage(ctx context.Context, index int, stage Stage) (*StageResult, error) {
	stageStart := time.Now()

	o.logger.InfoContext(ctx, "executing stage",
		slog.Int("stage_num", index+1),
		slog.Int("total_stages", len(o.stages)),
		slog.String("stage_id", stage.ID()),
		slog.String("stage_name", stage.Name()),
	)

	stageResult, err := stage.Execute(ctx, o.state)
	if stageResult == nil {
		stageResult = &StageResult{}
	}
	stageResult.Duration = time.Since(stageStart)

	if err != nil {
		o.logger.ErrorContext(ctx, "stage failed",
			slog.String("stage_id", stage.ID()),
			slog.String("stage_name", stage.Name()),
			slog.String("error", err.Error()),
			slog.Duration("duration", stageResult.Duration),
		)
		return stageResult, err
	}

	o.logger.InfoContext(ctx, "stage completed",
		slog.String("stage_id", stage.ID()),
		slog.String("stage_name", stage.Name()),
		slog.Duration("duration", stageResult.Duration),
		slog.Int("records_processed", stageResult.RecordsProcessed),
		slog.Int("records_modified", stageResult.RecordsModified),
	)

	return stageResult, nil
}

// cleanupStages calls Cleanup on all given stages.
func (o *Orchestrator) cleanupStages(ctx context.Context, stages []Stage) {
	for _, stage := range stages {
		if err := stage.Cleanup(ctx); err != nil {
			o.logger.Warn("stage cleanup failed",
				slog.String("stage_id", stage.ID()),
				slog.String("error", err.Error()),
			)
		}
	}
}

// acquireRun tries to acquire the run lock for this collection directory.
func (o *Orchestrator) acquireRun() bool {
	activeRunsMu.Lock()
	defer activeRunsMu.Unlock()

	key := filepath.Clean(o.state.CollectionDir)
	if activeRuns[key] {
		return false
	}
	activeRuns[key] = true
	return true
}

// releaseRun releases the run lock for this collection directory.
func (o *Orchestrator) releaseRun() {
	activeRunsMu.Lock()
	defer activeRunsMu.Unlock()
	delete(activeRuns, filepath.Clean(o.state.CollectionDir))
}

// State returns the current pipeline state (for testing).
func (o *Orchestrator) State() *State {
	return o.state
}

// Stages returns the configured stages (for testing).
func (o *Orchestrator) Stages() []Stage {
	return o.stages
}
