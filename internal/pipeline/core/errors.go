package core

import (
	"errors"
	"fmt"
)

// Pipeline errors.
var (
	// ErrNoAssets indicates the scan stage found nothing to process.
	ErrNoAssets = errors.New("no assets found in collection")

	// ErrRunAlreadyActive indicates a run is already executing for this
	// collection directory.
	ErrRunAlreadyActive = errors.New("run already active for this collection")
)

// StageError wraps an error with stage context.
type StageError struct {
	StageID   string
	StageName string
	Err       error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s (%s): %v", e.StageName, e.StageID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError.
func NewStageError(stageID, stageName string, err error) *StageError {
	return &StageError{
		StageID:   stageID,
		StageName: stageName,
		Err:       err,
	}
}
