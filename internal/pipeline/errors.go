package pipeline

import "fmt"

// Stage names the step of a run that failed.
type Stage string

const (
	StageOpen        Stage = "open"
	StageMask        Stage = "mask"
	StageSelectBlank Stage = "select-blank"
	StageCarve       Stage = "carve"
	StageRegularize  Stage = "regularize"
	StageMargin      Stage = "margin"
	StageClip        Stage = "clip"
	StageWrite       Stage = "write"
	StageArtifact    Stage = "artifact"
)

// StageError tags a failure with the stage that produced it. The underlying
// error stays reachable through errors.Is and errors.As.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func fail(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
