package ingest

import (
	"errors"
	"fmt"
)

var (
	ErrDownload      = errors.New("download failed")
	ErrStorage       = errors.New("audio storage failed")
	ErrTranscription = errors.New("transcription failed")
	ErrEmbedding     = errors.New("embedding failed")
	ErrIndex         = errors.New("indexing failed")
)

// StageError tags a collaborator failure with the pipeline stage that was
// being attempted. Kind is one of the sentinels above so callers can use
// errors.Is against both the kind and the underlying cause.
type StageError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Stage, e.Kind, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}
