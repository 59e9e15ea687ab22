package orchestrator

import "errors"

var (
	ErrValidation = errors.New("validation failed")
	ErrExtraction = errors.New("document extraction failed")
	ErrGeneration = errors.New("generation failed")
)
