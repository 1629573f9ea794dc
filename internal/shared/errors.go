package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Pipeline errors
	ErrNotFound        = fmt.Errorf("not found")
	ErrEmptyInput      = fmt.Errorf("nothing to process")
	ErrUnreadableFile  = fmt.Errorf("file could not be read")
	ErrExternalTool    = fmt.Errorf("external tool failed")
	ErrInvalidStrategy = fmt.Errorf("invalid deduplication strategy")
	ErrAborted         = fmt.Errorf("aborted by user")

	// Filesystem errors
	ErrDestinationExists = fmt.Errorf("destination file already exists")
	ErrNotADirectory     = fmt.Errorf("not a directory")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
