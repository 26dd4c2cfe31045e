package types

import (
	"errors"
	"fmt"
)

// ErrUnrecognizedEventShape indicates the inbound event matched none of the
// recognized trigger shapes and could not be decoded at all.
var ErrUnrecognizedEventShape = errors.New("unrecognized event shape")

// ValidationError is a caller-input fault: a parameter carried a value outside
// its allowed set or format. It maps to the ValueError wire type.
type ValidationError struct {
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Key == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid value for %q: %s", e.Key, e.Message)
}

// MissingParameterError indicates a required parameter was absent. It maps to
// the KeyError wire type and its message names the missing key.
type MissingParameterError struct {
	Key string
}

func (e *MissingParameterError) Error() string {
	return fmt.Sprintf("missing required parameter: %s", e.Key)
}

// UnknownOperationError indicates the canonical operation name has no handler
// in the dispatch table.
type UnknownOperationError struct {
	Operation string
}

func (e *UnknownOperationError) Error() string {
	return fmt.Sprintf("Unknown operation: %s", e.Operation)
}
