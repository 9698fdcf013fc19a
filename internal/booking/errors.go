package booking

import "fmt"

// Tool-result error codes understood by the model.
const (
	CodeInvalidTitle    = "INVALID_TITLE"
	CodeConflict        = "CONFLICT"
	CodeInvalidTime     = "INVALID_TIME"
	CodeInvalidDuration = "INVALID_DURATION"
)

// InvalidTitleError rejects a reservation title. The message tells the model
// how to correct and resubmit.
type InvalidTitleError struct {
	Title   string
	Policy  string
	Message string
}

func (e *InvalidTitleError) Error() string {
	return e.Message
}

// Code returns the tool-result error code.
func (e *InvalidTitleError) Code() string {
	return CodeInvalidTitle
}

// ConflictError reports that a doctor is already booked. It carries only the
// doctor, never the blocking patient.
type ConflictError struct {
	Doctor string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s is busy at that time. Please suggest another slot.", e.Doctor)
}

// Code returns the tool-result error code.
func (e *ConflictError) Code() string {
	return CodeConflict
}

// InvalidTimeError rejects unusable start/end arguments.
type InvalidTimeError struct {
	code    string
	Message string
}

func (e *InvalidTimeError) Error() string {
	return e.Message
}

// Code returns the tool-result error code.
func (e *InvalidTimeError) Code() string {
	return e.code
}

func invalidTime(format string, args ...any) error {
	return &InvalidTimeError{code: CodeInvalidTime, Message: fmt.Sprintf(format, args...)}
}

func invalidDuration(format string, args ...any) error {
	return &InvalidTimeError{code: CodeInvalidDuration, Message: fmt.Sprintf(format, args...)}
}
