package capture

import "errors"

// Kind classifies why a capture attempt failed.
type Kind int

const (
	// KindCapture means the camera delivered an error instead of a still.
	KindCapture Kind = iota
	KindUnauthorized
	// KindInput covers camera input and output wiring failures.
	KindInput
	// KindProcessing covers decode failures and unmet byte budgets.
	KindProcessing
	KindBusy
)

var (
	ErrUnauthorized   = errors.New("camera access denied")
	ErrNoInput        = errors.New("camera input unavailable")
	ErrNotRunning     = errors.New("camera session not running")
	ErrBusy           = errors.New("capture already in progress")
	ErrBudgetExceeded = errors.New("encoded image exceeds byte budget at floor quality")
)

// Message returns the user-facing description of the kind.
func (k Kind) Message() string {
	switch k {
	case KindUnauthorized:
		return "Camera access is not authorized"
	case KindInput:
		return "Cannot add camera input"
	case KindProcessing:
		return "Failed to process photo"
	case KindBusy:
		return "A capture is already in progress"
	default:
		return "Camera capture failed"
	}
}

func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindInput:
		return "input"
	case KindProcessing:
		return "processing"
	case KindBusy:
		return "busy"
	default:
		return "capture"
	}
}

// Error is the typed failure returned by cameras and the pipeline.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.Message()
	}
	return e.Kind.Message() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// asError keeps an existing *Error and wraps anything else as fallback.
func asError(err error, fallback Kind) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return newError(fallback, err)
}
