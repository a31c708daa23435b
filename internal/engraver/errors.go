package engraver

import (
	"errors"
	"fmt"
)

// ErrClosed is returned by Submit after Shutdown.
var ErrClosed = errors.New("engraver: scheduler is shut down")

// ErrNilSource is returned by Submit when no score source is given.
var ErrNilSource = errors.New("engraver: nil score source")

// DeliveryError reports that the result sink failed while consuming a
// task outcome. It is logged and never affects later tasks.
type DeliveryError struct {
	TaskID TaskID

	// Panic holds the recovered value when the sink panicked.
	Panic any

	Err error
}

func (e *DeliveryError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("delivery of task %d panicked: %v", e.TaskID, e.Panic)
	}
	return fmt.Sprintf("delivery of task %d failed: %v", e.TaskID, e.Err)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// IsDeliveryError returns true if err is or wraps a DeliveryError.
func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}

// TaskError is the failure handed to Sink.OnFailure. It wraps either a
// snapshot isolation error or a layout error.
type TaskError struct {
	TaskID TaskID

	// Stage is "snapshot" or "layout".
	Stage string

	Err error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d %s: %v", e.TaskID, e.Stage, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
