package tracker

// ExceptionTracker records page errors as reported by the driver. No
// redaction is applied here — stack traces are developer-facing by
// nature and redacting them would destroy their usefulness (spec §4.C).
type ExceptionTracker struct {
	*Tracker[ExceptionEvent]
}

func NewExceptionTracker(capacity int) *ExceptionTracker {
	return &ExceptionTracker{Tracker: newTracker[ExceptionEvent](capacity)}
}

func (e *ExceptionTracker) Record(name, message, stack string) Event[ExceptionEvent] {
	return e.emit("exception", ExceptionEvent{Name: name, Message: message, Stack: stack})
}
