package tracker

// ConsoleTracker records console messages, redacting sensitive substrings
// unless ShowFullConsole is set (spec §4.C).
type ConsoleTracker struct {
	*Tracker[ConsoleEvent]
	showFull bool
	extra    RedactorFunc
}

func NewConsoleTracker(capacity int, showFullConsole bool) *ConsoleTracker {
	return NewConsoleTrackerWithRedactor(capacity, showFullConsole, nil)
}

// NewConsoleTrackerWithRedactor additionally runs extra over Text and
// ArgsPreview after the built-in rules, when showFullConsole is false. A nil
// extra is a no-op, matching NewConsoleTracker.
func NewConsoleTrackerWithRedactor(capacity int, showFullConsole bool, extra RedactorFunc) *ConsoleTracker {
	return &ConsoleTracker{Tracker: newTracker[ConsoleEvent](capacity), showFull: showFullConsole, extra: extra}
}

// Record appends a console event, applying redaction to Text and
// ArgsPreview (truncated to 240 chars first, per spec §3 "Event").
func (c *ConsoleTracker) Record(level, text, argsPreview, source string, line, column int) Event[ConsoleEvent] {
	payload := ConsoleEvent{
		Level:       level,
		Text:        c.redact(text),
		ArgsPreview: c.redact(truncateArgsPreview(argsPreview)),
		Source:      source,
		Line:        line,
		Column:      column,
	}
	return c.emit("console", payload)
}

func (c *ConsoleTracker) redact(text string) string {
	out := redactConsoleText(text, c.showFull)
	if !c.showFull && c.extra != nil {
		out = c.extra(out)
	}
	return out
}
