package tracker

// NetworkTracker records request/response legs as separate events, with
// URLs stripped of query/hash and token-like path segments redacted
// unless ShowFullUrls is set (spec §4.C).
type NetworkTracker struct {
	*Tracker[NetworkEvent]
	showFull bool
	extra    RedactorFunc
}

func NewNetworkTracker(capacity int, showFullUrls bool) *NetworkTracker {
	return NewNetworkTrackerWithRedactor(capacity, showFullUrls, nil)
}

// NewNetworkTrackerWithRedactor additionally runs extra over the URL after
// the built-in stripping rules, when showFullUrls is false. A nil extra is a
// no-op, matching NewNetworkTracker.
func NewNetworkTrackerWithRedactor(capacity int, showFullUrls bool, extra RedactorFunc) *NetworkTracker {
	return &NetworkTracker{Tracker: newTracker[NetworkEvent](capacity), showFull: showFullUrls, extra: extra}
}

// RecordRequest appends a request-leg event.
func (n *NetworkTracker) RecordRequest(requestID, rawURL, method string) Event[NetworkEvent] {
	return n.record(requestID, rawURL, method, 0, false)
}

// RecordResponse appends a response-leg event for the same requestID.
func (n *NetworkTracker) RecordResponse(requestID, rawURL string, status int) Event[NetworkEvent] {
	return n.record(requestID, rawURL, "", status, true)
}

func (n *NetworkTracker) record(requestID, rawURL, method string, status int, isResponse bool) Event[NetworkEvent] {
	url := redactNetworkURL(rawURL, n.showFull)
	if !n.showFull && n.extra != nil {
		url = n.extra(url)
	}
	payload := NetworkEvent{
		RequestID:  requestID,
		URL:        url,
		Method:     method,
		Status:     status,
		IsResponse: isResponse,
	}
	return n.emit("network", payload)
}
