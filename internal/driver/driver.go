// driver.go — The opaque browser control surface consumed by the scheduler.
package driver

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/target"
)

// Page is one browser tab/page as the driver sees it. DriverTargetID is the
// driver's own identifier for the page (e.g. a CDP target id); the
// scheduler's target registry (component A) assigns its own opaque id
// independent of this one, per spec §3 Target's identity invariant.
type Page struct {
	DriverTargetID target.ID
	SessionID      target.SessionID
}

// EvaluateResult is the outcome of running a script against an element or
// the page; Value is the JSON-decodable result, nil on a void evaluation.
type EvaluateResult struct {
	Value []byte
}

// Screenshot is a captured image, format-tagged so callers don't have to
// sniff magic bytes.
type Screenshot struct {
	Format string // "png" | "jpeg"
	Data   []byte
}

// NetworkEvent, ConsoleEvent, and ExceptionEvent are the raw evidence the
// driver emits; component C (event trackers) wraps these into its own
// bounded, redacted, sequenced shape (see internal/tracker).
type NetworkEvent struct {
	RequestID   string
	URL         string
	Method      string
	Status      int
	IsResponse  bool
	Timestamp   time.Time
}

type ConsoleEvent struct {
	Level     string
	Text      string
	Source    string
	Line      int
	Column    int
	Timestamp time.Time
}

type ExceptionEvent struct {
	Name      string
	Message   string
	Stack     string
	Timestamp time.Time
}

// FrameNavigatedEvent reports a frame navigation; ParentFrameID is empty
// for the top frame, matching spec §4.B's "parent frame == null" test for
// ref invalidation.
type FrameNavigatedEvent struct {
	FrameID       string
	ParentFrameID string
	URL           string
	Timestamp     time.Time
}

// Driver is the capability surface spec §1 treats as opaque. A faithful
// implementation wraps a real CDP session; tests and the scheduler's own
// unit tests use a fake satisfying this interface.
type Driver interface {
	// LaunchPersistent starts a new browser instance rooted at profileDir,
	// returning its initial page.
	LaunchPersistent(ctx context.Context, profileDir string, headless bool, extraFlags []string) (Page, error)

	// ConnectCDP attaches to an existing browser via a validated websocket
	// endpoint (component J validates the endpoint before this is called).
	ConnectCDP(ctx context.Context, wsEndpoint string) error

	// Pages lists every open page the driver currently knows about, the
	// authoritative source component A.sync reconciles against.
	Pages(ctx context.Context) ([]Page, error)

	// NewPage opens a fresh page/tab.
	NewPage(ctx context.Context) (Page, error)

	// ClosePage closes one page.
	ClosePage(ctx context.Context, p Page) error

	// Title and URL are individually time-bounded by the caller per spec
	// §4.A ("Reading title/url MUST be time-bounded (≤2s)"); the driver
	// itself just returns what it currently knows, honoring ctx's deadline.
	Title(ctx context.Context, p Page) (string, error)
	URL(ctx context.Context, p Page) (string, error)

	// Navigate, WaitForLoad are the verifier-capable operations the
	// blocker FSM (component D) treats as evidence of resolution.
	Navigate(ctx context.Context, p Page, url string) error
	WaitForLoad(ctx context.Context, p Page, timeout time.Duration) error

	// Evaluate runs a script against a resolved backend node (ref store,
	// component B, resolves selector/backendNodeId before this is called).
	Evaluate(ctx context.Context, p Page, backendNodeID int64, script string) (EvaluateResult, error)

	// Screenshot captures the current viewport or an element if
	// backendNodeID is non-zero.
	Screenshot(ctx context.Context, p Page, backendNodeID int64) (Screenshot, error)

	// SubscribeNetwork, SubscribeConsole, SubscribeExceptions, and
	// SubscribeFrameNavigated deliver driver events to the scheduler's
	// trackers and blocker FSM; each returns an unsubscribe function.
	SubscribeNetwork(p Page, fn func(NetworkEvent)) (unsubscribe func())
	SubscribeConsole(p Page, fn func(ConsoleEvent)) (unsubscribe func())
	SubscribeExceptions(p Page, fn func(ExceptionEvent)) (unsubscribe func())
	SubscribeFrameNavigated(p Page, fn func(FrameNavigatedEvent)) (unsubscribe func())

	// ImportCookies and ListCookies back the cookie import/list operations
	// (component H, internal/cookie owns validation before calling this).
	ImportCookies(ctx context.Context, cookies []Cookie) error
	ListCookies(ctx context.Context) ([]Cookie, error)

	// Close tears down the browser/context; for non-managed modes callers
	// race this against a timeout per spec §4.H disconnect step 3.
	Close(ctx context.Context) error
}

// Cookie is the normalized shape passed to ImportCookies, already validated
// and normalized by internal/cookie per spec §4.H's cookieImport rules.
type Cookie struct {
	Name     string
	Value    string
	URL      string
	Domain   string
	Path     string
	Secure   bool
	HTTPOnly bool
	Expires  float64
	SameSite string
}
