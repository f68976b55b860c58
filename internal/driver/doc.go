// doc.go — Package documentation for the opaque browser driver boundary.

// Package driver declares the capability surface the scheduler consumes
// from the underlying browser control layer. Per spec §1 the driver itself
// — launching a persistent profile, connecting over CDP, listing/creating/
// closing pages, evaluating on elements, capturing screenshots, and
// subscribing to console/network/exception events — is an external
// collaborator specified only by interface; no implementation lives here.
//
// Page and EvaluateResult borrow chromedp/cdproto/target's TargetID and
// SessionID newtypes at the edges that cross into real CDP wire data, so a
// genuine chromedp-backed driver can satisfy this interface without an
// adapter layer translating id types back and forth.
package driver
