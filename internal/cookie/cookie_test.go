package cookie

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gasoline-dev/gasoline-broker/internal/audit"
	"github.com/gasoline-dev/gasoline-broker/internal/driver"
	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

// fakeDriver satisfies driver.Driver; only ImportCookies/ListCookies do
// anything, the rest of the surface is unused by this package's tests.
type fakeDriver struct {
	imported     []driver.Cookie
	importErr    error
	importCalled bool
}

func (f *fakeDriver) LaunchPersistent(ctx context.Context, profileDir string, headless bool, extraFlags []string) (driver.Page, error) {
	return driver.Page{}, nil
}
func (f *fakeDriver) ConnectCDP(ctx context.Context, wsEndpoint string) error { return nil }
func (f *fakeDriver) Pages(ctx context.Context) ([]driver.Page, error)        { return nil, nil }
func (f *fakeDriver) NewPage(ctx context.Context) (driver.Page, error)        { return driver.Page{}, nil }
func (f *fakeDriver) ClosePage(ctx context.Context, p driver.Page) error      { return nil }
func (f *fakeDriver) Title(ctx context.Context, p driver.Page) (string, error) { return "", nil }
func (f *fakeDriver) URL(ctx context.Context, p driver.Page) (string, error)   { return "", nil }
func (f *fakeDriver) Navigate(ctx context.Context, p driver.Page, url string) error { return nil }
func (f *fakeDriver) WaitForLoad(ctx context.Context, p driver.Page, timeout time.Duration) error {
	return nil
}
func (f *fakeDriver) Evaluate(ctx context.Context, p driver.Page, backendNodeID int64, script string) (driver.EvaluateResult, error) {
	return driver.EvaluateResult{}, nil
}
func (f *fakeDriver) Screenshot(ctx context.Context, p driver.Page, backendNodeID int64) (driver.Screenshot, error) {
	return driver.Screenshot{}, nil
}
func (f *fakeDriver) SubscribeNetwork(p driver.Page, fn func(driver.NetworkEvent)) func()       { return func() {} }
func (f *fakeDriver) SubscribeConsole(p driver.Page, fn func(driver.ConsoleEvent)) func()       { return func() {} }
func (f *fakeDriver) SubscribeExceptions(p driver.Page, fn func(driver.ExceptionEvent)) func()  { return func() {} }
func (f *fakeDriver) SubscribeFrameNavigated(p driver.Page, fn func(driver.FrameNavigatedEvent)) func() {
	return func() {}
}
func (f *fakeDriver) ImportCookies(ctx context.Context, cookies []driver.Cookie) error {
	f.importCalled = true
	f.imported = cookies
	return f.importErr
}
func (f *fakeDriver) ListCookies(ctx context.Context) ([]driver.Cookie, error) { return nil, nil }
func (f *fakeDriver) Close(ctx context.Context) error                          { return nil }

func validRecord() Record {
	return Record{Name: "session", Value: "abc123", Domain: "example.com", Path: "/", Expires: -1}
}

func TestValidateOneAcceptsURLForm(t *testing.T) {
	r := Record{Name: "a", Value: "b", URL: "https://example.com/path", Expires: 100}
	_, reason := validateOne(r)
	require.Empty(t, reason)
}

func TestValidateOneRejectsNeitherURLNorDomain(t *testing.T) {
	r := validRecord()
	r.Domain = ""
	_, reason := validateOne(r)
	require.NotEmpty(t, reason)
}

func TestValidateOnePrefersDomainOverURLWhenBothSet(t *testing.T) {
	r := Record{
		Name:     "session",
		Value:    "ok",
		URL:      "https://example.com/path",
		Domain:   "EXAMPLE.COM",
		Path:     "/app",
		Secure:   true,
		SameSite: "Lax",
		Expires:  123,
	}
	out, reason := validateOne(r)
	require.Empty(t, reason)
	require.Equal(t, driver.Cookie{
		Name:     "session",
		Value:    "ok",
		Domain:   "example.com",
		Path:     "/app",
		Secure:   true,
		SameSite: "Lax",
		Expires:  123,
	}, out)
}

func TestValidateOneRejectsBadName(t *testing.T) {
	r := validRecord()
	r.Name = "has space"
	_, reason := validateOne(r)
	require.NotEmpty(t, reason)
}

func TestValidateOneRejectsCRLFInValue(t *testing.T) {
	r := validRecord()
	r.Value = "a\r\nb"
	_, reason := validateOne(r)
	require.NotEmpty(t, reason)
}

func TestValidateOneRejectsDotDotDomain(t *testing.T) {
	r := validRecord()
	r.Domain = "ex..ample.com"
	_, reason := validateOne(r)
	require.NotEmpty(t, reason)
}

func TestValidateOneRejectsPathWithoutLeadingSlash(t *testing.T) {
	r := validRecord()
	r.Path = "nofront"
	_, reason := validateOne(r)
	require.NotEmpty(t, reason)
}

func TestValidateOneRejectsNonFiniteExpires(t *testing.T) {
	r := validRecord()
	r.Expires = -2
	_, reason := validateOne(r)
	require.NotEmpty(t, reason)
}

func TestValidateOneRejectsSameSiteNoneWithoutSecure(t *testing.T) {
	r := validRecord()
	r.SameSite = "None"
	r.Secure = false
	_, reason := validateOne(r)
	require.NotEmpty(t, reason)
}

func TestValidateOneAcceptsSameSiteNoneWithSecure(t *testing.T) {
	r := validRecord()
	r.SameSite = "None"
	r.Secure = true
	_, reason := validateOne(r)
	require.Empty(t, reason)
}

func TestImportNonStrictPartialSuccess(t *testing.T) {
	fd := &fakeDriver{}
	records := []Record{validRecord(), {Name: "bad name"}}
	imported, rejected, err := Import(context.Background(), fd, nil, "sess1", records, false)
	require.NoError(t, err)
	require.Equal(t, 1, imported)
	require.Len(t, rejected, 1)
	require.True(t, fd.importCalled)
}

func TestImportStrictAbortsOnAnyRejection(t *testing.T) {
	fd := &fakeDriver{}
	records := []Record{validRecord(), {Name: "bad name"}}
	imported, rejected, err := Import(context.Background(), fd, nil, "sess1", records, true)
	require.Error(t, err)
	require.Equal(t, gaserr.KindInvalidInput, gaserr.KindOf(err))
	require.Equal(t, 0, imported)
	require.Len(t, rejected, 1)
	require.False(t, fd.importCalled, "strict mode must not call the driver at all when any record is rejected")
}

func TestImportAuditLogsOutcome(t *testing.T) {
	trail := audit.NewAuditTrail(audit.AuditConfig{Enabled: true, MaxEntries: 10})
	fd := &fakeDriver{}
	_, _, err := Import(context.Background(), fd, trail, "sess1", []Record{validRecord()}, false)
	require.NoError(t, err)

	entries := trail.Query(audit.AuditFilter{SessionID: "sess1"})
	require.Len(t, entries, 1)
	require.Equal(t, "cookieImport", entries[0].ToolName)
	require.True(t, entries[0].Success)
}
