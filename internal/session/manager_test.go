package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gasoline-dev/gasoline-broker/internal/config"
	"github.com/gasoline-dev/gasoline-broker/internal/driver"
)

// fakeDriver is a minimal driver.Driver satisfying only what Launch/
// Goto/WaitForLoad exercise; unimplemented methods are never called by
// these tests.
type fakeDriver struct {
	driver.Driver
	page      driver.Page
	title     string
	url       string
	navigated []string
	failNav   error
}

func (f *fakeDriver) LaunchPersistent(ctx context.Context, profileDir string, headless bool, extraFlags []string) (driver.Page, error) {
	return f.page, nil
}

func (f *fakeDriver) Title(ctx context.Context, p driver.Page) (string, error) { return f.title, nil }
func (f *fakeDriver) URL(ctx context.Context, p driver.Page) (string, error)   { return f.url, nil }

func (f *fakeDriver) Navigate(ctx context.Context, p driver.Page, url string) error {
	if f.failNav != nil {
		return f.failNav
	}
	f.navigated = append(f.navigated, url)
	f.url = url
	return nil
}

func (f *fakeDriver) WaitForLoad(ctx context.Context, p driver.Page, timeout time.Duration) error {
	return nil
}

func (f *fakeDriver) Close(ctx context.Context) error { return nil }

func newTestManager(drv *fakeDriver) *Manager {
	cfg := config.Defaults()
	return NewManager(cfg, nil, func() driver.Driver { return drv })
}

func TestLaunchRegistersActiveTarget(t *testing.T) {
	drv := &fakeDriver{page: driver.Page{SessionID: "s1"}}
	m := newTestManager(drv)

	res, err := m.Launch(context.Background(), LaunchOpts{Headless: true})
	require.NoError(t, err)

	out := res.Value.(map[string]any)
	require.NotEmpty(t, out["sessionId"])
	require.NotEmpty(t, out["targetId"])
}

func TestGotoReconcilesBlockerOnAuthTitle(t *testing.T) {
	drv := &fakeDriver{page: driver.Page{SessionID: "s1"}}
	m := newTestManager(drv)

	res, err := m.Launch(context.Background(), LaunchOpts{Headless: true})
	require.NoError(t, err)
	sessionID := res.Value.(map[string]any)["sessionId"].(string)

	drv.title = "Sign in to continue"
	gotoRes, err := m.Goto(context.Background(), sessionID, "", "https://example.com/login", 5000)
	require.NoError(t, err)
	require.NotNil(t, gotoRes.Blocker, "an auth-looking title should activate the blocker")

	drv.title = "Welcome"
	loadRes, err := m.WaitForLoad(context.Background(), sessionID, "", 5000)
	require.NoError(t, err)
	require.Nil(t, loadRes.Blocker, "a verifier op with no more evidence should clear the blocker")
}

func TestDisconnectAlwaysRemovesSession(t *testing.T) {
	drv := &fakeDriver{page: driver.Page{SessionID: "s1"}}
	m := newTestManager(drv)

	res, err := m.Launch(context.Background(), LaunchOpts{Headless: true})
	require.NoError(t, err)
	sessionID := res.Value.(map[string]any)["sessionId"].(string)

	require.NoError(t, m.Disconnect(context.Background(), sessionID, true))
	_, err = m.Get(sessionID)
	require.Error(t, err)
}
