package target

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gasoline-dev/gasoline-broker/internal/driver"
	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

// fakeDriver is a minimal driver.Driver exercising only Title/URL/
// ClosePage, what Registry itself calls.
type fakeDriver struct {
	driver.Driver
	titles map[driver.Page]string
	urls   map[driver.Page]string
	closed []driver.Page
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{titles: map[driver.Page]string{}, urls: map[driver.Page]string{}}
}

func (f *fakeDriver) Title(ctx context.Context, p driver.Page) (string, error) {
	return f.titles[p], nil
}

func (f *fakeDriver) URL(ctx context.Context, p driver.Page) (string, error) {
	return f.urls[p], nil
}

func (f *fakeDriver) ClosePage(ctx context.Context, p driver.Page) error {
	f.closed = append(f.closed, p)
	return nil
}

func TestRegisterFirstTargetBecomesActive(t *testing.T) {
	drv := newFakeDriver()
	r := New(drv)

	id, err := r.Register(driver.Page{SessionID: "s1"}, "")
	require.NoError(t, err)
	require.Equal(t, id, r.GetActive())
}

func TestGetPageEmptyResolvesActive(t *testing.T) {
	drv := newFakeDriver()
	r := New(drv)
	id, err := r.Register(driver.Page{SessionID: "s1"}, "")
	require.NoError(t, err)

	_, resolved, err := r.GetPage("")
	require.NoError(t, err)
	require.Equal(t, id, resolved)
}

func TestGetPageEmptyRegistryFailsNoActiveTarget(t *testing.T) {
	r := New(newFakeDriver())
	_, _, err := r.GetPage("")
	require.Error(t, err)
	require.Equal(t, gaserr.KindNoActiveTarget, gaserr.KindOf(err))
}

func TestGetPageUnknownIDFails(t *testing.T) {
	r := New(newFakeDriver())
	_, _, err := r.GetPage("nope")
	require.Error(t, err)
	require.Equal(t, gaserr.KindInvalidInput, gaserr.KindOf(err))
}

func TestDuplicateNameRejected(t *testing.T) {
	drv := newFakeDriver()
	r := New(drv)
	_, err := r.Register(driver.Page{SessionID: "s1"}, "main")
	require.NoError(t, err)
	_, err = r.Register(driver.Page{SessionID: "s2"}, "main")
	require.Error(t, err)
	require.Equal(t, gaserr.KindInvalidInput, gaserr.KindOf(err))
}

func TestSetNameThenRemoveName(t *testing.T) {
	r := New(newFakeDriver())
	id, _ := r.Register(driver.Page{SessionID: "s1"}, "")

	require.NoError(t, r.SetName(id, "main"))
	named := r.ListNamed()
	require.Len(t, named, 1)
	require.Equal(t, "main", named[0].Name)

	require.NoError(t, r.RemoveName(id))
	require.Empty(t, r.ListNamed())
}

func TestClosingActiveReassignsToFirstRemaining(t *testing.T) {
	drv := newFakeDriver()
	r := New(drv)
	id1, _ := r.Register(driver.Page{SessionID: "s1"}, "")
	id2, _ := r.Register(driver.Page{SessionID: "s2"}, "")
	require.Equal(t, id1, r.GetActive())

	require.NoError(t, r.Close(context.Background(), id1))
	require.Equal(t, id2, r.GetActive())
	require.Len(t, drv.closed, 1)
}

func TestClosingLastTargetLeavesNoActive(t *testing.T) {
	drv := newFakeDriver()
	r := New(drv)
	id1, _ := r.Register(driver.Page{SessionID: "s1"}, "")

	require.NoError(t, r.Close(context.Background(), id1))
	require.Equal(t, "", r.GetActive())

	_, _, err := r.GetPage("")
	require.Equal(t, gaserr.KindNoActiveTarget, gaserr.KindOf(err))
}

func TestListReadsTitleAndOptionallyURL(t *testing.T) {
	drv := newFakeDriver()
	page := driver.Page{SessionID: "s1"}
	drv.titles[page] = "Example"
	drv.urls[page] = "https://example.com"
	r := New(drv)
	id, _ := r.Register(page, "")

	infos := r.List(context.Background(), false)
	require.Len(t, infos, 1)
	require.Equal(t, id, infos[0].TargetID)
	require.NotNil(t, infos[0].Title)
	require.Equal(t, "Example", *infos[0].Title)
	require.Nil(t, infos[0].URL, "includeURLs=false must omit URL")

	infos = r.List(context.Background(), true)
	require.NotNil(t, infos[0].URL)
	require.Equal(t, "https://example.com", *infos[0].URL)
}

func TestSyncDropsClosedAndAddsNew(t *testing.T) {
	drv := newFakeDriver()
	r := New(drv)
	keep := driver.Page{SessionID: "keep"}
	gone := driver.Page{SessionID: "gone"}
	r.Register(keep, "")
	r.Register(gone, "")

	fresh := driver.Page{SessionID: "fresh"}
	r.Sync([]driver.Page{keep, fresh})

	infos := r.List(context.Background(), false)
	require.Len(t, infos, 2)

	var sawKeep, sawGone, sawFresh bool
	for _, info := range infos {
		p, _, err := r.GetPage(info.TargetID)
		require.NoError(t, err)
		switch p {
		case keep:
			sawKeep = true
		case gone:
			sawGone = true
		case fresh:
			sawFresh = true
		}
	}
	require.True(t, sawKeep)
	require.False(t, sawGone)
	require.True(t, sawFresh)
}
