package refstore

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gasoline-dev/gasoline-broker/internal/gaserr"
)

func TestResolveUnknownRefFails(t *testing.T) {
	s := New()
	_, err := s.Resolve("t1", "ref-1")
	require.Error(t, err)
	require.Equal(t, gaserr.KindUnknownRef, gaserr.KindOf(err))
}

func TestPutThenResolve(t *testing.T) {
	s := New()
	s.Put("t1", "ref-1", Entry{Selector: "#btn", BackendNodeID: 42})
	e, err := s.Resolve("t1", "ref-1")
	require.NoError(t, err)
	require.Equal(t, int64(42), e.BackendNodeID)

	_, err = s.Resolve("t2", "ref-1")
	require.Error(t, err, "refs from one target must never resolve in another")
}

func TestTopFrameNavigationClears(t *testing.T) {
	s := New()
	s.Put("t1", "ref-1", Entry{Selector: "#btn"})

	s.OnFrameNavigated("t1", "child-frame-id")
	_, err := s.Resolve("t1", "ref-1")
	require.NoError(t, err, "child-frame navigation must not invalidate refs")

	s.OnFrameNavigated("t1", "")
	_, err = s.Resolve("t1", "ref-1")
	require.Error(t, err, "top-frame navigation must invalidate refs")
}
