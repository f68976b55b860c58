package tracker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPollReturnsOnlyNewEvents(t *testing.T) {
	tr := newTracker[string](10)
	e1 := tr.emit("x", "a")
	tr.emit("x", "b")

	res := tr.Poll(e1.Seq, 0)
	require.Len(t, res.Events, 1)
	require.Equal(t, "b", res.Events[0].Payload)
	require.False(t, res.Truncated)
}

func TestPollTruncatesAtMax(t *testing.T) {
	tr := newTracker[string](10)
	for i := 0; i < 5; i++ {
		tr.emit("x", "e")
	}
	res := tr.Poll(0, 2)
	require.Len(t, res.Events, 2)
	require.True(t, res.Truncated)
}

func TestOverflowDropsOldest(t *testing.T) {
	tr := newTracker[int](3)
	for i := 0; i < 5; i++ {
		tr.emit("x", i)
	}
	res := tr.Poll(0, 0)
	require.Len(t, res.Events, 3)
	require.Equal(t, 2, res.Events[0].Payload)
}

func TestSubscribeDeliversOncePerEvent(t *testing.T) {
	tr := newTracker[string](10)
	var got []string
	unsub := tr.Subscribe(func(e Event[string]) { got = append(got, e.Payload) })

	tr.emit("x", "one")
	tr.emit("x", "two")
	unsub()
	tr.emit("x", "three")

	require.Equal(t, []string{"one", "two"}, got)
}

func TestSubscribeDoesNotAffectPollCursor(t *testing.T) {
	tr := newTracker[string](10)
	tr.Subscribe(func(Event[string]) {})
	tr.emit("x", "a")

	res := tr.Poll(0, 0)
	require.Len(t, res.Events, 1)
}
