package pinned

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStockKey(t *testing.T) {
	assert.Equal(t, "BRK.A~Berkshire Hathaway Inc - Class A", Stock{Symbol: "BRK.A", Name: "Berkshire Hathaway Inc - Class A"}.Key())
	assert.Equal(t, "GME~", Stock{Symbol: "GME"}.Key())
}

func TestPin_AppendsInOrder(t *testing.T) {
	l := New(0)

	a, ok := l.Pin(Stock{Symbol: "A", Name: "Alpha"})
	require.True(t, ok)
	b, ok := l.Pin(Stock{Symbol: "B", Name: "Beta"})
	require.True(t, ok)

	require.NotEmpty(t, a.ID)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, "A~Alpha", a.Key)
	require.Equal(t, []Entry{a, b}, l.Entries())
}

func TestPin_CapacityBound(t *testing.T) {
	l := New(0)
	for _, s := range []string{"A", "B", "C"} {
		_, ok := l.Pin(Stock{Symbol: s})
		require.True(t, ok)
	}
	before := l.Entries()

	fourth := Stock{Symbol: "D"}
	require.False(t, l.CanPin(fourth))
	_, ok := l.Pin(fourth)

	require.False(t, ok)
	require.Equal(t, MaxPinned, l.Len())
	require.Equal(t, before, l.Entries())
}

func TestPin_DuplicateKey(t *testing.T) {
	l := New(0)
	s := Stock{Symbol: "GME", Name: "GameStop Corp"}
	_, ok := l.Pin(s)
	require.True(t, ok)

	require.False(t, l.CanPin(s))
	_, ok = l.Pin(s)
	require.False(t, ok)
	require.Equal(t, 1, l.Len())

	// same symbol, different listing
	_, ok = l.Pin(Stock{Symbol: "GME", Name: "GameStop Corp - Frankfurt"})
	require.True(t, ok)
	require.Equal(t, 2, l.Len())
}

func TestUnpin_RemovesOnlyTarget(t *testing.T) {
	l := New(0)
	a, _ := l.Pin(Stock{Symbol: "A"})
	b, _ := l.Pin(Stock{Symbol: "B"})
	c, _ := l.Pin(Stock{Symbol: "C"})

	got, ok := l.Unpin(b.ID)
	require.True(t, ok)
	require.Equal(t, b, got)
	require.Equal(t, []Entry{a, c}, l.Entries())

	_, ok = l.Unpin(b.ID)
	require.False(t, ok)
	require.True(t, l.CanPin(Stock{Symbol: "B"}))
}

func TestUnpin_ByIdentityNotValue(t *testing.T) {
	// Two entries with identical fields can only be built by hand; Pin refuses them.
	l := New(0)
	first := Entry{ID: "1", Symbol: "GME", Name: "GameStop Corp", Key: "GME~GameStop Corp"}
	second := Entry{ID: "2", Symbol: "GME", Name: "GameStop Corp", Key: "GME~GameStop Corp"}
	other := Entry{ID: "3", Symbol: "AMC", Name: "AMC Entertainment", Key: "AMC~AMC Entertainment"}
	l.entries = []Entry{first, other, second}

	_, ok := l.Unpin("2")
	require.True(t, ok)
	require.Equal(t, []Entry{first, other}, l.Entries())
}

func TestEntries_ReturnsCopy(t *testing.T) {
	l := New(0)
	l.Pin(Stock{Symbol: "A"})

	got := l.Entries()
	got[0].Symbol = "mutated"

	e := l.Entries()[0]
	require.Equal(t, "A", e.Symbol)
	fetched, ok := l.Get(e.ID)
	require.True(t, ok)
	require.Equal(t, e, fetched)
}
