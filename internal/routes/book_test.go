package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleHoldSharesRoute(t *testing.T) {
	b := NewBook()
	r := b.NewRoute()

	b.ToggleHold(r, 1)
	b.ToggleHold(r, 2)

	assert.Same(t, r, b.RouteWithHold(2))
	assert.Same(t, r, b.RouteWithHold(1))
	assert.Equal(t, []uint64{1, 2}, r.Holds())
	assert.Equal(t, []*Route{r}, b.Routes())
}

func TestToggleHoldTwiceRemovesAndPrunes(t *testing.T) {
	b := NewBook()
	r := b.NewRoute()

	b.ToggleHold(r, 1)
	b.ToggleHold(r, 1)

	assert.Nil(t, b.RouteWithHold(1))
	assert.Empty(t, b.Routes())
	assert.False(t, b.Has(r))
}

func TestToggleHoldMovesBetweenRoutes(t *testing.T) {
	b := NewBook()
	old := b.NewRoute()
	b.ToggleHold(old, 1)
	b.Select(old)

	next := b.NewRoute()
	b.ToggleHold(next, 1)

	assert.Same(t, next, b.RouteWithHold(1))
	assert.False(t, old.Contains(1))
	assert.Equal(t, []*Route{next}, b.Routes(), "emptied route is pruned")
	assert.Nil(t, b.Selected(), "pruning the selected route clears the selection")
}

func TestMembershipIsExclusive(t *testing.T) {
	b := NewBook()
	rs := []*Route{b.NewRoute(), b.NewRoute(), b.NewRoute()}
	ops := []struct {
		route int
		hold  uint64
	}{{0, 1}, {1, 1}, {2, 2}, {0, 2}, {1, 3}, {2, 1}, {0, 3}, {0, 1}}

	for _, op := range ops {
		b.ToggleHold(rs[op.route], op.hold)

		for _, h := range []uint64{1, 2, 3} {
			owners := 0
			for _, r := range b.Routes() {
				if r.Contains(h) {
					owners++
				}
			}
			assert.LessOrEqual(t, owners, 1, "hold %d", h)
		}
		for _, r := range b.Routes() {
			assert.Positive(t, r.Len())
		}
	}
}

func TestGetOrCreateRouteWithHold(t *testing.T) {
	b := NewBook()

	r := b.GetOrCreateRouteWithHold(5)
	require.NotNil(t, r)
	assert.Equal(t, []uint64{5}, r.Holds())
	assert.Same(t, r, b.GetOrCreateRouteWithHold(5))
	assert.Len(t, b.Routes(), 1)
}

func TestMarkersAreExclusive(t *testing.T) {
	b := NewBook()
	var changes []MarkerChange
	b.OnMarker(func(c MarkerChange) { changes = append(changes, c) })

	b.ToggleStarting(1)
	b.ToggleEnding(1)

	assert.False(t, b.IsStarting(1))
	assert.True(t, b.IsEnding(1))
	assert.Empty(t, b.StartingHolds())
	assert.Equal(t, []uint64{1}, b.EndingHolds())
	assert.Equal(t, []MarkerChange{
		{Hold: 1, Kind: Starting, On: true},
		{Hold: 1, Kind: Starting, On: false},
		{Hold: 1, Kind: Ending, On: true},
	}, changes)

	b.ToggleEnding(1)
	assert.Empty(t, b.EndingHolds())
}

func TestRemoveHoldPurgesEverything(t *testing.T) {
	b := NewBook()
	r := b.NewRoute()
	b.ToggleHold(r, 9)
	b.ToggleStarting(9)
	b.Select(r)

	b.RemoveHold(9)

	assert.False(t, b.IsStarting(9))
	assert.Nil(t, b.RouteWithHold(9))
	assert.Empty(t, b.Routes())
	assert.Nil(t, b.Selected())
}

func TestUsableRoutes(t *testing.T) {
	b := NewBook()

	lone := b.GetOrCreateRouteWithHold(1)
	pair := b.NewRoute()
	b.ToggleHold(pair, 2)
	b.ToggleHold(pair, 3)
	named := b.GetOrCreateRouteWithHold(4)
	named.Grade = "6a"
	marked := b.GetOrCreateRouteWithHold(5)
	b.ToggleEnding(5)
	blank := b.GetOrCreateRouteWithHold(6)
	blank.Name = "   "

	usable := b.UsableRoutes()
	assert.Equal(t, []*Route{pair, named, marked}, usable)
	assert.False(t, b.IsUsable(lone))
	assert.False(t, b.IsUsable(blank))
	assert.False(t, b.IsUsable(b.NewRoute()))
}

func TestSelectIgnoresDetachedRoute(t *testing.T) {
	b := NewBook()
	b.Select(b.NewRoute())
	assert.Nil(t, b.Selected())

	r := b.GetOrCreateRouteWithHold(1)
	b.Select(r)
	assert.Same(t, r, b.Selected())
	b.Deselect()
	assert.Nil(t, b.Selected())
}

func TestOnChangeAndClear(t *testing.T) {
	b := NewBook()
	calls := 0
	sub := b.OnChange(func() { calls++ })

	r := b.GetOrCreateRouteWithHold(1)
	b.ToggleStarting(1)
	b.Select(r)
	b.Clear()

	assert.Equal(t, 3, calls)
	assert.Empty(t, b.Routes())
	assert.Empty(t, b.StartingHolds())
	assert.Nil(t, b.Selected())
	assert.Nil(t, b.RouteWithHold(1))

	sub.Unsubscribe()
	b.GetOrCreateRouteWithHold(2)
	assert.Equal(t, 3, calls)
}
