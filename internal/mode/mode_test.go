package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineStartsNormal(t *testing.T) {
	m := NewMachine()
	assert.Equal(t, Normal, m.Current())
	assert.True(t, m.Is(Normal))
}

func TestMachineNotifiesOnlyOnChange(t *testing.T) {
	m := NewMachine()
	var changes []Change
	m.OnChange(func(c Change) {
		// observers see the new state already applied
		assert.Equal(t, c.To, m.Current())
		changes = append(changes, c)
	})

	require.True(t, m.Set(Holding))
	require.False(t, m.Set(Holding))
	require.True(t, m.Set(Route))

	assert.Equal(t, []Change{{Normal, Holding}, {Holding, Route}}, changes)
}

func TestMachineUnsubscribe(t *testing.T) {
	m := NewMachine()
	calls := 0
	sub := m.OnChange(func(Change) { calls++ })

	m.Set(Route)
	sub.Unsubscribe()
	m.Set(Normal)

	assert.Equal(t, 1, calls)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "Normal", Normal.String())
	assert.Equal(t, "Holding", Holding.String())
	assert.Equal(t, "Route", Route.String())
	assert.Equal(t, "Mode(?)", Mode(42).String())
}
