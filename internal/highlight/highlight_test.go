package highlight

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrimaryReplacesLowerLevels(t *testing.T) {
	s := New()

	assert.True(t, s.Highlight(1, Tertiary))
	assert.True(t, s.Highlight(1, Secondary))
	assert.True(t, s.Highlight(1, Primary))
	assert.Equal(t, Primary, s.Level(1))
	assert.Equal(t, 1, s.Len())
}

func TestRepeatedRequestIsNoop(t *testing.T) {
	s := New()

	assert.True(t, s.Highlight(7, Primary))
	assert.False(t, s.Highlight(7, Primary))

	assert.True(t, s.Highlight(8, Secondary))
	assert.False(t, s.Highlight(8, Secondary))
}

func TestLowerRequestDoesNotDemote(t *testing.T) {
	s := New()
	s.Highlight(3, Primary)

	assert.False(t, s.Highlight(3, Secondary))
	assert.Equal(t, Primary, s.Level(3))
}

func TestClearLevelLeavesOthers(t *testing.T) {
	s := New()
	s.Highlight(1, Primary)
	s.Highlight(2, Secondary)
	s.Highlight(3, Secondary)

	s.ClearLevel(Primary)

	assert.Equal(t, None, s.Level(1))
	assert.ElementsMatch(t, []uint64{2, 3}, s.Highlighted(Secondary))

	// once cleared, a lower level can be applied again
	assert.True(t, s.Highlight(1, Tertiary))
}

func TestUnhighlightAndClearAll(t *testing.T) {
	s := New()
	s.Highlight(1, Primary)
	s.Highlight(2, Tertiary)

	assert.True(t, s.Unhighlight(1))
	assert.False(t, s.Unhighlight(1))
	assert.True(t, s.Highlight(2, None))

	s.Highlight(5, Secondary)
	s.ClearAll()
	assert.Equal(t, 0, s.Len())
}
