package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocators_AddDeduplicates(t *testing.T) {
	var ls Locators
	assert.True(t, ls.Add(10))
	assert.True(t, ls.Add(20))
	assert.False(t, ls.Add(10))
	assert.Equal(t, Locators{10, 20}, ls)
	assert.Equal(t, "[10, 20]", ls.String())
}

func TestLocators_CloneDoesNotAlias(t *testing.T) {
	ls := Locators{1, 2}
	cp := ls.Clone()
	cp[0] = 99
	assert.Equal(t, Locator(1), ls[0])
	assert.Nil(t, Locators(nil).Clone())
}

func TestNameKey(t *testing.T) {
	assert.Equal(t, NameKey("Roanoke:VA"), NewNameKey("Roanoke", "VA"))
	assert.NotEqual(t, NewNameKey("roanoke", "VA"), NewNameKey("Roanoke", "VA"))
}

func TestCoordinate(t *testing.T) {
	c := NewCoordinate(-286230, 137696)
	assert.True(t, c.Equal(Coordinate{X: -286230, Y: 137696}))
	assert.Equal(t, "(-286230, 137696)", c.String())
	assert.True(t, c.InBox(-286230, 0, 0, 137696))
	assert.False(t, c.InBox(-286229, 0, 0, 137696))
}
