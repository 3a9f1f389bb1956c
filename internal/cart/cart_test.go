// AngelaMos | 2026
// cart_test.go

package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddAppendsInOrder(t *testing.T) {
	c := New(nil)
	c.Add("a")
	c.Add("b")
	c.Add("a")

	assert.Equal(t, []string{"a", "b", "a"}, c.Items())
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, c.Contents())
}

func TestRemoveOneRemovesFirstOccurrence(t *testing.T) {
	c := New([]string{"a", "b", "a"})

	removed := c.RemoveOne("a")
	assert.True(t, removed)
	assert.Equal(t, []string{"b", "a"}, c.Items())

	removed = c.RemoveOne("missing")
	assert.False(t, removed)
	assert.Equal(t, []string{"b", "a"}, c.Items())
}

func TestRemoveAllFiltersEveryOccurrence(t *testing.T) {
	c := New([]string{"a", "b", "a", "c", "a"})

	c.RemoveAll("a")
	assert.Equal(t, []string{"b", "c"}, c.Items())
}

func TestRemoveAtOutOfBoundsIsNoOp(t *testing.T) {
	c := New([]string{"a", "b"})

	c.RemoveAt(-1)
	c.RemoveAt(2)
	c.RemoveAt(99)
	assert.Equal(t, []string{"a", "b"}, c.Items())

	c.RemoveAt(0)
	assert.Equal(t, []string{"b"}, c.Items())
}

func TestClear(t *testing.T) {
	c := New([]string{"a", "b"})
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Empty(t, c.Items())
}

func TestNewCopiesInput(t *testing.T) {
	src := []string{"a", "b"}
	c := New(src)
	c.Add("c")

	assert.Equal(t, []string{"a", "b"}, src)
}

func TestItemsReturnsCopy(t *testing.T) {
	c := New([]string{"a", "b"})
	items := c.Items()
	items[0] = "mutated"

	assert.Equal(t, []string{"a", "b"}, c.Items())
}
