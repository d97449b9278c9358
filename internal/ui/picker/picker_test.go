package picker

import (
	"os"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

func testItems() []Item {
	return []Item{
		{Label: "James", Value: "james"},
		{Label: "Ana Lima", Value: "ana"},
		{Label: "Rex", Value: "rex", Detail: "nickname"},
	}
}

func TestSetItemsResetsSelection(t *testing.T) {
	m := New("Agents").SetItems(testItems())
	m = m.MoveDown().MoveDown()
	sel, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "rex", sel.Value)

	m = m.SetItems(testItems()[:2])
	sel, ok = m.Selected()
	require.True(t, ok)
	assert.Equal(t, "james", sel.Value)
}

func TestNavigationStaysInBounds(t *testing.T) {
	m := New("Agents").SetItems(testItems())

	m = m.MoveUp()
	sel, _ := m.Selected()
	assert.Equal(t, "james", sel.Value, "MoveUp at the top should stay put")

	for range 10 {
		m = m.MoveDown()
	}
	sel, _ = m.Selected()
	assert.Equal(t, "rex", sel.Value, "MoveDown at the bottom should stay put")
}

func TestUpdateHandlesNavigationKeys(t *testing.T) {
	m := New("Agents").SetItems(testItems())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	sel, _ := m.Selected()
	assert.Equal(t, "ana", sel.Value)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	sel, _ = m.Selected()
	assert.Equal(t, "james", sel.Value)
}

func TestSelectedOnEmptyPicker(t *testing.T) {
	m := New("Agents")
	_, ok := m.Selected()
	assert.False(t, ok)
}

func TestViewEmptyRendersNothing(t *testing.T) {
	m := New("Agents")
	assert.Empty(t, m.View())
}

func TestViewShowsItemsAndSelection(t *testing.T) {
	m := New("Agents").SetItems(testItems()).SetBoxWidth(30)
	view := m.View()
	assert.Contains(t, view, "Agents")
	assert.Contains(t, view, "James")
	assert.Contains(t, view, "Ana Lima")
	assert.Contains(t, view, ">")
}

func TestViewWindowsLongLists(t *testing.T) {
	items := make([]Item, 20)
	for i := range items {
		items[i] = Item{Label: strings.Repeat("x", 3), Value: string(rune('a' + i))}
	}
	m := New("Files").SetItems(items).SetMaxRows(5)
	for range 19 {
		m = m.MoveDown()
	}
	sel, _ := m.Selected()
	assert.Equal(t, "t", sel.Value)

	// The view should render without the selection scrolling out of range.
	view := m.View()
	assert.NotEmpty(t, view)
	assert.LessOrEqual(t, strings.Count(view, "xxx"), 5)
}
