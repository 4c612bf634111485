package listview

import (
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Renderer draws a List onto a rectangular region of a tcell screen.
type Renderer struct {
	itemStyle     tcell.Style
	selectedStyle tcell.Style
	filterStyle   tcell.Style
	emptyStyle    tcell.Style
}

// NewRenderer creates a renderer with default styles.
func NewRenderer() *Renderer {
	return &Renderer{
		itemStyle:     tcell.StyleDefault,
		selectedStyle: tcell.StyleDefault.Reverse(true),
		filterStyle:   tcell.StyleDefault.Bold(true),
		emptyStyle:    tcell.StyleDefault.Dim(true),
	}
}

// Draw renders the filter line and the heading list into the given region,
// keeping the selected row visible.
func (r *Renderer) Draw(screen tcell.Screen, x, y, width, height int, filterText string, list *List) {
	if width <= 0 || height <= 0 {
		return
	}

	r.drawLine(screen, x, y, width, "> "+filterText, r.filterStyle)

	nodes := list.Nodes()
	rows := height - 1
	if rows <= 0 {
		return
	}

	if len(nodes) == 0 {
		r.drawLine(screen, x, y+1, width, "no headings found", r.emptyStyle)
		for i := 1; i < rows; i++ {
			r.drawLine(screen, x, y+1+i, width, "", r.itemStyle)
		}
		return
	}

	offset := r.scrollOffset(nodes, rows)
	for i := 0; i < rows; i++ {
		idx := offset + i
		if idx >= len(nodes) {
			r.drawLine(screen, x, y+1+i, width, "", r.itemStyle)
			continue
		}
		node := nodes[idx]
		style := r.itemStyle
		if node.Selected {
			style = r.selectedStyle
		}
		indent := strings.Repeat("  ", node.Level-1)
		r.drawLine(screen, x, y+1+i, width, indent+node.Text, style)
	}
}

// scrollOffset keeps the selected node inside a window of the given size.
func (r *Renderer) scrollOffset(nodes []*Node, rows int) int {
	selected := 0
	for i, n := range nodes {
		if n.Selected {
			selected = i
			break
		}
	}
	if selected < rows {
		return 0
	}
	return selected - rows + 1
}

// drawLine writes one padded row of text.
func (r *Renderer) drawLine(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, ch := range text {
		if col >= width {
			break
		}
		screen.SetContent(x+col, y, ch, nil, style)
		col++
	}
	for ; col < width; col++ {
		screen.SetContent(x+col, y, ' ', nil, style)
	}
}
