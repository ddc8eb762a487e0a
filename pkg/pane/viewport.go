package pane

import "github.com/City-Bureau/seerchat/pkg/chat"

// Metrics describes the scroll container. Units are whatever the view uses
// (pixels in a browser, lines in a terminal).
type Metrics struct {
	ScrollTop    int
	ScrollHeight int
	ClientHeight int
}

// AtBottom reports whether the viewport is within tolerance of the content bottom
func (m Metrics) AtBottom(tolerance int) bool {
	return m.ScrollHeight-m.ScrollTop-m.ClientHeight < tolerance
}

// NearTop reports whether the viewport is within threshold of the content top
func (m Metrics) NearTop(threshold int) bool {
	return m.ScrollTop < threshold
}

// Viewport is the scroll container the pane renders into. Layout must update
// ScrollHeight synchronously so the pane can measure right after it.
type Viewport interface {
	Metrics() Metrics
	Layout(messages []chat.Message)
	ScrollTo(top int)
}

func scrollToBottom(v Viewport) {
	m := v.Metrics()
	top := m.ScrollHeight - m.ClientHeight
	if top < 0 {
		top = 0
	}
	v.ScrollTo(top)
}
