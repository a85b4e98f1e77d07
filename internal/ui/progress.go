package ui

import (
	"fmt"
	"strings"
)

// RenderProgressBar renders a bar of the given width for progress in [0, 1].
func (s *Styles) RenderProgressBar(progress float64, width int) string {
	if width <= 0 {
		return ""
	}
	switch {
	case progress < 0:
		progress = 0
	case progress > 1:
		progress = 1
	}
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}
	return s.BarFilled.Render(strings.Repeat("█", filled)) +
		s.BarEmpty.Render(strings.Repeat("░", width-filled))
}

// StepCounter renders "Step n of N".
func StepCounter(index, total int) string {
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("Step %d of %d", index+1, total)
}
