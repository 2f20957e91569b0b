// Package core provides the action model shared by the dispatcher,
// the step loop and the platform drivers.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Rect is a pixel bounding box in screen coordinates.
// Well-formed rects satisfy Right >= Left and Bottom >= Top; ParseBounds
// does not enforce this, it only validates the wire shape.
type Rect struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Right  int `json:"right"`
	Bottom int `json:"bottom"`
}

// Center returns the center point of the rect. Division is real, not
// integer: a 11x9 rect centers at (5.5, 4.5). Rounding is left to the
// backend that consumes the point.
func (r Rect) Center() (float64, float64) {
	x := float64(r.Left) + float64(r.Right-r.Left)/2
	y := float64(r.Top) + float64(r.Bottom-r.Top)/2
	return x, y
}

// ParseBounds parses a bounds string of the exact form "[L,T][R,B]" with
// integer coordinates and no whitespace. Anything else fails with
// ErrMalformedBounds; a corrupted locator must surface as a parse failure,
// never as a default rect.
func ParseBounds(s string) (Rect, error) {
	malformed := func() (Rect, error) {
		return Rect{}, ErrMalformedBounds.WithMessage(fmt.Sprintf("malformed bounds %q, want \"[L,T][R,B]\"", s))
	}

	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return malformed()
	}

	pairs := strings.Split(s[1:len(s)-1], "][")
	if len(pairs) != 2 {
		return malformed()
	}

	var coords [4]int
	for i, pair := range pairs {
		parts := strings.Split(pair, ",")
		if len(parts) != 2 {
			return malformed()
		}
		for j, part := range parts {
			n, err := strconv.Atoi(part)
			if err != nil {
				return malformed()
			}
			coords[i*2+j] = n
		}
	}

	return Rect{Left: coords[0], Top: coords[1], Right: coords[2], Bottom: coords[3]}, nil
}

// FormatBounds renders a rect in the wire format accepted by ParseBounds.
func FormatBounds(r Rect) string {
	return fmt.Sprintf("[%d,%d][%d,%d]", r.Left, r.Top, r.Right, r.Bottom)
}
