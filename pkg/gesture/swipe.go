package gesture

import (
	"github.com/droidnav/droidnav/pkg/core"
)

// Direction of a simple screen swipe.
type Direction string

// Swipe directions.
const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// DefaultSwipeDurationMs is the duration of a directional swipe.
const DefaultSwipeDurationMs = 300

// Directional builds a swipe event across the screen center, one third of
// the smaller screen dimension in each direction.
func Directional(dir Direction, screenWidth, screenHeight int) (Event, error) {
	centerX, centerY := screenWidth/2, screenHeight/2
	distance := screenWidth / 3
	if screenHeight < screenWidth {
		distance = screenHeight / 3
	}

	ev := Event{Kind: KindSwipe, DurationMs: DefaultSwipeDurationMs}
	switch dir {
	case DirectionUp:
		ev.X, ev.Y = centerX, centerY+distance
		ev.X2, ev.Y2 = centerX, centerY-distance
	case DirectionDown:
		ev.X, ev.Y = centerX, centerY-distance
		ev.X2, ev.Y2 = centerX, centerY+distance
	case DirectionLeft:
		ev.X, ev.Y = centerX+distance, centerY
		ev.X2, ev.Y2 = centerX-distance, centerY
	case DirectionRight:
		ev.X, ev.Y = centerX-distance, centerY
		ev.X2, ev.Y2 = centerX+distance, centerY
	default:
		return Event{}, core.ErrInvalidConfig.WithMessagef("unknown swipe direction %q", dir)
	}
	return ev, nil
}
