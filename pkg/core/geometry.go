// Package core holds shared types: bounds geometry, structured errors and
// the result envelope returned to callers.
package core

import "fmt"

// Bounds represents element position and size in screen pixels.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds.
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Contains checks if a point is within the bounds.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Area returns the pixel area covered by the bounds.
func (b Bounds) Area() int {
	return b.Width * b.Height
}

// Empty reports whether the bounds cover no pixels. Malformed bounds
// strings in a UI dump degrade to empty bounds instead of a parse failure.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// String returns the Android dump representation [x1,y1][x2,y2].
func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d][%d,%d]", b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}
