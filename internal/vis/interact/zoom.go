// Package interact handles user interactions like pan, zoom, and selection.
package interact

import (
	"gioui.org/io/pointer"
	"gioui.org/layout"
)

// Flight routes span tens of kilometers of world units while tower
// separations matter down to meters, so the zoom range is much wider
// than a grid viewer's.
const (
	minZoom = 1e-5
	maxZoom = 100
)

// Camera manages the world-to-screen view transform (pan and zoom).
type Camera struct {
	// View transform
	OffsetX float32 // Pan offset in screen pixels
	OffsetY float32
	Zoom    float32 // Screen pixels per world unit

	// Interaction state
	dragging bool
	lastX    float32
	lastY    float32
}

// NewCamera creates a camera with a neutral transform; callers fit it
// to the schedule's extent via FitBounds once a screen size is known.
func NewCamera() *Camera {
	return &Camera{
		OffsetX: 100,
		OffsetY: 100,
		Zoom:    0.01,
	}
}

// Reset restores the default transform.
func (c *Camera) Reset() {
	c.OffsetX = 100
	c.OffsetY = 100
	c.Zoom = 0.01
}

func clampZoom(z float32) float32 {
	if z < minZoom {
		return minZoom
	}
	if z > maxZoom {
		return maxZoom
	}
	return z
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(worldX, worldY float64) (screenX, screenY float32) {
	screenX = float32(worldX)*c.Zoom + c.OffsetX
	screenY = float32(worldY)*c.Zoom + c.OffsetY
	return
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(screenX, screenY float32) (worldX, worldY float64) {
	worldX = float64((screenX - c.OffsetX) / c.Zoom)
	worldY = float64((screenY - c.OffsetY) / c.Zoom)
	return
}

// HandleEvent processes pointer events: secondary/tertiary-button drag
// pans, scroll zooms about the cursor.
func (c *Camera) HandleEvent(gtx layout.Context, ev pointer.Event) {
	switch ev.Kind {
	case pointer.Press:
		if ev.Buttons.Contain(pointer.ButtonSecondary) || ev.Buttons.Contain(pointer.ButtonTertiary) {
			c.dragging = true
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Drag:
		if c.dragging {
			c.OffsetX += ev.Position.X - c.lastX
			c.OffsetY += ev.Position.Y - c.lastY
		}
		c.lastX = ev.Position.X
		c.lastY = ev.Position.Y

	case pointer.Release:
		c.dragging = false

	case pointer.Scroll:
		if ev.Scroll.Y == 0 {
			return
		}
		factor := float32(1.1)
		if ev.Scroll.Y > 0 {
			factor = 1 / factor
		}
		c.ZoomBy(factor, ev.Position.X, ev.Position.Y)
	}
}

// Pan pans the camera by the given screen delta.
func (c *Camera) Pan(dx, dy float32) {
	c.OffsetX += dx
	c.OffsetY += dy
}

// ZoomBy zooms by a factor, keeping the world point under the given
// screen point fixed.
func (c *Camera) ZoomBy(factor float32, centerX, centerY float32) {
	worldX, worldY := c.ScreenToWorld(centerX, centerY)
	c.Zoom = clampZoom(c.Zoom * factor)
	newScreenX, newScreenY := c.WorldToScreen(worldX, worldY)
	c.OffsetX += centerX - newScreenX
	c.OffsetY += centerY - newScreenY
}

// CenterOn centers the camera on a world position.
func (c *Camera) CenterOn(worldX, worldY float64, screenWidth, screenHeight float32) {
	c.OffsetX = screenWidth/2 - float32(worldX)*c.Zoom
	c.OffsetY = screenHeight/2 - float32(worldY)*c.Zoom
}

// FitBounds adjusts the camera so the given world bounds fill the
// screen with a pixel margin, used to frame a whole schedule's routes
// on the first frame.
func (c *Camera) FitBounds(minX, minY, maxX, maxY float64, screenWidth, screenHeight float32, margin float32) {
	worldW := maxX - minX
	worldH := maxY - minY
	if worldW <= 0 {
		worldW = 1
	}
	if worldH <= 0 {
		worldH = 1
	}

	availW := screenWidth - 2*margin
	availH := screenHeight - 2*margin

	zoomX := availW / float32(worldW)
	zoomY := availH / float32(worldH)
	zoom := zoomX
	if zoomY < zoomX {
		zoom = zoomY
	}
	c.Zoom = clampZoom(zoom)

	c.CenterOn((minX+maxX)/2, (minY+maxY)/2, screenWidth, screenHeight)
}
