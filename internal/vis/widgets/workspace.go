// Package widgets provides Gio UI widgets for the visualizer.
package widgets

import (
	"image"
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/widget/material"

	"github.com/elektrokombinacija/aerorefuel/internal/vis/interact"
	"github.com/elektrokombinacija/aerorefuel/internal/vis/state"
)

// Workspace is the main 2D visualization area: it renders every
// flattened flight's route and the current position of its bot, each
// flight in its own color from a cycling palette.
type Workspace struct {
	state  *state.State
	camera *interact.Camera
	fitted bool
}

// NewWorkspace creates a new workspace widget.
func NewWorkspace(st *state.State, camera *interact.Camera) *Workspace {
	return &Workspace{
		state:  st,
		camera: camera,
	}
}

// Layout renders the workspace.
func (w *Workspace) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	bounds := gtx.Constraints.Max
	defer clip.Rect(image.Rect(0, 0, bounds.X, bounds.Y)).Push(gtx.Ops).Pop()

	paint.Fill(gtx.Ops, color.NRGBA{R: 25, G: 28, B: 32, A: 255})

	if !w.fitted {
		minX, minY, maxX, maxY := routeBounds(w.state.Flights)
		w.camera.FitBounds(minX, minY, maxX, maxY, float32(bounds.X), float32(bounds.Y), 60)
		w.fitted = true
	}

	w.handlePointerEvents(gtx)

	drawGrid(gtx, w.camera, gridStep(w.camera), color.NRGBA{R: 40, G: 45, B: 50, A: 255})

	now := w.state.Playback.Current
	for i, f := range w.state.Flights {
		col := flightColor(i)
		drawFlightRoute(gtx, f, w.camera, col)
		if pos, ok := state.PositionAt(f, now); ok {
			x, y := w.camera.WorldToScreen(pos.X(), pos.Y())
			drawMarker(gtx, x, y, 6, col)
		}
	}

	return layout.Dimensions{Size: bounds}
}

func (w *Workspace) handlePointerEvents(gtx layout.Context) {
	area := clip.Rect(image.Rect(0, 0, gtx.Constraints.Max.X, gtx.Constraints.Max.Y)).Push(gtx.Ops)
	event.Op(gtx.Ops, w)
	area.Pop()

	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target: w,
			Kinds:  pointer.Press | pointer.Drag | pointer.Release | pointer.Scroll | pointer.Move,
		})
		if !ok {
			break
		}
		if pe, ok := ev.(pointer.Event); ok {
			w.camera.HandleEvent(gtx, pe)
		}
	}
}

// routeBounds returns the world-space bounding box of every leg across
// the flattened flights.
func routeBounds(flights []state.Flight) (minX, minY, maxX, maxY float64) {
	first := true
	grow := func(x, y float64) {
		if first {
			minX, maxX, minY, maxY = x, x, y, y
			first = false
			return
		}
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	for _, f := range flights {
		for i := 0; i < f.Plan.Len(); i++ {
			wp := f.Plan.At(i)
			if !wp.IsLeg() {
				continue
			}
			grow(wp.From().X(), wp.From().Y())
			grow(wp.To().X(), wp.To().Y())
		}
	}
	return minX, minY, maxX, maxY
}

// gridStep picks the power-of-ten world spacing that keeps grid lines
// at least ~60 screen pixels apart at the current zoom.
func gridStep(cam *interact.Camera) float64 {
	step := 1.0
	for step*float64(cam.Zoom) < 60 {
		step *= 10
	}
	return step
}

// drawGrid draws a faint reference grid in world space, spaced every
// `step` world units.
func drawGrid(gtx layout.Context, cam *interact.Camera, step float64, col color.NRGBA) {
	bounds := gtx.Constraints.Max
	if step <= 0 {
		return
	}
	minX, minY := cam.ScreenToWorld(0, 0)
	maxX, maxY := cam.ScreenToWorld(float32(bounds.X), float32(bounds.Y))

	startX := float64(int(minX/step)) * step
	for x := startX; x <= maxX; x += step {
		sx, _ := cam.WorldToScreen(x, 0)
		rect := image.Rect(int(sx), 0, int(sx)+1, bounds.Y)
		paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
	}
	startY := float64(int(minY/step)) * step
	for y := startY; y <= maxY; y += step {
		_, sy := cam.WorldToScreen(0, y)
		rect := image.Rect(0, int(sy), bounds.X, int(sy)+1)
		paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
	}
}

// drawFlightRoute draws every leg of f's flight plan as a line segment
// and every action waypoint with a back-filled position as a small dot.
func drawFlightRoute(gtx layout.Context, f state.Flight, cam *interact.Camera, col color.NRGBA) {
	plan := f.Plan
	for i := 0; i < plan.Len(); i++ {
		wp := plan.At(i)
		if wp.IsLeg() {
			x1, y1 := cam.WorldToScreen(wp.From().X(), wp.From().Y())
			x2, y2 := cam.WorldToScreen(wp.To().X(), wp.To().Y())
			drawLine(gtx, x1, y1, x2, y2, col, 2)
			continue
		}
		if pos, ok := wp.Position(); ok {
			x, y := cam.WorldToScreen(pos.X(), pos.Y())
			drawMarker(gtx, x, y, 3, col)
		}
	}
}

// drawLine approximates a line segment by stamping small filled squares
// at one-pixel steps along it, since the workspace avoids a full
// path/stroke dependency for simple routes.
func drawLine(gtx layout.Context, x1, y1, x2, y2 float32, col color.NRGBA, width int) {
	dx := x2 - x1
	dy := y2 - y1
	steps := int(maxF(absF(dx), absF(dy)))
	if steps < 1 {
		steps = 1
	}
	for s := 0; s <= steps; s++ {
		t := float32(s) / float32(steps)
		x := x1 + dx*t
		y := y1 + dy*t
		rect := image.Rect(int(x)-width/2, int(y)-width/2, int(x)+width/2+1, int(y)+width/2+1)
		paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
	}
}

func drawMarker(gtx layout.Context, x, y float32, radius int, col color.NRGBA) {
	rect := image.Rect(int(x)-radius, int(y)-radius, int(x)+radius, int(y)+radius)
	paint.FillShape(gtx.Ops, col, clip.Rect(rect).Op())
}

var flightPalette = []color.NRGBA{
	{R: 100, G: 180, B: 255, A: 255},
	{R: 255, G: 170, B: 80, A: 255},
	{R: 140, G: 220, B: 140, A: 255},
	{R: 230, G: 120, B: 200, A: 255},
	{R: 230, G: 210, B: 90, A: 255},
	{R: 150, G: 150, B: 255, A: 255},
}

func flightColor(i int) color.NRGBA {
	return flightPalette[i%len(flightPalette)]
}

func absF(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func maxF(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
