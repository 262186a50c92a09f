package mapview

// Viewport is the host map widget a permalink control reads and drives.
// Every value is read fresh on each call.
type Viewport interface {
	Center() LatLng
	Zoom() float64
	SetView(center LatLng, zoom float64)

	// Size is the viewport size in pixels.
	Size() Point

	// Bounds is the currently visible area.
	Bounds() Bounds

	MinZoom() float64
	MaxZoom() float64

	// MaxBounds returns the configured panning limit, if any.
	MaxBounds() (Bounds, bool)

	// OnMoveEnd subscribes fn to the end of every pan or zoom.
	OnMoveEnd(fn func()) (cancel func())

	// CreateContainer creates the DOM element hosting a control.
	CreateContainer(className string) Container
}

// Container is the element a control renders into.
type Container interface {
	// DisableClickPropagation stops clicks inside the container from reaching
	// the map below.
	DisableClickPropagation()
}
