package mapview

import (
	"math"
	"sort"
	"sync"
)

// TileSize is the pixel width of one world tile at zoom 0.
const TileSize = 256

// MapOptions configures a headless Map.
type MapOptions struct {
	Center    LatLng
	Zoom      float64
	MinZoom   float64
	MaxZoom   float64
	Size      Point
	MaxBounds *Bounds
}

// DefaultMapOptions returns a 1024x768 map over the whole world at zoom 2.
func DefaultMapOptions() MapOptions {
	return MapOptions{
		Zoom:    2,
		MinZoom: 0,
		MaxZoom: 18,
		Size:    Point{X: 1024, Y: 768},
	}
}

// Map is a headless Viewport with a plate carrée projection: every pixel
// covers 360/(TileSize*2^zoom) degrees on both axes. It is safe for
// concurrent use; move-end subscribers run outside the lock.
type Map struct {
	mu        sync.Mutex
	center    LatLng
	zoom      float64
	minZoom   float64
	maxZoom   float64
	size      Point
	maxBounds *Bounds

	listeners  map[int]func()
	nextID     int
	containers []*Element
}

// NewMap creates a headless map.
func NewMap(opts MapOptions) *Map {
	if opts.MaxZoom < opts.MinZoom {
		opts.MaxZoom = opts.MinZoom
	}
	m := &Map{
		minZoom:   opts.MinZoom,
		maxZoom:   opts.MaxZoom,
		size:      opts.Size,
		maxBounds: opts.MaxBounds,
		listeners: make(map[int]func()),
	}
	m.center, m.zoom = m.limit(opts.Center, opts.Zoom)
	return m
}

// Center implements Viewport.
func (m *Map) Center() LatLng {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.center
}

// Zoom implements Viewport.
func (m *Map) Zoom() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zoom
}

// SetView implements Viewport. The zoom is clamped to the zoom range and the
// center to the max bounds; move-end fires on every call.
func (m *Map) SetView(center LatLng, zoom float64) {
	m.mu.Lock()
	m.center, m.zoom = m.limit(center, zoom)
	m.mu.Unlock()

	m.fireMoveEnd()
}

// PanTo moves the center keeping the zoom.
func (m *Map) PanTo(center LatLng) {
	m.SetView(center, m.Zoom())
}

// Size implements Viewport.
func (m *Map) Size() Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.size
}

// Resize changes the pixel size of the viewport.
func (m *Map) Resize(size Point) {
	m.mu.Lock()
	m.size = size
	m.mu.Unlock()

	m.fireMoveEnd()
}

// Bounds implements Viewport.
func (m *Map) Bounds() Bounds {
	m.mu.Lock()
	defer m.mu.Unlock()

	perPixel := DegreesPerPixel(m.zoom)
	halfW := m.size.X / 2 * perPixel
	halfH := m.size.Y / 2 * perPixel
	return Bounds{
		SouthWest: LatLng{Lat: m.center.Lat - halfH, Lng: m.center.Lng - halfW},
		NorthEast: LatLng{Lat: m.center.Lat + halfH, Lng: m.center.Lng + halfW},
	}
}

// MinZoom implements Viewport.
func (m *Map) MinZoom() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minZoom
}

// MaxZoom implements Viewport.
func (m *Map) MaxZoom() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxZoom
}

// MaxBounds implements Viewport.
func (m *Map) MaxBounds() (Bounds, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.maxBounds == nil {
		return Bounds{}, false
	}
	return *m.maxBounds, true
}

// OnMoveEnd implements Viewport.
func (m *Map) OnMoveEnd(fn func()) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

// CreateContainer implements Viewport.
func (m *Map) CreateContainer(className string) Container {
	el := &Element{ClassName: className, clickPropagation: true}

	m.mu.Lock()
	m.containers = append(m.containers, el)
	m.mu.Unlock()

	return el
}

// Containers returns the control containers created so far.
func (m *Map) Containers() []*Element {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*Element(nil), m.containers...)
}

// limit clamps center and zoom. Callers hold mu or own m exclusively.
func (m *Map) limit(center LatLng, zoom float64) (LatLng, float64) {
	zoom = math.Max(m.minZoom, math.Min(m.maxZoom, zoom))
	if m.maxBounds != nil {
		b := *m.maxBounds
		center.Lat = math.Max(b.South(), math.Min(b.North(), center.Lat))
		center.Lng = math.Max(b.West(), math.Min(b.East(), center.Lng))
	}
	return center, zoom
}

func (m *Map) fireMoveEnd() {
	m.mu.Lock()
	ids := make([]int, 0, len(m.listeners))
	for id := range m.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, m.listeners[id])
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// DegreesPerPixel returns the plate carrée resolution at zoom.
func DegreesPerPixel(zoom float64) float64 {
	return 360 / (TileSize * math.Pow(2, zoom))
}

// Element is the container Map hands out to controls.
type Element struct {
	ClassName string

	mu               sync.Mutex
	clickPropagation bool
}

// DisableClickPropagation implements Container.
func (e *Element) DisableClickPropagation() {
	e.mu.Lock()
	e.clickPropagation = false
	e.mu.Unlock()
}

// PropagatesClicks reports whether clicks still reach the map.
func (e *Element) PropagatesClicks() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clickPropagation
}
