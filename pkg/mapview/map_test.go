package mapview

import (
	"math"
	"testing"
)

func TestMapSetView(t *testing.T) {
	m := NewMap(MapOptions{
		Center:  LatLng{Lat: 10, Lng: 10},
		Zoom:    5,
		MinZoom: 2,
		MaxZoom: 10,
		Size:    Point{X: 800, Y: 600},
	})

	moves := 0
	cancel := m.OnMoveEnd(func() { moves++ })

	m.SetView(LatLng{Lat: 20, Lng: 30}, 12)
	if got := m.Zoom(); got != 10 {
		t.Errorf("Zoom() = %v, want clamped 10", got)
	}
	if got := m.Center(); got != (LatLng{Lat: 20, Lng: 30}) {
		t.Errorf("Center() = %+v", got)
	}
	if moves != 1 {
		t.Errorf("moveend fired %d times, want 1", moves)
	}

	cancel()
	m.PanTo(LatLng{Lat: 0, Lng: 0})
	if moves != 1 {
		t.Errorf("cancelled listener fired, moves = %d", moves)
	}
}

func TestMapMaxBounds(t *testing.T) {
	limit := NewBounds(LatLng{Lat: 60, Lng: 180}, LatLng{Lat: -60, Lng: -180})
	m := NewMap(MapOptions{Zoom: 3, MaxZoom: 18, Size: Point{X: 256, Y: 256}, MaxBounds: &limit})

	got, ok := m.MaxBounds()
	if !ok || got.North() != 60 || got.South() != -60 {
		t.Fatalf("MaxBounds() = %+v, %v", got, ok)
	}

	m.SetView(LatLng{Lat: 75, Lng: 0}, 3)
	if lat := m.Center().Lat; lat != 60 {
		t.Errorf("center lat = %v, want clamped 60", lat)
	}
}

func TestMapBounds(t *testing.T) {
	m := NewMap(MapOptions{Zoom: 0, MaxZoom: 18, Size: Point{X: 256, Y: 128}})
	b := m.Bounds()
	// zoom 0: one 256px tile covers 360 degrees
	if math.Abs(b.East()-b.West()-360) > 1e-9 {
		t.Errorf("width = %v degrees, want 360", b.East()-b.West())
	}
	if math.Abs(b.North()-b.South()-180) > 1e-9 {
		t.Errorf("height = %v degrees, want 180", b.North()-b.South())
	}
	if !b.Contains(LatLng{}) {
		t.Error("bounds should contain the center")
	}
}

func TestMapContainer(t *testing.T) {
	m := NewMap(DefaultMapOptions())
	c := m.CreateContainer("leaflet-control-permalink")
	el, ok := c.(*Element)
	if !ok {
		t.Fatalf("container type %T, want *Element", c)
	}
	if !el.PropagatesClicks() {
		t.Error("new container should propagate clicks")
	}
	el.DisableClickPropagation()
	if el.PropagatesClicks() {
		t.Error("clicks should not propagate after DisableClickPropagation")
	}
	if len(m.Containers()) != 1 {
		t.Errorf("Containers() = %d, want 1", len(m.Containers()))
	}
}
