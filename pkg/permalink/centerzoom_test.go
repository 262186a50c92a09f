package permalink

import (
	"math"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fcoo/permalink/pkg/mapview"
	"github.com/fcoo/permalink/pkg/params"
	"github.com/fcoo/permalink/pkg/urlcodec"
)

func centerZoomOf(t *testing.T, c *Control) *CenterZoom {
	t.Helper()
	cz, ok := c.extensions[0].(*CenterZoom)
	if !ok {
		t.Fatalf("first extension is %T, want *CenterZoom", c.extensions[0])
	}
	return cz
}

func TestSyncOutRoundsToPixel(t *testing.T) {
	loc := urlcodec.NewLocation("/map")
	c := New(loc)
	c.OnAdd(newTestMap())

	p := loc.ParseHash()
	want := map[string]string{"zoom": "8", "lat": "55.676", "lon": "12.568"}
	for k, v := range want {
		if p[k] != v {
			t.Errorf("%s = %v, want %s", k, p[k], v)
		}
	}
}

func TestSyncInKeepsUnroundedCenter(t *testing.T) {
	m := newTestMap()
	c := New(urlcodec.NewLocation("/map"))
	c.OnAdd(m)

	moves := 0
	m.OnMoveEnd(func() { moves++ })

	centerZoomOf(t, c).SyncIn(c.Params())

	if got := m.Center(); got.Lat != 55.6761 || got.Lng != 12.5683 {
		t.Errorf("center = %+v, want unchanged (55.6761, 12.5683)", got)
	}
	if moves != 0 {
		t.Errorf("SyncIn moved the map %d times", moves)
	}
}

func TestSyncOutPostfix(t *testing.T) {
	loc := urlcodec.NewLocation("/map#zoom=3&lat=1&lon=2")
	c := New(loc, WithPostfix("2"))
	c.OnAdd(newTestMap())

	p := loc.ParseHash()
	for _, k := range []string{"zoom2", "lat2", "lon2"} {
		if _, ok := p[k]; !ok {
			t.Errorf("%s missing from %v", k, p)
		}
	}
	if p["zoom"] != "3" || p["lat"] != "1" || p["lon"] != "2" {
		t.Errorf("unsuffixed keys touched: %v", p)
	}

	zoom, lat, lon := centerZoomOf(t, c).Keys()
	if zoom != "zoom2" || lat != "lat2" || lon != "lon2" {
		t.Errorf("Keys() = %s, %s, %s", zoom, lat, lon)
	}
}

func TestSyncInMaxBounds(t *testing.T) {
	limit := mapview.NewBounds(mapview.LatLng{Lat: -60, Lng: -180}, mapview.LatLng{Lat: 60, Lng: 180})
	opts := mapview.DefaultMapOptions()
	opts.Zoom = 4
	opts.MaxBounds = &limit
	m := mapview.NewMap(opts)

	reg := prometheus.NewRegistry()
	c := New(urlcodec.NewLocation("/map"), WithMetrics(NewMetrics(WithRegistry(reg))))
	c.OnAdd(m)
	cz := centerZoomOf(t, c)

	cz.SyncIn(params.Params{"lat": 75.0, "lon": 0.0, "zoom": 4.0})
	if lat := m.Center().Lat; lat != 0 {
		t.Errorf("lat = %v, want 75 rejected", lat)
	}
	if got := counterValue(t, reg, "permalink_rejected_values_total", "field", "lat"); got != 1 {
		t.Errorf("rejected lat = %v, want 1", got)
	}

	cz.SyncIn(params.Params{"lat": 45.0, "lon": 0.0, "zoom": 4.0})
	if lat := m.Center().Lat; lat != 45 {
		t.Errorf("lat = %v, want 45 accepted", lat)
	}
}

func TestSyncInZoomRange(t *testing.T) {
	opts := mapview.DefaultMapOptions()
	opts.Zoom = 5
	opts.MinZoom = 3
	opts.MaxZoom = 10
	m := mapview.NewMap(opts)

	c := New(urlcodec.NewLocation("/map"))
	c.OnAdd(m)
	cz := centerZoomOf(t, c)

	for _, zoom := range []any{"11", "2", 1e9} {
		cz.SyncIn(params.Params{"zoom": zoom})
		if got := m.Zoom(); got != 5 {
			t.Errorf("zoom %v: Zoom() = %v, want 5 kept", zoom, got)
		}
	}

	cz.SyncIn(params.Params{"zoom": "7"})
	if got := m.Zoom(); got != 7 {
		t.Errorf("Zoom() = %v, want 7", got)
	}
}

func TestSyncInIgnoresNonNumeric(t *testing.T) {
	m := newTestMap()
	c := New(urlcodec.NewLocation("/map"))
	c.OnAdd(m)

	before := m.Center()
	centerZoomOf(t, c).SyncIn(params.Params{"lat": "north", "lon": true, "zoom": "NaN"})
	if m.Center() != before || m.Zoom() != 8 {
		t.Errorf("view changed to %+v @ %v", m.Center(), m.Zoom())
	}
}

func TestSyncInBeforeAttach(t *testing.T) {
	c := New(urlcodec.NewLocation("/map"))
	// no viewport yet
	centerZoomOf(t, c).SyncIn(params.Params{"lat": "10"})
	NewCenterZoom().SyncIn(params.Params{"lat": "10"})
	NewCenterZoom().SyncOut()
}

func TestHashChangeMovesMap(t *testing.T) {
	m := newTestMap()
	loc := urlcodec.NewLocation("/map")
	c := New(loc)
	c.OnAdd(m)

	loc.SetHash("zoom=6&lat=40&lon=-3.5")
	if got := m.Center(); got.Lat != 40 || got.Lng != -3.5 {
		t.Errorf("center = %+v, want (40, -3.5)", got)
	}
	if got := m.Zoom(); got != 6 {
		t.Errorf("zoom = %v, want 6", got)
	}

	if !loc.Back() {
		t.Fatal("Back() = false")
	}
	// applied at the precision of the zoom 6 view it replaces
	tolerance := mapview.DegreesPerPixel(6)
	if got := m.Center(); math.Abs(got.Lat-55.676) > tolerance || math.Abs(got.Lng-12.568) > tolerance {
		t.Errorf("center after back = %+v, want near (55.676, 12.568)", got)
	}
	if got := m.Zoom(); got != 8 {
		t.Errorf("zoom after back = %v, want 8", got)
	}
}

func TestMapMoveUpdatesHash(t *testing.T) {
	m := newTestMap()
	loc := urlcodec.NewLocation("/map?lang=da")
	c := New(loc)
	c.OnAdd(m)

	m.SetView(mapview.LatLng{Lat: -33.8688, Lng: 151.2093}, 10)

	p := loc.ParseHash()
	if p["zoom"] != "10" {
		t.Errorf("zoom = %v", p["zoom"])
	}
	// zoom 10 resolves 0.001373 degrees per pixel: 3 decimals, floored
	if p["lat"] != "-33.869" || p["lon"] != "151.209" {
		t.Errorf("lat, lon = %v, %v", p["lat"], p["lon"])
	}
	if got := loc.Href(); !strings.HasPrefix(got, "/map?lang=da#") {
		t.Errorf("Href() = %q lost the query", got)
	}
}

func TestRejectedValuesAreRewritten(t *testing.T) {
	limit := mapview.NewBounds(mapview.LatLng{Lat: -60, Lng: -180}, mapview.LatLng{Lat: 60, Lng: 180})

	tests := []struct {
		name string
		hash string
		want map[string]string
	}{
		{
			name: "zoom above max",
			hash: "zoom=25&lat=0&lon=0",
			want: map[string]string{"zoom": "5", "lat": "0", "lon": "0"},
		},
		{
			name: "lat outside bounds",
			hash: "zoom=5&lat=75&lon=0",
			want: map[string]string{"zoom": "5", "lat": "0", "lon": "0"},
		},
		{
			name: "view keys missing",
			hash: "layer=sst",
			want: map[string]string{"zoom": "5", "lat": "0", "lon": "0", "layer": "sst"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := mapview.DefaultMapOptions()
			opts.Zoom = 5
			opts.MaxZoom = 10
			opts.MaxBounds = &limit
			m := mapview.NewMap(opts)

			loc := urlcodec.NewLocation("/map")
			c := New(loc)
			c.OnAdd(m)

			loc.SetHash(tt.hash)

			if m.Zoom() != 5 || m.Center() != (mapview.LatLng{}) {
				t.Errorf("view moved to %+v @ %v", m.Center(), m.Zoom())
			}
			p := loc.ParseHash()
			for k, v := range tt.want {
				if p[k] != v {
					t.Errorf("%s = %v, want %s (hash %q)", k, p[k], v, loc.Hash())
				}
			}
		})
	}
}
