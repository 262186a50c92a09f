package permalink

import (
	"math"
	"strconv"

	"github.com/fcoo/permalink/pkg/mapview"
	"github.com/fcoo/permalink/pkg/params"
	"github.com/fcoo/permalink/pkg/urlcodec"
)

// CenterZoom mirrors the viewport center and zoom into zoom<postfix>,
// lat<postfix> and lon<postfix>, and applies those parameters back onto the
// viewport when they change from outside.
type CenterZoom struct {
	control    *Control
	cancelMove func()
}

// NewCenterZoom creates the binding. New registers one automatically.
func NewCenterZoom() *CenterZoom {
	return &CenterZoom{}
}

// OnConstruct implements Extension.
func (cz *CenterZoom) OnConstruct(c *Control) {
	cz.control = c
	c.On(TopicUpdate, func(e Event) { cz.SyncIn(e.Params) })
}

// OnAttach implements Extension.
func (cz *CenterZoom) OnAttach(c *Control) {
	v := c.Viewport()
	if v == nil {
		return
	}
	if cz.cancelMove != nil {
		cz.cancelMove()
	}
	cz.cancelMove = v.OnMoveEnd(cz.SyncOut)
	cz.SyncOut()
}

// OnDetach implements Detacher. The viewport is no longer followed.
func (cz *CenterZoom) OnDetach(*Control) {
	if cz.cancelMove != nil {
		cz.cancelMove()
		cz.cancelMove = nil
	}
}

// Keys returns the parameter names for the control's postfix.
func (cz *CenterZoom) Keys() (zoom, lat, lon string) {
	postfix := ""
	if cz.control != nil {
		postfix = cz.control.cfg.Postfix
	}
	return "zoom" + postfix, "lat" + postfix, "lon" + postfix
}

// SyncOut writes the current view, rounded to one pixel, into the parameters.
func (cz *CenterZoom) SyncOut() {
	if cz.control == nil {
		return
	}
	v := cz.control.Viewport()
	if v == nil {
		return
	}

	point := mapview.RoundView(v, v.Center())
	zoomKey, latKey, lonKey := cz.Keys()
	cz.control.Merge(params.Params{
		zoomKey: formatNumber(v.Zoom()),
		latKey:  formatNumber(point.Lat),
		lonKey:  formatNumber(point.Lng),
	})
}

// SyncIn moves the viewport to the view described by p. Missing, non-numeric
// or out-of-range values keep the current ones. A coordinate is only applied
// when its rounded form differs from the rounded current coordinate, so a
// value produced by SyncOut never nudges the map. When the view stays put but
// p does not describe it (a rejected or missing value), the parameters are
// rewritten from the view. Before the control is attached SyncIn does nothing.
func (cz *CenterZoom) SyncIn(p params.Params) {
	if cz.control == nil || p == nil {
		return
	}
	v := cz.control.Viewport()
	if v == nil {
		return
	}

	bounds, ok := v.MaxBounds()
	if !ok {
		bounds = mapview.WorldBounds
	}
	minLat := math.Min(bounds.North(), bounds.South())
	maxLat := math.Max(bounds.North(), bounds.South())
	minLng := math.Min(bounds.West(), bounds.East())
	maxLng := math.Max(bounds.West(), bounds.East())

	zoomKey, latKey, lonKey := cz.Keys()
	center := v.Center()
	zoom := v.Zoom()

	centerRound := mapview.RoundView(v, center)
	candidateRound := mapview.RoundView(v, mapview.LatLng{
		Lat: cz.validate("lat", p[latKey], minLat, maxLat, center.Lat),
		Lng: cz.validate("lon", p[lonKey], minLng, maxLng, center.Lng),
	})

	next := center
	if candidateRound.Lat != centerRound.Lat {
		next.Lat = candidateRound.Lat
	}
	if candidateRound.Lng != centerRound.Lng {
		next.Lng = candidateRound.Lng
	}
	nextZoom := cz.validate("zoom", p[zoomKey], v.MinZoom(), v.MaxZoom(), zoom)

	if next == center && nextZoom == zoom {
		// Before OnAttach the first SyncOut is still to come.
		if cz.cancelMove != nil && !cz.describes(p, v) {
			cz.SyncOut()
		}
		return
	}
	v.SetView(next, nextZoom)
}

// describes reports whether p holds exactly what SyncOut would write for v.
func (cz *CenterZoom) describes(p params.Params, v mapview.Viewport) bool {
	point := mapview.RoundView(v, v.Center())
	zoomKey, latKey, lonKey := cz.Keys()
	for key, want := range map[string]string{
		zoomKey: formatNumber(v.Zoom()),
		latKey:  formatNumber(point.Lat),
		lonKey:  formatNumber(point.Lng),
	} {
		got, ok := p[key]
		if !ok || got == nil || urlcodec.FormatValue(got) != want {
			return false
		}
	}
	return true
}

// validate returns value as a number when it is numeric and within
// [min, max], otherwise fallback.
func (cz *CenterZoom) validate(field string, value any, min, max, fallback float64) float64 {
	if value == nil {
		return fallback
	}
	n, ok := urlcodec.ToNumber(value)
	if ok && n >= min && n <= max {
		return n
	}
	cz.control.metrics.rejectedValue(field)
	return fallback
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
