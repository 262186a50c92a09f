package mapview

import "math"

// LatLng is a geographic position in degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Point is a size or offset in screen pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Bounds is a rectangle given by its south-west and north-east corners.
type Bounds struct {
	SouthWest LatLng `json:"southWest"`
	NorthEast LatLng `json:"northEast"`
}

// NewBounds builds bounds from two opposite corners in any order.
func NewBounds(a, b LatLng) Bounds {
	return Bounds{
		SouthWest: LatLng{Lat: math.Min(a.Lat, b.Lat), Lng: math.Min(a.Lng, b.Lng)},
		NorthEast: LatLng{Lat: math.Max(a.Lat, b.Lat), Lng: math.Max(a.Lng, b.Lng)},
	}
}

// North returns the northern latitude.
func (b Bounds) North() float64 { return b.NorthEast.Lat }

// South returns the southern latitude.
func (b Bounds) South() float64 { return b.SouthWest.Lat }

// East returns the eastern longitude.
func (b Bounds) East() float64 { return b.NorthEast.Lng }

// West returns the western longitude.
func (b Bounds) West() float64 { return b.SouthWest.Lng }

// Contains reports whether ll lies inside b, edges included.
func (b Bounds) Contains(ll LatLng) bool {
	return ll.Lat >= b.South() && ll.Lat <= b.North() &&
		ll.Lng >= b.West() && ll.Lng <= b.East()
}

// WorldBounds is used when a map has no max bounds configured. Longitude is
// effectively unbounded so wrapped positions stay valid.
var WorldBounds = NewBounds(LatLng{Lat: -90, Lng: -999999}, LatLng{Lat: 90, Lng: 999999})
