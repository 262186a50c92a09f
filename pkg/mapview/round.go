package mapview

import "math"

// Round truncates x to the coarsest power-of-ten precision at which one unit of
// the last kept digit is not smaller than perPixel (degrees per screen pixel).
// Truncation is a floor after scaling, so negative values move away from zero.
// A perPixel of zero, or one that is not finite, leaves x unchanged.
func Round(x, perPixel float64) float64 {
	if perPixel == 0 || math.IsNaN(perPixel) || math.IsInf(perPixel, 0) {
		return x
	}
	shift := 1.0
	for perPixel < 1 && perPixel > -1 {
		x *= 10
		perPixel *= 10
		shift *= 10
	}
	return math.Floor(x) / shift
}

// RoundLatLng rounds ll to the precision of one screen pixel for a viewport of
// the given pixel size currently showing bounds.
func RoundLatLng(ll LatLng, size Point, bounds Bounds) LatLng {
	if size.X == 0 || size.Y == 0 {
		return ll
	}
	return LatLng{
		Lat: Round(ll.Lat, (bounds.North()-bounds.South())/size.Y),
		Lng: Round(ll.Lng, (bounds.East()-bounds.West())/size.X),
	}
}

// RoundView rounds ll for the current state of v.
func RoundView(v Viewport, ll LatLng) LatLng {
	if v == nil {
		return ll
	}
	return RoundLatLng(ll, v.Size(), v.Bounds())
}
