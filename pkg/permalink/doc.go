// Package permalink keeps a map's view, and any state extensions register,
// in sync with a shareable URL fragment and optionally local storage.
//
// A Control owns a flat parameter map. Extensions contribute their keys with
// Merge and react to the "update" notification when the URL changes from
// outside (back/forward, a pasted link, another process sharing storage).
// The built-in CenterZoom extension mirrors center and zoom as zoom, lat and
// lon, each with an optional postfix so several maps can share one URL.
//
// # Lifecycle
//
//	loc := urlcodec.NewLocation("/#zoom=6&lat=55.676&lon=12.568")
//	ctl := permalink.New(loc, permalink.WithPostfix("2"))
//	container := ctl.OnAdd(m) // m is the mapview.Viewport hosting the control
//
// New loads the parameters and runs each extension's OnConstruct. OnAdd
// writes the parameters back, fires "update" so extensions apply them,
// subscribes to hash changes, then fires "add" (which runs OnAttach).
//
// # Threading
//
// A Control is not safe for concurrent use. All calls, including the
// callbacks it registers on the location, the store and the viewport, must
// come from one goroutine or be serialized by the caller.
package permalink
