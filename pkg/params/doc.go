// Package params holds the flat parameter map that a permalink mirrors into the
// URL fragment and local storage.
//
// Keys are flat and namespaced by convention: each feature prefixes or suffixes
// its own keys (the built-in center/zoom binding writes "zoom", "lat" and "lon"
// plus an optional postfix). Values are primitives (string, number, bool) or
// JSON-decoded structures. A nil value in a partial update means "delete".
//
// # Usage
//
//	p := params.New()
//	p.Merge(params.Params{"layer": "wind", "zoom": "6"})
//	p.Merge(params.Params{"layer": nil}) // removes "layer"
//
//	if params.Equal(p, other) {
//	    return // nothing changed
//	}
package params
