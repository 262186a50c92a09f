// Package mapview describes the interactive map a permalink control is attached
// to, plus the rounding helper that keeps coordinates in the URL stable.
//
// Viewport is the host widget contract: center and zoom, pixel size, visible
// bounds, zoom range, optional max bounds, move-end notifications and control
// container creation. Map is a headless Viewport used by the server and tests.
package mapview
