// Package caption builds the text burned into each frame and draws it.
//
// Text comes from the photo's sidecar (photo-taken time, else creation time,
// plus coordinates when present) and falls back to the date encoded in the
// filename. The Renderer draws outlined text at one of six anchors using a
// TrueType/OpenType face, or the built-in Go font when none is configured.
package caption
