// Package timestamp assigns a capture time to every photo.
//
// Sources are tried in a fixed priority order: well-known filename patterns,
// then the JSON sidecar's creationTime, then filesystem times. Resolve never
// fails; the weakest tier falls back to the current time and logs a warning so
// operators can see which photos were placed by guesswork.
package timestamp
