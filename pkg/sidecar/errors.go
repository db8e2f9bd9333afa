// Package sidecar reads and rewrites the transient companion files that
// live alongside a music database but outside the hunk stream itself: the
// play-counts delta file (and its Shuffle-era iTunesStats variant) and the
// on-the-go playlist files (spec §6 "Sidecar files").
package sidecar

import "errors"

// ErrNotPlayCounts is returned when a file claiming to be a play-counts
// sidecar is missing its mhdp header in either byte order.
var ErrNotPlayCounts = errors.New("sidecar: not a Play Counts file (missing mhdp header)")

// ErrNotOTG is returned when a file claiming to be an on-the-go playlist
// is missing its mhpo header in either byte order.
var ErrNotOTG = errors.New("sidecar: not an OTG playlist file (missing mhpo header)")
