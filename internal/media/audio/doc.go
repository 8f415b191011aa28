// Package audio catalogs the audio streams of a media container.
//
// This package depends only on internal/media/ffprobe and could be extracted
// as a standalone library alongside ffprobe.
//
// FromProbe flattens an ffprobe result into a slice of StreamInfo values,
// one per audio stream, indexed 0..n-1 in container order. Those indices
// are the ones ffmpeg's a:N stream selectors address, which is what the
// mixing layer builds its volume maps against. Missing metadata never
// fails a catalog: codec falls back to "unknown", numeric fields to zero.
//
// Key types:
//   - StreamInfo: one audio stream with its display label
//
// Primary entry point:
//   - FromProbe: catalogs a probe result's audio streams
package audio
