// Command mixdown probes a video's audio streams and mixes a selection of
// them, each at its own volume, into a single track while the video stream is
// copied untouched. It also batch-processes directory trees, keeps a SQLite
// history of batch runs, and reports tool and staging health.
package main
