// Package channel implements spec.md §4.5's Cross-Job Message Channel:
// named rendezvous objects connecting scripted jobs with host-side
// callbacks, each carrying one one-slot buffer per direction.
package channel
