// Package stats composes API lookups into channel snapshots.
//
// Aggregator.GetStats never fails: an unknown user yields DefaultSnapshot and a
// failed lookup only degrades its own field. Poller keeps a snapshot fresh for
// long-running consumers.
package stats
