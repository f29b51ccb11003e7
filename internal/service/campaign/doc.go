// Package campaign implements campaign lifecycle management and scoring runs.
//
// A run resolves the campaign's criteria to a target set, scores each target
// through the oracle on a bounded worker pool, persists one outcome per
// scored target and writes the campaign counters once at the end. Recompute
// rebuilds the counters from stored outcomes without calling the oracle.
// Runs and recomputes of one campaign are serialised by a named lock.
//
// Repository implementations live in repository/postgres/ and repository/memory/.
package campaign
