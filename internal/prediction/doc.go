// Package prediction estimates when a job will land for a given execution
// instant, from the upstream lineage returned by the query service.
//
// The work is split in two steps. BuildTree materialises an immutable
// dependency tree: one Node per entity with its duration budget and, when a
// run exists for the execution instant, that run's start and end. Predict then
// folds over the tree with an explicit post-order stack, keeping the visited
// set and computed landing times outside the tree so a node reachable from
// several downstreams is evaluated once and never mutated.
//
// A prediction is advisory: Estimate absorbs every failure, including panics
// raised by malformed input, into an unestimable Result.
package prediction
