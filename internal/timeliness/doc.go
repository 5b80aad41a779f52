// Package timeliness builds the pipeline timeliness report: for every job of a
// report and one report date it selects the current run and the runs to
// compare it with, classifies SLA misses, averages past durations and landing
// times, and rolls jobs up into segments.
package timeliness
