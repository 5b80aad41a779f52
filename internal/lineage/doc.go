// Package lineage is the graph layer of the timeliness engine. It turns the
// flat list of entity records returned by the lineage query service into a
// forward-edge graph and derives everything the timeliness views need from it:
// breadth-first ranks from a root entity, a collapsed view that hides
// intermediate node kinds (typically datasets) while keeping reachability, and
// the SLA custom properties that datasets hand down to the jobs consuming them.
//
// All functions are synchronous and allocate their own outputs. Inputs are
// never mutated; Collapse works on a private copy of the graph it receives, so
// a single Graph may be shared by concurrent readers.
package lineage
