// Package resolver answers dependency questions over a snapshot of component
// descriptors: which installed components depend on a target, which hard
// dependencies of a new package are unsatisfied, and in which order a set of
// load candidates must be installed. The graph is derived on every call and
// never stored. Cycles are broken, not rejected; the edges that were dropped
// are reported so callers can decide.
package resolver
