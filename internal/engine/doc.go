// Package engine holds the pure planning logic: rule conflict detection, rule
// validation and formatting, and merging of two plans of the same kind.
//
// Every function is a pure function of its arguments. Inputs are never mutated
// and there is no package state, so callers may invoke them concurrently.
package engine
