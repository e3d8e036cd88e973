// Package operations runs the scraping pipeline as a sequence of stages.
//
// A Manager holds stages in registration order and runs the requested
// subset one after another. Each stage gets its own timeout, span and
// metrics; a failing stage stops the run unless ContinueOnError is set,
// in which case only stages depending on it are skipped.
//
// Stages hand their tables to later stages through the OperationState
// context. A stage whose producer is not part of the run reads the
// checkpoint on disk instead, so any suffix of the pipeline can be run on
// its own:
//
//	roster -> profiles -> export
//	redrive -> export
//	torikumi
//	awards
//
// Failures are reported as *OperationError values whose Type tells
// navigation, parse and consistency problems apart.
package operations
