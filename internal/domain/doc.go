// Package domain contains the core entities and value objects for pkfit.
//
// This package is the innermost layer of the application. It has no
// dependencies on infrastructure concerns (CSV, file system, logging, metrics)
// and contains only the data model and its invariants.
//
// # Entities
//
//   - [Observation]: one timed concentration sample for a subject
//   - [SubjectSeries]: a subject's observations ordered by time
//   - [Candidate]: a (CL, V) parameter pair evaluated by the fitter
//   - [GridSpec]: bounds and resolution of the (CL, V) search grid
//   - [FitResult]: the best candidate for one subject or the pooled set
//   - [RunSummary]: everything one fitting run produced
//
// # Design Principles
//
// Domain values are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
