// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the fitting core and the outside world.
// They define what the application needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [ObservationSource]: Loads validated observations
//   - [MetadataSource]: Loads optional study metadata
//   - [ResultSink]: Persists the outcome of a fitting run
//   - [FitRecorder]: Receives per-fit measurements
//   - [Logger]: Structured logging abstraction
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with concrete
// implementations (CSV, file system, zerolog, prometheus).
package ports
