// Package bench provides the adaptive capacity benchmark: a tick-driven control
// loop that finds, for each workload profile, the largest entity population a
// runtime can hold while sustaining the target frame rate.
//
// # Reading Guide
//
// Start with these files to understand the control loop:
//   - sampler.go: frame-delta window and the trimmed-mean fps filter
//   - controller.go: population growth, overload backoff and step halving
//   - benchmark.go: profile sequencing, enable/disable lifecycle, finish handling
//
// # Architecture
//
// The bench package defines the collaborator interfaces; implementations live
// in sub-packages:
//   - bench/world/: ECS entity/physics host and terminal renderer
//   - bench/host/: tick driver (frame clock, fixed-rate accumulator, owner hooks)
//   - bench/trace/: per-evaluation decision records
//   - bench/history/: SQLite run history
//   - bench/chart/: HTML scatter of observations
//   - bench/telemetry/: OpenTelemetry export of a finished run
//
// # Key Interfaces
//
//   - EntityHost: create/destroy entities, gravity pull, live entity listing
//   - Owner: re-enables the primary runtime context when the run finishes
//
// A Benchmark is not safe for concurrent use. All callbacks must arrive from
// the single goroutine that delivers ticks.
package bench
