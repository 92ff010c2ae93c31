// Package sim provides the frame-driven space combat kernel.
//
// # Reading Guide
//
// Start with these files to understand the kernel:
//   - handle.go: Registry, object handles and the observer protocol that
//     replaces raw pointers between objects
//   - region.go: SimRegion, one volume of space with its own ship, shot,
//     explosion and debris lists, collisions and sensor tracks
//   - simulator.go: Sim, the frame loop, the splash and hyperjump lists and
//     the mission lifecycle (load, exec, commit, unload)
//
// Then the systems a ship carries:
//   - system.go, shield.go: PowerSink energy and damage, shields
//   - weapon.go, weapon_group.go, shot.go: turrets, firing orders,
//     projectiles, seekers and drones
//   - quantum_drive.go, farcaster.go, hyper.go: inter-region travel
//   - director.go: the ship autopilot interface
//
// # Architecture
//
// Sub-packages hold data types and adapters with no dependency on sim/:
//   - sim/trace/: event records for post-mission analysis
//   - sim/metrics/: Prometheus collector implementing Recorder
//
// Designs are loaded once into a Catalog (catalog.go, config.go) and shared
// by every object built from them. All randomness is drawn from a
// PartitionedRNG (rng.go) so a mission seed fixes the outcome.
package sim
