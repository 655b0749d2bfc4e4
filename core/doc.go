// Package core provides the foundational domain types and interfaces used by
// inferpipe. It defines the core abstractions for:
//
//   - Frames (identity, completed results, in-flight metadata)
//   - Executors (pluggable compute backends with reusable slots)
//   - Pre/Postprocessors (model specific input/output transformations)
//   - Sentinel errors shared across the pipeline packages
//
// The package intentionally keeps implementation concerns (pooling, ordering,
// concrete executors) out of scope, exposing small interfaces to enable custom
// backends and extensions.
package core
