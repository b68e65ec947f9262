// Package domain defines the core business entities for CloudCluster.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record: One row of tabular source data as an ordered field mapping
//   - BatchAck: Confirmation of one batch written to a collection
//   - Checkpoint: Last confirmed offset for a (collection, source) pair
//   - AppSettings: Typed application configuration
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
