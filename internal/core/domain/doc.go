// Package domain defines the core business entities for docbridge.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A synchronised document record
//   - Operation: A pending optimistic mutation with its rollback descriptor
//   - Conflict: A detected contradiction between local and remote state
//   - Resolution: The audit record of a resolved conflict
//   - ConnectionInfo: The sync channel's connection state
//   - Envelope and friends: the wire message shapes of the sync channel
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
