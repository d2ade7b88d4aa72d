// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentCache: the observable in-memory document collection and
//     pending-operation table
//   - OperationSender: outbound transmission of optimistic operations
//   - Clock: time source with cancellable timers and tickers
//   - ConfigStore: application configuration
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - ResolutionHistory: durable audit trail of conflict resolutions
//   - SnapshotStore: local persistence of the document collection for
//     offline startup
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
