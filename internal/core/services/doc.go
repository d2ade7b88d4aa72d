// Package services contains the core business logic for docbridge.
//
// Services implement the driving ports using the driven ports, keeping the
// hexagon's centre free of adapter concerns:
//   - OptimisticManager: optimistic mutations with tracked rollback
//   - ConflictResolver: conflict detection, classification and resolution
//   - SyncCoordinator: routing of authoritative backend events
package services
