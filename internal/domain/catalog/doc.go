// Package catalog holds the reference data of the scheduler: the roster of
// people, subjects, rooms, shifts and enrollments.
//
// Everything except shifts is mirrored from the remote catalog service and is
// owned by it; the local store only keeps a replica keyed the same way:
//
//   - Person     keyed by RosterNumber
//   - Subject    keyed by Code
//   - Room       keyed by Number
//   - Enrollment keyed by ClassCode
//
// Shifts are a fixed set of seven two-hour windows, see StandardShifts.
//
// The package depends on the standard library only. Repository
// implementations live in infrastructure/persistence.
package catalog
