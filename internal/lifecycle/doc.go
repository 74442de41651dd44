// Package lifecycle enables, disables and reloads installed components while
// enforcing the protection policies (the hosting component, reserved
// platform names, active dependents). Every request returns a Result rather
// than an error so that no-ops and rejections carry the same detail as
// failures.
//
// Smart reload brackets the target's reload with its dependents: enabled
// dependents are disabled in name order, the target is disabled and
// re-enabled, and then every dependent is enabled again. The restore phase
// runs even when an earlier step failed.
package lifecycle
