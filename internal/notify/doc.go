// SPDX-License-Identifier: MPL-2.0

// Package notify delivers failure events to the external event
// subsystem. Delivery is best-effort: a missing sink is a no-op and a
// failed delivery is swallowed after a debug log, never changing the
// router's own outcome.
package notify
