// SPDX-License-Identifier: MPL-2.0

// Package issue classifies router failures and carries user-facing error
// context. Handlers build errors here and return them; only orchestrating
// layers log them, at the severity their Kind prescribes.
package issue
