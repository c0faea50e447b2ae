// SPDX-License-Identifier: MPL-2.0

// switchyard is a command router for multi-branch developer workspaces.
// It dispatches invocations to branch entry points, resolves @-handle
// references, and learns branch commands at runtime.
package main

import cmd "switchyard-cli/cmd/switchyard"

func main() {
	cmd.Execute()
}
