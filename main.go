// SPDX-License-Identifier: MPL-2.0

// tapfind lists the components, pages, mixins and services of a Tapestry
// project.
package main

import cmd "github.com/webtools/tapfind/cmd/tapfind"

func main() {
	cmd.Execute()
}
