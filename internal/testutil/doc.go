// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// Besides the Must* helpers it builds classpath fixtures: minimal JVM class
// files (ClassFile), jars (WriteJar), manifests (Manifest) and Eclipse-style
// projects laid out on disk (Project).
package testutil
