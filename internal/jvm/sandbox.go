// SPDX-License-Identifier: MPL-2.0

package jvm

import (
	"os"
	"sync"
)

const (
	// SandboxNone means tapfind runs directly on the host.
	SandboxNone Sandbox = ""
	// SandboxFlatpak means tapfind runs inside a Flatpak sandbox.
	SandboxFlatpak Sandbox = "flatpak"
	// SandboxSnap means tapfind runs inside a Snap confinement.
	SandboxSnap Sandbox = "snap"
)

// Sandbox identifies the application sandbox of the current process.
type Sandbox string

// detectOnce caches detection for the process lifetime.
//
// INVARIANT: detectSandboxFrom must not panic; sync.OnceValue re-panics on
// every call.
var detectOnce = sync.OnceValue(func() Sandbox {
	return detectSandboxFrom(os.Getenv, func(p string) error {
		_, err := os.Stat(p)
		return err
	})
})

// DetectSandbox returns the sandbox the process runs in. The result is cached.
func DetectSandbox() Sandbox { return detectOnce() }

// HostCommand rewrites name and args so the command runs on the host.
// Container engines are host services, so a sandboxed tapfind must reach
// them through the sandbox's spawn helper.
func (s Sandbox) HostCommand(name string, args []string) (string, []string) {
	var prefix []string
	switch s {
	case SandboxFlatpak:
		prefix = []string{"flatpak-spawn", "--host"}
	case SandboxSnap:
		prefix = []string{"snap", "run", "--shell"}
	default:
		return name, args
	}
	out := make([]string, 0, len(prefix)+len(args))
	out = append(out, prefix[1:]...)
	out = append(out, name)
	out = append(out, args...)
	return prefix[0], out
}

// Flatpak takes precedence over Snap.
func detectSandboxFrom(getenv func(string) string, stat func(string) error) Sandbox {
	if err := stat("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}
	if getenv("SNAP_NAME") != "" {
		return SandboxSnap
	}
	return SandboxNone
}
