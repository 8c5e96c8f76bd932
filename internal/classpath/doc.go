// SPDX-License-Identifier: MPL-2.0

// Package classpath models a workspace of Java projects as seen by feature
// discovery: projects with raw classpath entries and output locations, and
// classpath roots (source folders, class folders and jars) that expose
// packages, class files and compilation units.
//
// File organization:
//   - root.go: Root, Package and TypeRoot interfaces
//   - workspace.go: Workspace (project registry, archive cache, AllRoots)
//   - project.go: Project and raw classpath entries
//   - eclipse.go, descriptor.go: .classpath/.project and tapfind.toml readers
//   - archive.go, folder.go: jar and directory roots
//   - typeroot.go: class file and compilation unit handles
package classpath
