// SPDX-License-Identifier: MPL-2.0

// Package finder runs a feature discovery scan over the classpath of one
// project.
//
// A scan visits every classpath root once. Each root is classified (core
// library, application library, project source, dependency project source),
// its (prefix, root package) pair is determined, and the components, pages,
// mixins and services sub-packages below the root package are walked. Each
// class found becomes a feature.Record added to the model.
//
// Root-local failures become Diagnostics and never stop sibling roots. Only a
// failure to enumerate the roots aborts the scan.
package finder
