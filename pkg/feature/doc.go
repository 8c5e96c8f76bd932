// SPDX-License-Identifier: MPL-2.0

// Package feature defines the four kinds of Tapestry features (components,
// pages, mixins, services), the record created for every discovered class,
// and the in-memory project model that stores them.
//
// A record's logical name follows the framework's addressing rules: the
// library prefix, the sub-package below the conventional package and the
// simple class name, joined by slashes ("core/Grid", "jquery/dialog/Modal").
package feature
