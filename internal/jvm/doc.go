// SPDX-License-Identifier: MPL-2.0

// Package jvm runs the library mapping probe: a small generated Java program
// that builds a Tapestry configuration wrapper, calls a module's
// contributeComponentClassResolver method and prints the contributed
// library mappings.
//
// The probe prints one record per line, fields separated by tabs:
//
//	MAPPING <prefix> <package>   a contributed LibraryMapping
//	FAULT   <reason>             a tolerated fault after contributions
//	ERROR   <kind> <message>     the probe failed
//
// A null field is printed as \N.
package jvm
