// Package libdiff compares two wire documents structurally.
//
// Fields are matched by name, array elements by a summary of their
// runtime type and scalar text, and changed text scalars carry a
// character diff.
package libdiff
