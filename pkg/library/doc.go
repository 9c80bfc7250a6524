// Package library owns the on-disk layout of a mirror: where each version's
// directory, artifact file and library.xml descriptor live, and how they are
// written.
//
// Files are created at most once. Callers check [Exists] before fetching
// anything, [WriteDescriptor] refuses to replace an existing descriptor, and
// [WriteFileAtomic] renames a fully written temporary file into place so an
// interrupted write never leaves a file that looks complete.
package library
