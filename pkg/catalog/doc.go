// Package catalog records which versions a mirror holds.
//
// The files on disk remain the source of truth for what has been mirrored;
// the catalog is an index over them for listing and serving. Three stores
// implement [Store]:
//
//   - [SQLiteStore]: default, a database file under the destination's
//     .libmirror directory
//   - [MongoStore]: a shared collection, selected by catalog.mongo_uri
//   - [NullStore]: records nothing (--no-catalog)
package catalog
