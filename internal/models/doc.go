// Package models defines domain entities and persistence interfaces for the Band Assist catalog.
//
// The package contains one persistent entity:
//   - [Song] : A song in the band's local catalog, pointing at a tab manifest on disk
//
// Persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
