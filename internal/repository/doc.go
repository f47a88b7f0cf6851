// Package repository defines the data access interface for computed runs.
//
// A run is stored as one header row plus one row per frequency table key,
// so tables of any size round-trip exactly and can be queried by key. The
// implementation lives in the sqlite subpackage and migrates its schema on
// startup.
package repository
