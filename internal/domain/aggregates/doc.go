// Package aggregates defines the entity contract shared by every persisted aggregate,
// the soft-delete lifecycle, and the coded error taxonomy of the persistence core.
//
// Nothing here imports the data layer; it reads these types through explicit
// field descriptors.
package aggregates
