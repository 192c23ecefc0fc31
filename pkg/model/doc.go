// Package model defines the in-memory values exchanged with the Atom
// collection codec: collection items, their primitive and complex shapes,
// instance annotations and the declared types used to check them.
package model
