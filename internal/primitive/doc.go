// Package primitive parses and formats the lexical forms of Edm primitive
// values and the type names carried by type-hint attributes.
package primitive
