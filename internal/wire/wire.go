// Package wire holds the names shared byte-for-byte by the collection
// reader and writer.
package wire

const (
	// MetadataNamespace identifies protocol-reserved elements and attributes.
	MetadataNamespace = "http://docs.oasis-open.org/odata/ns/metadata"
	// DataNamespace identifies property elements of complex values.
	DataNamespace = "http://docs.oasis-open.org/odata/ns/data"
	// GeoRSSNamespace is declared on request for geography payloads.
	GeoRSSNamespace = "http://www.georss.org/georss"
	// GMLNamespace is declared on request for geometry payloads.
	GMLNamespace = "http://www.opengis.net/gml"
	// XMLNSNamespace is the namespace of namespace declarations.
	XMLNSNamespace = "http://www.w3.org/2000/xmlns/"

	MetadataPrefix = "m"
	DataPrefix     = "d"
	GeoRSSPrefix   = "georss"
	GMLPrefix      = "gml"
)

const (
	// PayloadElement is the local name of the collection wrapper.
	PayloadElement = "value"
	// ItemElement is the local name of one collection item.
	ItemElement = "element"
	// NullAttribute marks a null value when set to "true".
	NullAttribute = "null"
	// TypeAttribute carries the type name of a value.
	TypeAttribute = "type"

	AnnotationElement = "annotation"
	TermAttribute     = "term"
	TargetAttribute   = "target"
)

// Attribute shorthands of an empty annotation element.
const (
	AnnotationString  = "string"
	AnnotationInt     = "int"
	AnnotationBool    = "bool"
	AnnotationFloat   = "float"
	AnnotationDecimal = "decimal"
)

const (
	// TypeNamePrefix introduces non-primitive type names on the wire.
	TypeNamePrefix = "#"
	// EdmNamespacePrefix qualifies primitive type names.
	EdmNamespacePrefix = "Edm."
	// CollectionTypePrefix opens a collection type name.
	CollectionTypePrefix = "Collection("
)

// Qualified returns prefix:local.
func Qualified(prefix, local string) string {
	return prefix + ":" + local
}
