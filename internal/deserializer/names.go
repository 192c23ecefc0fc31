package deserializer

import (
	"github.com/OData/odata.net-sub101/internal/wire"
	"github.com/OData/odata.net-sub101/pkg/xmlcursor"
)

// names holds the wire names interned once per reader.
type names struct {
	metadataNS xmlcursor.Name
	dataNS     xmlcursor.Name
	noNS       xmlcursor.Name
	item       xmlcursor.Name
	null       xmlcursor.Name
	typ        xmlcursor.Name
	annotation xmlcursor.Name
	term       xmlcursor.Name
	target     xmlcursor.Name
	shorthands [5]shorthand
}

type shorthand struct {
	name xmlcursor.Name
	attr string
}

func newNames(table *xmlcursor.NameTable) *names {
	n := &names{
		metadataNS: table.Add(wire.MetadataNamespace),
		dataNS:     table.Add(wire.DataNamespace),
		noNS:       table.Add(""),
		item:       table.Add(wire.ItemElement),
		null:       table.Add(wire.NullAttribute),
		typ:        table.Add(wire.TypeAttribute),
		annotation: table.Add(wire.AnnotationElement),
		term:       table.Add(wire.TermAttribute),
		target:     table.Add(wire.TargetAttribute),
	}
	for i, attr := range []string{
		wire.AnnotationString,
		wire.AnnotationInt,
		wire.AnnotationBool,
		wire.AnnotationFloat,
		wire.AnnotationDecimal,
	} {
		n.shorthands[i] = shorthand{name: table.Add(attr), attr: attr}
	}
	return n
}
