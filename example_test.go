package atom_test

import (
	"fmt"
	"strings"

	atom "github.com/OData/odata.net-sub101"
	"github.com/OData/odata.net-sub101/pkg/model"
)

func ExampleWriteAll() {
	var buf strings.Builder
	opts := atom.NewWriterOptions().
		WithXMLDeclaration(false).
		WithItemType(model.PrimitiveType(model.PrimitiveInt32, true))

	items := []model.Value{model.Int32(1), model.Null(), model.Int32(3)}
	if err := atom.WriteAll(&buf, items, opts); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println(buf.String())
	// Output: <m:value xmlns:m="http://docs.oasis-open.org/odata/ns/metadata" xmlns:d="http://docs.oasis-open.org/odata/ns/data"><m:element>1</m:element><m:element m:null="true"></m:element><m:element>3</m:element></m:value>
}

func ExampleCollectionReader() {
	payload := `<?xml version="1.0" encoding="utf-8"?>
<m:value xmlns:m="http://docs.oasis-open.org/odata/ns/metadata" xmlns:d="http://docs.oasis-open.org/odata/ns/data">
  <m:element>red</m:element>
  <m:element>green</m:element>
</m:value>`

	r, err := atom.NewCollectionReader(strings.NewReader(payload), atom.NewReaderOptions())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for {
		more, err := r.Read()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if r.State() == atom.StateValue {
			fmt.Println(r.State(), r.Item().Primitive.Value)
		} else {
			fmt.Println(r.State())
		}
		if !more {
			break
		}
	}
	// Output:
	// CollectionStart
	// Value red
	// Value green
	// CollectionEnd
	// Completed
}

func ExampleCollectionReader_All() {
	address := &model.ComplexType{
		Name: "NS.Address",
		Properties: []model.PropertyType{
			{Name: "City", Type: *model.PrimitiveType(model.PrimitiveString, true)},
			{Name: "Zip", Type: *model.PrimitiveType(model.PrimitiveInt32, false)},
		},
	}
	payload := `<m:value xmlns:m="http://docs.oasis-open.org/odata/ns/metadata" xmlns:d="http://docs.oasis-open.org/odata/ns/data">` +
		`<m:element><d:City>Oslo</d:City><d:Zip>150</d:Zip></m:element>` +
		`<m:element m:null="true"/>` +
		`</m:value>`

	opts := atom.NewReaderOptions().WithItemType(model.ComplexTypeRef(address, true))
	r, err := atom.NewCollectionReader(strings.NewReader(payload), opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	for item, err := range r.All() {
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		if item.IsNull() {
			fmt.Println("null")
			continue
		}
		city, _ := item.Complex.Get("City")
		zip, _ := item.Complex.Get("Zip")
		fmt.Println(item.Complex.TypeName, city.Primitive.Value, zip.Primitive.Value)
	}
	// Output:
	// NS.Address Oslo 150
	// null
}
