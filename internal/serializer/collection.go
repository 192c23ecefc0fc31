// Package serializer writes Atom collection payloads with encoding/xml.
// Element and attribute names are written with literal prefixes declared
// on the payload wrapper.
package serializer

import (
	"encoding/xml"
	"fmt"
	"io"

	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/internal/validation"
	"github.com/OData/odata.net-sub101/internal/wire"
	"github.com/OData/odata.net-sub101/pkg/model"
)

// Config controls payload framing.
type Config struct {
	// Indent is the per-level indentation; empty writes compact XML.
	Indent string
	// GeoNamespaces declares the GeoRSS and GML prefixes on the wrapper.
	GeoNamespaces bool
	// OmitDeclaration suppresses the XML declaration.
	OmitDeclaration bool
}

// CollectionSerializer emits the payload wrapper and its items. Call order
// is the caller's responsibility.
type CollectionSerializer struct {
	w       io.Writer
	enc     *xml.Encoder
	values  *ValueSerializer
	dup     *validation.DuplicateNameChecker
	wrapper xml.StartElement
	cfg     Config
}

// NewCollectionSerializer returns a serializer writing to w.
func NewCollectionSerializer(w io.Writer, cfg Config) *CollectionSerializer {
	enc := xml.NewEncoder(w)
	if cfg.Indent != "" {
		enc.Indent("", cfg.Indent)
	}
	dup := validation.NewDuplicateNameChecker()
	return &CollectionSerializer{
		w:      w,
		enc:    enc,
		values: NewValueSerializer(dup),
		dup:    dup,
		cfg:    cfg,
		wrapper: xml.StartElement{
			Name: xml.Name{Local: wire.Qualified(wire.MetadataPrefix, wire.PayloadElement)},
		},
	}
}

// WritePayloadStart writes the XML declaration.
func (s *CollectionSerializer) WritePayloadStart() error {
	if s.cfg.OmitDeclaration {
		return nil
	}
	return s.encode(xml.ProcInst{Target: "xml", Inst: []byte(`version="1.0" encoding="utf-8"`)})
}

// WriteCollectionStart writes the payload wrapper with its namespace
// declarations.
func (s *CollectionSerializer) WriteCollectionStart(model.CollectionStart) error {
	attrs := []xml.Attr{
		xmlnsAttr(wire.MetadataPrefix, wire.MetadataNamespace),
		xmlnsAttr(wire.DataPrefix, wire.DataNamespace),
	}
	if s.cfg.GeoNamespaces {
		attrs = append(attrs,
			xmlnsAttr(wire.GeoRSSPrefix, wire.GeoRSSNamespace),
			xmlnsAttr(wire.GMLPrefix, wire.GMLNamespace),
		)
	}
	s.wrapper.Attr = attrs
	return s.encode(s.wrapper)
}

// WriteItem validates and writes one item. Nothing is written when the
// item fails validation. validator may be nil.
func (s *CollectionSerializer) WriteItem(item model.Value, expected *model.TypeRef, validator *validation.CollectionValidator) error {
	if s.values.Depth() != 0 || s.dup.Depth() != 0 {
		return xmlerrors.NewUsagef(xmlerrors.ErrSerializerDepth, "nested serialization state leaked before item")
	}
	defer s.dup.Reset()

	switch item.Kind {
	case model.KindNull:
		if err := validation.CheckNull(expected); err != nil {
			return err
		}
	case model.KindCollection:
		return xmlerrors.NewValidationf(xmlerrors.ErrNestedCollectionItem, "collection item cannot be a collection")
	default:
		if err := validation.CheckType(expected, item); err != nil {
			return err
		}
	}
	if err := validator.Validate(item); err != nil {
		return err
	}

	tokens, err := s.values.RenderItem(item, expected)
	if err != nil {
		return err
	}
	if s.values.Depth() != 0 || s.dup.Depth() != 0 {
		return xmlerrors.NewUsagef(xmlerrors.ErrSerializerDepth, "nested serialization state leaked after item")
	}
	for _, tok := range tokens {
		if err := s.enc.EncodeToken(tok); err != nil {
			return fmt.Errorf("encode item: %w", err)
		}
	}
	return nil
}

// WriteCollectionEnd closes the payload wrapper.
func (s *CollectionSerializer) WriteCollectionEnd() error {
	return s.encode(s.wrapper.End())
}

// WritePayloadEnd flushes the encoder.
func (s *CollectionSerializer) WritePayloadEnd() error {
	return s.Flush()
}

// Flush writes buffered encoder output to the underlying writer and flushes
// that writer too when it supports it.
func (s *CollectionSerializer) Flush() error {
	if err := s.enc.Flush(); err != nil {
		return fmt.Errorf("flush encoder: %w", err)
	}
	if f, ok := s.w.(interface{ Flush() error }); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush writer: %w", err)
		}
	}
	return nil
}

func (s *CollectionSerializer) encode(tok xml.Token) error {
	if err := s.enc.EncodeToken(tok); err != nil {
		return fmt.Errorf("encode %T: %w", tok, err)
	}
	return nil
}

func xmlnsAttr(prefix, uri string) xml.Attr {
	return xml.Attr{Name: xml.Name{Local: "xmlns:" + prefix}, Value: uri}
}
