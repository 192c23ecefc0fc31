package atom

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/OData/odata.net-sub101/internal/deserializer"
	"github.com/OData/odata.net-sub101/internal/serializer"
	"github.com/OData/odata.net-sub101/pkg/model"
	"github.com/OData/odata.net-sub101/pkg/xmlcursor"
)

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved() int {
	if !o.set {
		return 0
	}
	return o.value
}

// ReaderOptions configures a CollectionReader. The zero value reads
// untyped items, drops every instance annotation and logs nothing.
type ReaderOptions struct {
	logger         *slog.Logger
	itemType       *model.TypeRef
	annotations    []string
	maxDepth       intOption
	maxNameEntries intOption
}

// WriterOptions configures a CollectionWriter. The zero value writes an
// XML declaration, compact output and no geography namespaces.
type WriterOptions struct {
	logger          *slog.Logger
	itemType        *model.TypeRef
	indent          string
	geoNamespaces   bool
	omitDeclaration bool
}

type resolvedReaderOptions struct {
	logger   *slog.Logger
	itemType *model.TypeRef
	filter   *deserializer.AnnotationFilter
	cursor   xmlcursor.Options
}

type resolvedWriterOptions struct {
	logger   *slog.Logger
	itemType *model.TypeRef
	config   serializer.Config
}

// NewReaderOptions returns a default, valid reader options value.
func NewReaderOptions() ReaderOptions {
	return ReaderOptions{}
}

// NewWriterOptions returns a default, valid writer options value.
func NewWriterOptions() WriterOptions {
	return WriterOptions{}
}

// Validate validates reader options values.
func (o ReaderOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// Validate validates writer options values.
func (o WriterOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithItemType sets the declared item type. A nil type reads items without
// type context and checks that they share one shape.
func (o ReaderOptions) WithItemType(value *model.TypeRef) ReaderOptions {
	o.itemType = value
	return o
}

// WithAnnotationFilter selects the instance annotations to materialize.
// Patterns are "*", "Namespace.*" or an exact term; a leading "-" excludes.
func (o ReaderOptions) WithAnnotationFilter(patterns ...string) ReaderOptions {
	o.annotations = append([]string(nil), patterns...)
	return o
}

// WithLogger sets the debug logger (nil discards).
func (o ReaderOptions) WithLogger(value *slog.Logger) ReaderOptions {
	o.logger = value
	return o
}

// WithMaxDepth sets the XML max depth limit (0 uses default).
func (o ReaderOptions) WithMaxDepth(value int) ReaderOptions {
	o.maxDepth = intOption{value: value, set: true}
	return o
}

// WithMaxNameEntries sets the interned name table size (0 uses default).
func (o ReaderOptions) WithMaxNameEntries(value int) ReaderOptions {
	o.maxNameEntries = intOption{value: value, set: true}
	return o
}

// WithItemType sets the declared item type used to validate items.
func (o WriterOptions) WithItemType(value *model.TypeRef) WriterOptions {
	o.itemType = value
	return o
}

// WithLogger sets the debug logger (nil discards).
func (o WriterOptions) WithLogger(value *slog.Logger) WriterOptions {
	o.logger = value
	return o
}

// WithIndent sets the per-level indentation; it must be spaces or tabs.
func (o WriterOptions) WithIndent(value string) WriterOptions {
	o.indent = value
	return o
}

// WithGeoNamespaces declares the GeoRSS and GML prefixes on the wrapper.
func (o WriterOptions) WithGeoNamespaces(value bool) WriterOptions {
	o.geoNamespaces = value
	return o
}

// WithXMLDeclaration controls whether the payload starts with an XML declaration.
func (o WriterOptions) WithXMLDeclaration(value bool) WriterOptions {
	o.omitDeclaration = !value
	return o
}

func (o ReaderOptions) withDefaults() (resolvedReaderOptions, error) {
	limits, err := resolveXMLParseLimits(o.maxDepth.resolved(), o.maxNameEntries.resolved())
	if err != nil {
		return resolvedReaderOptions{}, fmt.Errorf("reader xml limits: %w", err)
	}
	if err := checkTypeRef(o.itemType); err != nil {
		return resolvedReaderOptions{}, fmt.Errorf("reader item type: %w", err)
	}
	var filter *deserializer.AnnotationFilter
	if len(o.annotations) > 0 {
		filter, err = deserializer.NewAnnotationFilter(o.annotations...)
		if err != nil {
			return resolvedReaderOptions{}, err
		}
	}
	return resolvedReaderOptions{
		logger:   resolveLogger(o.logger),
		itemType: o.itemType,
		filter:   filter,
		cursor:   limits.options(),
	}, nil
}

func (o WriterOptions) withDefaults() (resolvedWriterOptions, error) {
	if strings.Trim(o.indent, " \t") != "" {
		return resolvedWriterOptions{}, fmt.Errorf("writer indent must contain only spaces or tabs")
	}
	if err := checkTypeRef(o.itemType); err != nil {
		return resolvedWriterOptions{}, fmt.Errorf("writer item type: %w", err)
	}
	return resolvedWriterOptions{
		logger:   resolveLogger(o.logger),
		itemType: o.itemType,
		config: serializer.Config{
			Indent:          o.indent,
			GeoNamespaces:   o.geoNamespaces,
			OmitDeclaration: o.omitDeclaration,
		},
	}, nil
}

// checkTypeRef rejects item types that cannot describe a collection item.
func checkTypeRef(t *model.TypeRef) error {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case model.KindPrimitive:
		if t.Primitive.QualifiedName() == "" {
			return fmt.Errorf("unknown primitive kind %d", t.Primitive)
		}
	case model.KindComplex:
		if t.Complex == nil {
			return fmt.Errorf("complex item type has no declaration")
		}
	default:
		return fmt.Errorf("item type must be primitive or complex, got %s", t.Kind)
	}
	return nil
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}
