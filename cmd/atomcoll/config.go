package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	atom "github.com/OData/odata.net-sub101"
	"github.com/OData/odata.net-sub101/pkg/model"
)

// config holds the settings shared by every subcommand. Values from the
// config file are overridden by flags given on the command line.
type config struct {
	Types       map[string]typeDecl `yaml:"types"`
	ItemType    string              `yaml:"itemType"`
	Indent      string              `yaml:"indent"`
	Out         string              `yaml:"out"`
	Annotations []string            `yaml:"annotations"`
	Concurrency int                 `yaml:"concurrency"`
	MaxDepth    int                 `yaml:"maxDepth"`
	Geo         bool                `yaml:"geo"`
	Zstd        bool                `yaml:"zstd"`
	Verbose     bool                `yaml:"verbose"`
	NoColor     bool                `yaml:"noColor"`
}

// typeDecl declares a complex type. Property types are type names; a
// trailing "!" marks the property non-nullable.
type typeDecl struct {
	Properties map[string]string `yaml:"properties"`
	Order      []string          `yaml:"order"`
	Open       bool              `yaml:"open"`
}

type flagValues struct {
	configPath  string
	itemType    string
	indent      string
	out         string
	annotations []string
	concurrency int
	maxDepth    int
	geo         bool
	zstd        bool
	verbose     bool
	noColor     bool
}

func bindFlags(fs *pflag.FlagSet, v *flagValues) {
	fs.StringVar(&v.configPath, "config", "", "YAML config file")
	fs.StringVar(&v.itemType, "item-type", "", "declared item type, e.g. Int32, Edm.Guid! or a type from the config file")
	fs.StringSliceVar(&v.annotations, "annotations", nil, "instance annotation filter patterns (e.g. '*', 'NS.*', '-NS.Term')")
	fs.BoolVar(&v.geo, "geo", false, "declare GeoRSS and GML namespaces on written payloads")
	fs.StringVar(&v.indent, "indent", "", "indentation for written payloads")
	fs.StringVarP(&v.out, "out", "o", "", "output file for encode (default stdout)")
	fs.BoolVar(&v.zstd, "zstd", false, "treat every payload as zstd-compressed")
	fs.IntVarP(&v.concurrency, "concurrency", "j", 0, "files decoded in parallel (0 uses the number of files)")
	fs.IntVar(&v.maxDepth, "max-depth", 0, "maximum XML nesting depth (0 uses default)")
	fs.BoolVarP(&v.verbose, "verbose", "v", false, "log reader and writer transitions")
	fs.BoolVar(&v.noColor, "no-color", false, "disable colored diagnostics")
}

// loadConfig reads the config file, if any, and applies changed flags on top.
func loadConfig(fs *pflag.FlagSet, v flagValues) (config, error) {
	var cfg config
	if v.configPath != "" {
		data, err := os.ReadFile(v.configPath)
		if err != nil {
			return config{}, fmt.Errorf("read config %s: %w", v.configPath, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return config{}, fmt.Errorf("parse config %s: %w", v.configPath, err)
		}
	}
	if fs.Changed("item-type") {
		cfg.ItemType = v.itemType
	}
	if fs.Changed("annotations") {
		cfg.Annotations = v.annotations
	}
	if fs.Changed("geo") {
		cfg.Geo = v.geo
	}
	if fs.Changed("indent") {
		cfg.Indent = v.indent
	}
	if fs.Changed("out") {
		cfg.Out = v.out
	}
	if fs.Changed("zstd") {
		cfg.Zstd = v.zstd
	}
	if fs.Changed("concurrency") {
		cfg.Concurrency = v.concurrency
	}
	if fs.Changed("max-depth") {
		cfg.MaxDepth = v.maxDepth
	}
	if fs.Changed("verbose") {
		cfg.Verbose = v.verbose
	}
	if fs.Changed("no-color") {
		cfg.NoColor = v.noColor
	}
	if cfg.Concurrency < 0 {
		return config{}, fmt.Errorf("concurrency must be >= 0")
	}
	return cfg, nil
}

func (c config) logger(stderr io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
}

func (c config) readerOptions(itemType *model.TypeRef, logger *slog.Logger) atom.ReaderOptions {
	opts := atom.NewReaderOptions().
		WithItemType(itemType).
		WithLogger(logger).
		WithMaxDepth(c.MaxDepth)
	if len(c.Annotations) > 0 {
		opts = opts.WithAnnotationFilter(c.Annotations...)
	}
	return opts
}

func (c config) writerOptions(itemType *model.TypeRef, logger *slog.Logger) atom.WriterOptions {
	return atom.NewWriterOptions().
		WithItemType(itemType).
		WithLogger(logger).
		WithIndent(c.Indent).
		WithGeoNamespaces(c.Geo)
}

// resolveItemType resolves the configured item type name against the
// primitive kinds and the declared complex types.
func (c config) resolveItemType() (*model.TypeRef, error) {
	if c.ItemType == "" {
		return nil, nil
	}
	r := typeResolver{decls: c.Types, done: map[string]*model.ComplexType{}}
	ref, err := r.resolve(c.ItemType)
	if err != nil {
		return nil, fmt.Errorf("item type %q: %w", c.ItemType, err)
	}
	if ref.Kind == model.KindCollection {
		return nil, fmt.Errorf("item type %q: must be primitive or complex", c.ItemType)
	}
	return ref, nil
}

type typeResolver struct {
	decls map[string]typeDecl
	done  map[string]*model.ComplexType
}

func (r typeResolver) resolve(name string) (*model.TypeRef, error) {
	name = strings.TrimSpace(name)
	nullable := true
	if trimmed, ok := strings.CutSuffix(name, "!"); ok {
		name, nullable = trimmed, false
	}
	if inner, ok := strings.CutPrefix(name, "Collection("); ok {
		inner, ok = strings.CutSuffix(inner, ")")
		if !ok {
			return nil, fmt.Errorf("unterminated collection type %q", name)
		}
		elem, err := r.resolve(inner)
		if err != nil {
			return nil, err
		}
		if elem.Kind == model.KindCollection {
			return nil, fmt.Errorf("nested collection type %q", name)
		}
		ref := model.CollectionType(elem)
		ref.Nullable = nullable
		return ref, nil
	}
	if kind, ok := model.LookupPrimitiveKind(name); ok {
		return model.PrimitiveType(kind, nullable), nil
	}
	if ct, ok := r.done[name]; ok {
		return model.ComplexTypeRef(ct, nullable), nil
	}
	decl, ok := r.decls[name]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	ct := &model.ComplexType{Name: name, Open: decl.Open}
	// Registered before properties resolve so self references terminate.
	r.done[name] = ct
	for _, prop := range propertyOrder(decl) {
		ref, err := r.resolve(decl.Properties[prop])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", name, prop, err)
		}
		ct.Properties = append(ct.Properties, model.PropertyType{Name: prop, Type: *ref})
	}
	return model.ComplexTypeRef(ct, nullable), nil
}

// propertyOrder lists declared properties in the configured order, then
// the rest sorted by name.
func propertyOrder(decl typeDecl) []string {
	seen := make(map[string]bool, len(decl.Properties))
	var out []string
	for _, name := range decl.Order {
		if _, ok := decl.Properties[name]; ok && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var rest []string
	for name := range decl.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}
