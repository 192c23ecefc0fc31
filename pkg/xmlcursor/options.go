package xmlcursor

// Options holds cursor configuration values.
// The zero value means no overrides.
type Options struct {
	maxDepth       int
	maxNameEntries int
	strict         bool
	emitComments   bool
	emitProcInst   bool

	maxDepthSet       bool
	maxNameEntriesSet bool
	strictSet         bool
	emitCommentsSet   bool
	emitProcInstSet   bool
}

const (
	defaultMaxDepth       = 256
	defaultMaxNameEntries = 4096
)

// JoinOptions combines multiple option sets into one in declaration order.
// Later options override earlier ones when set.
func JoinOptions(srcs ...Options) Options {
	var merged Options
	for _, src := range srcs {
		merged.merge(src)
	}
	return merged
}

func (opts *Options) merge(src Options) {
	if src.maxDepthSet {
		opts.maxDepth = src.maxDepth
		opts.maxDepthSet = true
	}
	if src.maxNameEntriesSet {
		opts.maxNameEntries = src.maxNameEntries
		opts.maxNameEntriesSet = true
	}
	if src.strictSet {
		opts.strict = src.strict
		opts.strictSet = true
	}
	if src.emitCommentsSet {
		opts.emitComments = src.emitComments
		opts.emitCommentsSet = true
	}
	if src.emitProcInstSet {
		opts.emitProcInst = src.emitProcInst
		opts.emitProcInstSet = true
	}
}

// MaxDepth limits element nesting depth (0 or less disables the limit).
func MaxDepth(value int) Options {
	return Options{maxDepth: value, maxDepthSet: true}
}

// MaxNameEntries bounds how many distinct names the decoder interns.
// Names added explicitly through NameTable.Add are never refused.
func MaxNameEntries(value int) Options {
	return Options{maxNameEntries: value, maxNameEntriesSet: true}
}

// Strict controls encoding/xml strict mode.
func Strict(value bool) Options {
	return Options{strict: value, strictSet: true}
}

// EmitComments controls whether comment nodes are reported.
func EmitComments(value bool) Options {
	return Options{emitComments: value, emitCommentsSet: true}
}

// EmitProcInst controls whether processing instruction nodes are reported.
// The XML declaration is never reported.
func EmitProcInst(value bool) Options {
	return Options{emitProcInst: value, emitProcInstSet: true}
}

type resolvedOptions struct {
	maxDepth       int
	maxNameEntries int
	strict         bool
	emitComments   bool
	emitProcInst   bool
}

func resolveOptions(opts ...Options) resolvedOptions {
	merged := JoinOptions(append([]Options{
		MaxDepth(defaultMaxDepth),
		MaxNameEntries(defaultMaxNameEntries),
		Strict(true),
	}, opts...)...)
	return resolvedOptions{
		maxDepth:       merged.maxDepth,
		maxNameEntries: merged.maxNameEntries,
		strict:         merged.strict,
		emitComments:   merged.emitComments,
		emitProcInst:   merged.emitProcInst,
	}
}
