package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a fault by the contract it violates.
type Kind uint8

const (
	// KindFormat reports malformed wire data.
	KindFormat Kind = iota + 1
	// KindValidation reports a value-level contract violation.
	KindValidation
	// KindUsage reports a reader, writer or cursor used out of order or after
	// it completed or faulted.
	KindUsage
)

// String returns a stable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindFormat:
		return "format"
	case KindValidation:
		return "validation"
	case KindUsage:
		return "usage"
	default:
		return "unknown"
	}
}

// ErrorCode identifies a specific fault.
type ErrorCode string

const (
	// ErrInvalidCollectionNamespace indicates the payload root is not in the metadata namespace.
	ErrInvalidCollectionNamespace ErrorCode = "collection-root-namespace"
	// ErrTypeOnCollection indicates the payload root carries a type attribute.
	ErrTypeOnCollection ErrorCode = "collection-root-type"
	// ErrNullOnCollection indicates the payload root carries a null attribute.
	ErrNullOnCollection ErrorCode = "collection-root-null"
	// ErrInvalidItemElement indicates an item element with the wrong local name.
	ErrInvalidItemElement ErrorCode = "collection-item-element"
	// ErrUnexpectedNode indicates the cursor was on an unexpected node kind.
	ErrUnexpectedNode ErrorCode = "unexpected-node"
	// ErrMissingRoot indicates the payload has no root element.
	ErrMissingRoot ErrorCode = "missing-root"
	// ErrContentAfterRoot indicates non-whitespace content after the root element.
	ErrContentAfterRoot ErrorCode = "content-after-root"
	// ErrInvalidPrimitive indicates a primitive lexical form could not be parsed.
	ErrInvalidPrimitive ErrorCode = "primitive-lexical"
	// ErrElementInPrimitive indicates a child element inside a primitive value.
	ErrElementInPrimitive ErrorCode = "primitive-element-content"
	// ErrInvalidTypeName indicates an unparseable or unknown type name.
	ErrInvalidTypeName ErrorCode = "type-name"
	// ErrInvalidNullValue indicates a null attribute with a value other than true or false.
	ErrInvalidNullValue ErrorCode = "null-attribute-value"
	// ErrAnnotationMissingTerm indicates an annotation element without a term attribute.
	ErrAnnotationMissingTerm ErrorCode = "annotation-term"
	// ErrAnnotationValue indicates conflicting or malformed annotation value forms.
	ErrAnnotationValue ErrorCode = "annotation-value"
	// ErrXMLSyntax indicates the underlying tokenizer rejected the input.
	ErrXMLSyntax ErrorCode = "xml-syntax"
	// ErrDepthLimit indicates the element nesting exceeds the configured limit.
	ErrDepthLimit ErrorCode = "depth-limit"

	// ErrNullNotAllowed indicates a null value where the expected type is not nullable.
	ErrNullNotAllowed ErrorCode = "null-not-allowed"
	// ErrIncompatibleItemKind indicates an item whose shape differs from previous items.
	ErrIncompatibleItemKind ErrorCode = "collection-item-kind"
	// ErrIncompatibleItemType indicates an item whose type name differs from previous items.
	ErrIncompatibleItemType ErrorCode = "collection-item-type"
	// ErrIncompatibleType indicates a value whose type differs from the expected type.
	ErrIncompatibleType ErrorCode = "incompatible-type"
	// ErrNestedCollectionItem indicates a collection used as a collection item.
	ErrNestedCollectionItem ErrorCode = "nested-collection-item"
	// ErrDuplicateProperty indicates a property name repeated within one complex value.
	ErrDuplicateProperty ErrorCode = "duplicate-property"
	// ErrUndeclaredProperty indicates a property missing from a closed declared type.
	ErrUndeclaredProperty ErrorCode = "undeclared-property"
	// ErrInvalidPropertyName indicates an empty or non-XML property name.
	ErrInvalidPropertyName ErrorCode = "property-name"

	// ErrReaderCompleted indicates the reader was advanced after completion.
	ErrReaderCompleted ErrorCode = "reader-completed"
	// ErrReaderFaulted indicates the reader was used after a fault.
	ErrReaderFaulted ErrorCode = "reader-faulted"
	// ErrWriterState indicates a writer call out of the required sequence.
	ErrWriterState ErrorCode = "writer-state"
	// ErrWriterFaulted indicates the writer was used after a fault.
	ErrWriterFaulted ErrorCode = "writer-faulted"
	// ErrFlushPending indicates a call while an asynchronous flush is outstanding.
	ErrFlushPending ErrorCode = "flush-pending"
	// ErrCursorBuffering indicates the cursor was left in lookahead mode at a boundary.
	ErrCursorBuffering ErrorCode = "cursor-buffering"
	// ErrSerializerDepth indicates nested serialization state leaked across items.
	ErrSerializerDepth ErrorCode = "serializer-depth"
)

// Fault describes a codec failure with its kind, code and optional position
// and expectation context.
//
//nolint:errname // public API name uses the codec's domain term.
type Fault struct {
	Err      error
	Code     ErrorCode
	Message  string
	Actual   string
	Expected []string
	Line     int
	Column   int
	Kind     Kind
}

// Error formats the fault for display, including code, message, and context.
func (f *Fault) Error() string {
	if f == nil {
		return "fault <nil>"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", f.Code, f.Message)
	if f.Line > 0 && f.Column > 0 {
		fmt.Fprintf(&b, " at line %d, column %d", f.Line, f.Column)
	}
	if len(f.Expected) > 0 {
		fmt.Fprintf(&b, " (expected: %s)", strings.Join(f.Expected, ", "))
	}
	if f.Actual != "" {
		fmt.Fprintf(&b, " (actual: %s)", f.Actual)
	}
	if f.Err != nil {
		fmt.Fprintf(&b, ": %v", f.Err)
	}
	return b.String()
}

// Unwrap exposes the underlying cause, if any.
func (f *Fault) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// At returns a copy of the fault carrying a source position.
func (f *Fault) At(line, column int) *Fault {
	if f == nil {
		return nil
	}
	out := *f
	out.Line = line
	out.Column = column
	return &out
}

// WithActual returns a copy of the fault carrying the observed value.
func (f *Fault) WithActual(actual string) *Fault {
	if f == nil {
		return nil
	}
	out := *f
	out.Actual = actual
	return &out
}

// WithExpected returns a copy of the fault carrying the accepted values.
func (f *Fault) WithExpected(expected ...string) *Fault {
	if f == nil {
		return nil
	}
	out := *f
	out.Expected = append([]string(nil), expected...)
	return &out
}

// NewFormatf builds a format fault.
func NewFormatf(code ErrorCode, format string, args ...any) *Fault {
	return &Fault{Kind: KindFormat, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewValidationf builds a validation fault.
func NewValidationf(code ErrorCode, format string, args ...any) *Fault {
	return &Fault{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewUsagef builds a usage fault.
func NewUsagef(code ErrorCode, format string, args ...any) *Fault {
	return &Fault{Kind: KindUsage, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a fault around an underlying cause.
func Wrap(kind Kind, code ErrorCode, err error, msg string) *Fault {
	return &Fault{Kind: kind, Code: code, Message: msg, Err: err}
}

// AsFault extracts the outermost fault from err.
func AsFault(err error) (*Fault, bool) {
	if err == nil {
		return nil, false
	}
	var f *Fault
	if errors.As(err, &f) && f != nil {
		return f, true
	}
	return nil, false
}

// IsFormat reports whether err carries a format fault.
func IsFormat(err error) bool {
	return hasKind(err, KindFormat)
}

// IsValidation reports whether err carries a validation fault.
func IsValidation(err error) bool {
	return hasKind(err, KindValidation)
}

// IsUsage reports whether err carries a usage fault.
func IsUsage(err error) bool {
	return hasKind(err, KindUsage)
}

// HasCode reports whether any fault in err's chain has the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		f, ok := AsFault(err)
		if !ok {
			return false
		}
		if f.Code == code {
			return true
		}
		err = f.Err
	}
	return false
}

func hasKind(err error, kind Kind) bool {
	f, ok := AsFault(err)
	return ok && f.Kind == kind
}
