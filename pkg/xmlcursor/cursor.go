package xmlcursor

import (
	"io"

	xmlerrors "github.com/OData/odata.net-sub101/errors"
)

// Cursor is a forward-only XML node reader with attribute navigation and a
// single level of rollback.
// A Cursor is not safe for concurrent use.
type Cursor struct {
	err        error
	src        *source
	names      *NameTable
	queue      []node
	record     []node
	cur        node
	attrIndex  int
	recordAttr int
	buffering  bool
}

// New creates a cursor over r positioned before the first node.
func New(r io.Reader, opts ...Options) (*Cursor, error) {
	return NewWithNames(r, nil, opts...)
}

// NewWithNames creates a cursor that interns names into names.
// A nil table allocates a fresh one.
func NewWithNames(r io.Reader, names *NameTable, opts ...Options) (*Cursor, error) {
	if r == nil {
		return nil, xmlerrors.NewUsagef(xmlerrors.ErrUnexpectedNode, "nil reader")
	}
	resolved := resolveOptions(opts...)
	if names == nil {
		names = NewNameTable()
	}
	if resolved.maxNameEntries > 0 && (names.maxEntries == 0 || resolved.maxNameEntries < names.maxEntries) {
		names.maxEntries = resolved.maxNameEntries
	}
	return &Cursor{
		src:       newSource(r, names, resolved),
		names:     names,
		attrIndex: -1,
	}, nil
}

// NameTable returns the table used to intern names.
func (c *Cursor) NameTable() *NameTable {
	return c.names
}

// Read advances to the next node. It returns false at end of input.
// After an error every later call returns the same error.
func (c *Cursor) Read() (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	if c.cur.kind == KindEOF && len(c.queue) == 0 {
		return false, nil
	}
	var next node
	if len(c.queue) > 0 {
		next = c.queue[0]
		c.queue = c.queue[1:]
	} else {
		n, err := c.src.next()
		if err != nil {
			c.err = err
			return false, err
		}
		next = n
	}
	c.cur = next
	c.attrIndex = -1
	if c.buffering {
		c.record = append(c.record, next)
	}
	return next.kind != KindEOF, nil
}

// NodeKind reports the kind of the current node.
func (c *Cursor) NodeKind() NodeKind {
	if c.attrIndex >= 0 {
		return KindAttribute
	}
	return c.cur.kind
}

// LocalName returns the interned local name of the current element or attribute.
func (c *Cursor) LocalName() Name {
	if c.attrIndex >= 0 {
		return c.cur.attrs[c.attrIndex].LocalID
	}
	return c.cur.localID
}

// NamespaceURI returns the interned namespace of the current element or attribute.
func (c *Cursor) NamespaceURI() Name {
	if c.attrIndex >= 0 {
		return c.cur.attrs[c.attrIndex].SpaceID
	}
	return c.cur.spaceID
}

// LocalNameString returns the local name as a string.
func (c *Cursor) LocalNameString() string {
	if c.attrIndex >= 0 {
		return c.cur.attrs[c.attrIndex].Local
	}
	return c.cur.local
}

// NamespaceURIString returns the namespace URI as a string.
func (c *Cursor) NamespaceURIString() string {
	if c.attrIndex >= 0 {
		return c.cur.attrs[c.attrIndex].Namespace
	}
	return c.cur.space
}

// Value returns the text of a text, whitespace, comment or processing
// instruction node, or the value of the current attribute.
func (c *Cursor) Value() string {
	if c.attrIndex >= 0 {
		return c.cur.attrs[c.attrIndex].Value
	}
	return c.cur.value
}

// IsEmptyElement reports whether the current element was written self-closing.
// No EndElement node follows an empty element.
func (c *Cursor) IsEmptyElement() bool {
	return c.attrIndex < 0 && c.cur.kind == KindElement && c.cur.empty
}

// Depth returns the nesting depth of the current node. The root element is at depth 0.
func (c *Cursor) Depth() int {
	if c.attrIndex >= 0 {
		return c.cur.depth + 1
	}
	return c.cur.depth
}

// Pos returns the 1-based line and column where the current node starts.
func (c *Cursor) Pos() (line, column int) {
	return c.cur.line, c.cur.column
}

// AttributeCount returns the number of attributes on the current element.
func (c *Cursor) AttributeCount() int {
	if c.cur.kind != KindElement {
		return 0
	}
	return len(c.cur.attrs)
}

// Attrs returns the attributes of the current element. Callers must not
// modify the returned slice.
func (c *Cursor) Attrs() []Attr {
	if c.cur.kind != KindElement {
		return nil
	}
	return c.cur.attrs
}

// MoveToNextAttribute moves to the next attribute of the current element.
func (c *Cursor) MoveToNextAttribute() bool {
	if c.cur.kind != KindElement || c.attrIndex+1 >= len(c.cur.attrs) {
		return false
	}
	c.attrIndex++
	return true
}

// MoveToElement moves from an attribute back to its element.
func (c *Cursor) MoveToElement() bool {
	if c.attrIndex < 0 {
		return false
	}
	c.attrIndex = -1
	return true
}

// GetAttribute returns the value of the attribute with the given interned
// local name and namespace on the current element.
func (c *Cursor) GetAttribute(local, space Name) (string, bool) {
	if c.cur.kind != KindElement {
		return "", false
	}
	for i := range c.cur.attrs {
		attr := &c.cur.attrs[i]
		if c.nameMatches(attr.LocalID, attr.Local, local) && c.nameMatches(attr.SpaceID, attr.Namespace, space) {
			return attr.Value, true
		}
	}
	return "", false
}

// GetAttributeString is GetAttribute keyed by strings.
func (c *Cursor) GetAttributeString(local, space string) (string, bool) {
	if c.cur.kind != KindElement {
		return "", false
	}
	for i := range c.cur.attrs {
		attr := &c.cur.attrs[i]
		if attr.Local == local && attr.Namespace == space {
			return attr.Value, true
		}
	}
	return "", false
}

func (c *Cursor) nameMatches(id Name, value string, want Name) bool {
	if id != NoName {
		return id == want
	}
	return value == c.names.String(want) && want != NoName
}

// Is reports whether the current element or attribute has the given interned name.
func (c *Cursor) Is(local, space Name) bool {
	if c.attrIndex >= 0 {
		attr := &c.cur.attrs[c.attrIndex]
		return c.nameMatches(attr.LocalID, attr.Local, local) && c.nameMatches(attr.SpaceID, attr.Namespace, space)
	}
	return c.nameMatches(c.cur.localID, c.cur.local, local) && c.nameMatches(c.cur.spaceID, c.cur.space, space)
}

// Skip moves past the current node. On a non-empty element the whole
// subtree is consumed, including its end tag.
func (c *Cursor) Skip() error {
	c.attrIndex = -1
	if c.cur.kind == KindElement && !c.cur.empty {
		depth := c.cur.depth
		for {
			ok, err := c.Read()
			if err != nil {
				return err
			}
			if !ok {
				return c.unexpectedEOF()
			}
			if c.cur.kind == KindEndElement && c.cur.depth == depth {
				break
			}
		}
	}
	_, err := c.Read()
	return err
}

// Err returns the latched read error, if any.
func (c *Cursor) Err() error {
	return c.err
}

func (c *Cursor) unexpectedEOF() error {
	line, column := c.Pos()
	c.err = xmlerrors.Wrap(xmlerrors.KindFormat, xmlerrors.ErrXMLSyntax, io.ErrUnexpectedEOF, "input ended inside element").At(line, column)
	return c.err
}
