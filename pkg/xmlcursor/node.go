package xmlcursor

// NodeKind identifies the kind of node the cursor is positioned on.
type NodeKind uint8

const (
	KindNone NodeKind = iota
	KindElement
	KindEndElement
	KindText
	KindWhitespace
	KindComment
	KindProcInst
	KindAttribute
	KindEOF
)

// String returns a stable name for the kind, suitable for debugging.
func (k NodeKind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindElement:
		return "Element"
	case KindEndElement:
		return "EndElement"
	case KindText:
		return "Text"
	case KindWhitespace:
		return "Whitespace"
	case KindComment:
		return "Comment"
	case KindProcInst:
		return "ProcInst"
	case KindAttribute:
		return "Attribute"
	case KindEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// Attr is a resolved attribute of an element node.
// Namespace declarations are not reported as attributes.
type Attr struct {
	Local     string
	Namespace string
	Value     string
	LocalID   Name
	SpaceID   Name
}

type node struct {
	local   string
	space   string
	value   string
	attrs   []Attr
	localID Name
	spaceID Name
	depth   int
	line    int
	column  int
	kind    NodeKind
	empty   bool
}
