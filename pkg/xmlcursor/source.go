package xmlcursor

import (
	"bufio"
	"encoding/xml"
	"errors"
	"io"
	"strings"

	xmlerrors "github.com/OData/odata.net-sub101/errors"
)

const sourceBufferSize = 64 * 1024

// trackingReader remembers the last bytes handed to the decoder so a start
// tag can be classified as self-closing after it is tokenized.
type trackingReader struct {
	r    *bufio.Reader
	tail [2]byte
}

func (t *trackingReader) ReadByte() (byte, error) {
	b, err := t.r.ReadByte()
	if err != nil {
		return b, err
	}
	t.tail[0] = t.tail[1]
	t.tail[1] = b
	return b, nil
}

func (t *trackingReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	for _, b := range p[:n] {
		t.tail[0] = t.tail[1]
		t.tail[1] = b
	}
	return n, err
}

func (t *trackingReader) endsSelfClosing() bool {
	return t.tail[0] == '/' && t.tail[1] == '>'
}

type rawEvent struct {
	tok    xml.Token
	line   int
	column int
	empty  bool
}

// source turns encoding/xml tokens into cursor nodes: self-closing elements
// become a single empty element, adjacent character data is coalesced, and
// ignorable tokens are dropped.
type source struct {
	dec        *xml.Decoder
	in         *trackingReader
	names      *NameTable
	pending    []rawEvent
	opts       resolvedOptions
	depth      int
	swallowEnd int
	done       bool
}

func newSource(r io.Reader, names *NameTable, opts resolvedOptions) *source {
	in := &trackingReader{r: bufio.NewReaderSize(r, sourceBufferSize)}
	dec := xml.NewDecoder(in)
	dec.Strict = opts.strict
	return &source{
		dec:   dec,
		in:    in,
		names: names,
		opts:  opts,
	}
}

func (s *source) readRaw() (rawEvent, error) {
	if len(s.pending) > 0 {
		ev := s.pending[0]
		s.pending = s.pending[1:]
		return ev, nil
	}
	for {
		line, column := s.dec.InputPos()
		tok, err := s.dec.Token()
		if err != nil {
			return rawEvent{}, err
		}
		if _, ok := tok.(xml.EndElement); ok && s.swallowEnd > 0 {
			s.swallowEnd--
			continue
		}
		ev := rawEvent{tok: xml.CopyToken(tok), line: line, column: column}
		if _, ok := tok.(xml.StartElement); ok && s.in.endsSelfClosing() {
			ev.empty = true
			s.swallowEnd++
		}
		return ev, nil
	}
}

func (s *source) unread(ev rawEvent) {
	s.pending = append([]rawEvent{ev}, s.pending...)
}

func (s *source) next() (node, error) {
	if s.done {
		return node{kind: KindEOF}, nil
	}
	for {
		ev, err := s.readRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.done = true
				if s.depth > 0 {
					return node{}, s.syntaxFault(io.ErrUnexpectedEOF)
				}
				return node{kind: KindEOF}, nil
			}
			return node{}, s.syntaxFault(err)
		}
		switch tok := ev.tok.(type) {
		case xml.StartElement:
			return s.startNode(tok, ev)
		case xml.EndElement:
			s.depth--
			return node{
				kind:    KindEndElement,
				local:   tok.Name.Local,
				space:   tok.Name.Space,
				localID: s.names.internBounded(tok.Name.Local),
				spaceID: s.names.internBounded(tok.Name.Space),
				depth:   s.depth,
				line:    ev.line,
				column:  ev.column,
			}, nil
		case xml.CharData:
			return s.textNode(tok, ev)
		case xml.Comment:
			if !s.opts.emitComments {
				continue
			}
			return node{kind: KindComment, value: string(tok), depth: s.depth, line: ev.line, column: ev.column}, nil
		case xml.ProcInst:
			if tok.Target == "xml" || !s.opts.emitProcInst {
				continue
			}
			return node{kind: KindProcInst, local: tok.Target, value: string(tok.Inst), depth: s.depth, line: ev.line, column: ev.column}, nil
		default:
			continue
		}
	}
}

func (s *source) startNode(tok xml.StartElement, ev rawEvent) (node, error) {
	if s.opts.maxDepth > 0 && s.depth+1 > s.opts.maxDepth {
		return node{}, xmlerrors.NewFormatf(xmlerrors.ErrDepthLimit,
			"element %s exceeds maximum depth %d", tok.Name.Local, s.opts.maxDepth).At(ev.line, ev.column)
	}
	n := node{
		kind:    KindElement,
		local:   tok.Name.Local,
		space:   tok.Name.Space,
		localID: s.names.internBounded(tok.Name.Local),
		spaceID: s.names.internBounded(tok.Name.Space),
		depth:   s.depth,
		line:    ev.line,
		column:  ev.column,
		empty:   ev.empty,
	}
	for _, attr := range tok.Attr {
		if isNamespaceDecl(attr.Name) {
			continue
		}
		n.attrs = append(n.attrs, Attr{
			Local:     attr.Name.Local,
			Namespace: attr.Name.Space,
			Value:     attr.Value,
			LocalID:   s.names.internBounded(attr.Name.Local),
			SpaceID:   s.names.internBounded(attr.Name.Space),
		})
	}
	if !ev.empty {
		s.depth++
	}
	return n, nil
}

func (s *source) textNode(first xml.CharData, ev rawEvent) (node, error) {
	var b strings.Builder
	b.Write(first)
	for {
		next, err := s.readRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return node{}, s.syntaxFault(err)
		}
		data, ok := next.tok.(xml.CharData)
		if !ok {
			s.unread(next)
			break
		}
		b.Write(data)
	}
	text := b.String()
	kind := KindText
	if isXMLWhitespace(text) {
		kind = KindWhitespace
	}
	return node{kind: kind, value: text, depth: s.depth, line: ev.line, column: ev.column}, nil
}

func (s *source) syntaxFault(err error) error {
	line, column := s.dec.InputPos()
	var syntaxErr *xml.SyntaxError
	if errors.As(err, &syntaxErr) {
		line = syntaxErr.Line
	}
	f := xmlerrors.Wrap(xmlerrors.KindFormat, xmlerrors.ErrXMLSyntax, err, "malformed XML")
	f.Line = line
	f.Column = column
	return f
}

func isNamespaceDecl(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}

func isXMLWhitespace(text string) bool {
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\r', '\n':
		default:
			return false
		}
	}
	return true
}
