package atom

import (
	"fmt"
	"io"
	"iter"
	"log/slog"

	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/internal/deserializer"
	"github.com/OData/odata.net-sub101/internal/state"
	"github.com/OData/odata.net-sub101/internal/validation"
	"github.com/OData/odata.net-sub101/pkg/model"
	"github.com/OData/odata.net-sub101/pkg/xmlcursor"
)

// State is the position of a CollectionReader in the payload.
type State uint8

const (
	StateStart State = iota
	StateCollectionStart
	StateValue
	StateCollectionEnd
	StateCompleted
)

var stateNames = [...]string{
	StateStart:           "Start",
	StateCollectionStart: "CollectionStart",
	StateValue:           "Value",
	StateCollectionEnd:   "CollectionEnd",
	StateCompleted:       "Completed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", s)
}

// scope is one reader stack frame. The root frame moves through Start,
// CollectionStart, CollectionEnd and Completed; a second frame holds the
// current item while the reader is in Value.
type scope struct {
	value   model.Value
	start   model.CollectionStart
	state   State
	isEmpty bool
}

const maxScopeDepth = 2

// CollectionReader is a pull reader over one collection payload.
// It is not safe for concurrent use.
type CollectionReader struct {
	err       error
	cur       *xmlcursor.Cursor
	des       *deserializer.CollectionDeserializer
	itemType  *model.TypeRef
	validator *validation.CollectionValidator
	logger    *slog.Logger
	scopes    state.StateStack[scope]
	items     int
}

// NewCollectionReader returns a reader positioned before the payload.
func NewCollectionReader(r io.Reader, opts ReaderOptions) (*CollectionReader, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("reader options: %w", err)
	}
	cur, err := xmlcursor.New(r, resolved.cursor)
	if err != nil {
		return nil, err
	}
	reader := &CollectionReader{
		cur:      cur,
		des:      deserializer.NewCollectionDeserializer(cur, resolved.filter),
		itemType: resolved.itemType,
		logger:   resolved.logger,
		scopes:   state.NewStateStack[scope](maxScopeDepth),
	}
	if reader.itemType == nil {
		reader.validator = validation.NewCollectionValidator()
	}
	reader.scopes.Push(scope{state: StateStart, value: model.Null()})
	return reader, nil
}

// State reports the reader's current state.
func (r *CollectionReader) State() State {
	top, _ := r.scopes.Peek()
	return top.state
}

// Current returns the value associated with the current state: the item in
// Value, the last item read in CollectionEnd. It reports false otherwise.
func (r *CollectionReader) Current() (model.Value, bool) {
	top, _ := r.scopes.Peek()
	switch top.state {
	case StateValue:
		return top.value, true
	case StateCollectionEnd:
		return top.value, r.items > 0
	default:
		return model.Null(), false
	}
}

// Item returns the current item while the reader is in Value, and the null
// value otherwise.
func (r *CollectionReader) Item() model.Value {
	top, _ := r.scopes.Peek()
	if top.state != StateValue {
		return model.Null()
	}
	return top.value
}

// Start returns the collection start read from the payload wrapper.
func (r *CollectionReader) Start() model.CollectionStart {
	root, _ := r.scopes.Bottom()
	return root.start
}

// Err returns the fault that stopped the reader, if any.
func (r *CollectionReader) Err() error {
	return r.err
}

// Read advances the reader by one state. It reports false once the reader
// reaches Completed. Every fault is terminal: later calls return a usage
// fault wrapping the first one.
func (r *CollectionReader) Read() (bool, error) {
	if r.err != nil {
		return false, xmlerrors.Wrap(xmlerrors.KindUsage, xmlerrors.ErrReaderFaulted, r.err, "reader is faulted")
	}
	top, _ := r.scopes.Peek()
	var err error
	switch top.state {
	case StateStart:
		err = r.readStart()
	case StateCollectionStart, StateValue:
		err = r.readNext(top)
	case StateCollectionEnd:
		err = r.readEnd()
	case StateCompleted:
		return false, xmlerrors.NewUsagef(xmlerrors.ErrReaderCompleted, "reader has already completed")
	}
	if err != nil {
		r.err = err
		r.logger.Debug("collection reader faulted", "state", top.state, "error", err)
		return false, err
	}
	if r.scopes.Len() > maxScopeDepth {
		r.err = xmlerrors.NewUsagef(xmlerrors.ErrReaderFaulted, "reader scope depth %d exceeds %d", r.scopes.Len(), maxScopeDepth)
		return false, r.err
	}
	next := r.State()
	if next != top.state || next == StateValue {
		r.logger.Debug("collection reader transition", "from", top.state, "to", next, "items", r.items)
	}
	return next != StateCompleted, nil
}

// All returns an iterator over the remaining items. Iteration stops at the
// end of the collection or after yielding the first fault.
func (r *CollectionReader) All() iter.Seq2[model.Value, error] {
	return func(yield func(model.Value, error) bool) {
		for r.State() != StateCompleted || r.err != nil {
			more, err := r.Read()
			if err != nil {
				yield(model.Null(), err)
				return
			}
			if r.State() == StateValue && !yield(r.Item(), nil) {
				return
			}
			if !more {
				return
			}
		}
	}
}

func (r *CollectionReader) readStart() error {
	if err := r.des.ReadPayloadStart(); err != nil {
		return err
	}
	start, isEmpty, err := r.des.ReadCollectionStart()
	if err != nil {
		return err
	}
	r.scopes.Replace(scope{state: StateCollectionStart, value: model.Null(), start: start, isEmpty: isEmpty})
	return nil
}

// readNext reads the next item or the end of the collection. From
// CollectionStart the item frame is pushed; from Value it is replaced.
func (r *CollectionReader) readNext(top scope) error {
	atEnd := r.rootEmpty()
	if !atEnd {
		var err error
		if atEnd, err = r.des.SkipToNextRelevantElement(); err != nil {
			return err
		}
	}
	if atEnd {
		if err := r.des.ReadCollectionEnd(); err != nil {
			return err
		}
		last := top.value
		if top.state == StateValue {
			r.scopes.Pop()
		}
		root, _ := r.scopes.Peek()
		root.state = StateCollectionEnd
		root.value = last
		r.scopes.Replace(root)
		return nil
	}

	item, err := r.des.ReadCollectionItem(r.itemType, r.validator)
	if err != nil {
		return err
	}
	r.items++
	frame := scope{state: StateValue, value: item}
	if top.state == StateValue {
		r.scopes.Replace(frame)
	} else {
		r.scopes.Push(frame)
	}
	return nil
}

func (r *CollectionReader) readEnd() error {
	if err := r.des.ReadPayloadEnd(); err != nil {
		return err
	}
	for r.scopes.Len() > 1 {
		r.scopes.Pop()
	}
	root, _ := r.scopes.Peek()
	root.state = StateCompleted
	root.value = model.Null()
	r.scopes.Replace(root)
	return nil
}

func (r *CollectionReader) rootEmpty() bool {
	root, _ := r.scopes.Bottom()
	return root.isEmpty
}
