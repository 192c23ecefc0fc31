package atom

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/internal/serializer"
	"github.com/OData/odata.net-sub101/internal/validation"
	"github.com/OData/odata.net-sub101/pkg/model"
)

// WriterState is the position of a CollectionWriter in its call sequence.
type WriterState uint8

const (
	WriterStart WriterState = iota
	WriterCollection
	WriterCompleted
	WriterError
)

var writerStateNames = [...]string{
	WriterStart:      "Start",
	WriterCollection: "Collection",
	WriterCompleted:  "Completed",
	WriterError:      "Error",
}

func (s WriterState) String() string {
	if int(s) < len(writerStateNames) {
		return writerStateNames[s]
	}
	return fmt.Sprintf("WriterState(%d)", s)
}

// CollectionWriter is a push writer for one collection payload. Calls must
// follow WriteStart, WriteItem*, WriteEnd. A failed call moves the writer
// to WriterError; nothing but Flush is accepted afterwards and no closing
// tags are written. It is not safe for concurrent use.
type CollectionWriter struct {
	err       error
	ser       *serializer.CollectionSerializer
	itemType  *model.TypeRef
	validator *validation.CollectionValidator
	logger    *slog.Logger
	pending   atomic.Bool
	state     WriterState
	items     int
}

// NewCollectionWriter returns a writer emitting to w.
func NewCollectionWriter(w io.Writer, opts WriterOptions) (*CollectionWriter, error) {
	if w == nil {
		return nil, xmlerrors.NewUsagef(xmlerrors.ErrWriterState, "nil writer")
	}
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("writer options: %w", err)
	}
	writer := &CollectionWriter{
		ser:      serializer.NewCollectionSerializer(w, resolved.config),
		itemType: resolved.itemType,
		logger:   resolved.logger,
	}
	if writer.itemType == nil {
		writer.validator = validation.NewCollectionValidator()
	}
	return writer, nil
}

// State reports the writer's current state.
func (w *CollectionWriter) State() WriterState {
	return w.state
}

// Err returns the fault that stopped the writer, if any.
func (w *CollectionWriter) Err() error {
	return w.err
}

// WriteStart writes the XML declaration and the payload wrapper.
func (w *CollectionWriter) WriteStart(start model.CollectionStart) error {
	if err := w.enter(WriterStart, "WriteStart"); err != nil {
		return err
	}
	if err := w.ser.WritePayloadStart(); err != nil {
		return w.fail(err)
	}
	if err := w.ser.WriteCollectionStart(start); err != nil {
		return w.fail(err)
	}
	w.transition(WriterCollection)
	return nil
}

// WriteItem validates and writes one item. An item that fails validation
// leaves no bytes in the output.
func (w *CollectionWriter) WriteItem(item model.Value) error {
	if err := w.enter(WriterCollection, "WriteItem"); err != nil {
		return err
	}
	if err := w.ser.WriteItem(item, w.itemType, w.validator); err != nil {
		return w.fail(fmt.Errorf("item %d: %w", w.items, err))
	}
	w.items++
	return nil
}

// WriteEnd closes the payload wrapper and flushes.
func (w *CollectionWriter) WriteEnd() error {
	if err := w.enter(WriterCollection, "WriteEnd"); err != nil {
		return err
	}
	if err := w.ser.WriteCollectionEnd(); err != nil {
		return w.fail(err)
	}
	if err := w.ser.WritePayloadEnd(); err != nil {
		return w.fail(err)
	}
	w.transition(WriterCompleted)
	return nil
}

// Flush writes buffered output. It is valid in every state, including
// after a fault, and repeats harmlessly.
func (w *CollectionWriter) Flush() error {
	if !w.pending.CompareAndSwap(false, true) {
		return xmlerrors.NewUsagef(xmlerrors.ErrFlushPending, "flush already pending")
	}
	defer w.pending.Store(false)
	return w.ser.Flush()
}

// FlushAsync flushes on a separate goroutine and delivers exactly one
// result on the returned channel. No other writer call is accepted until
// that result is sent. A context that is already done skips the flush.
func (w *CollectionWriter) FlushAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	if !w.pending.CompareAndSwap(false, true) {
		done <- xmlerrors.NewUsagef(xmlerrors.ErrFlushPending, "flush already pending")
		return done
	}
	go func() {
		err := ctx.Err()
		if err == nil {
			err = w.ser.Flush()
		}
		// Released before the send so the receiver may write immediately.
		w.pending.Store(false)
		done <- err
	}()
	return done
}

// enter checks that a write call is allowed in the current state.
func (w *CollectionWriter) enter(want WriterState, op string) error {
	if w.pending.Load() {
		return xmlerrors.NewUsagef(xmlerrors.ErrFlushPending, "%s called while a flush is pending", op)
	}
	switch w.state {
	case want:
		return nil
	case WriterError:
		return xmlerrors.Wrap(xmlerrors.KindUsage, xmlerrors.ErrWriterFaulted, w.err, op+" called on a faulted writer")
	default:
		return w.fail(xmlerrors.NewUsagef(xmlerrors.ErrWriterState, "%s called in state %s", op, w.state).
			WithExpected(want.String()).WithActual(w.state.String()))
	}
}

func (w *CollectionWriter) fail(err error) error {
	w.logger.Debug("collection writer faulted", "state", w.state, "items", w.items, "error", err)
	w.err = err
	w.state = WriterError
	return err
}

func (w *CollectionWriter) transition(next WriterState) {
	w.logger.Debug("collection writer transition", "from", w.state, "to", next, "items", w.items)
	w.state = next
}
