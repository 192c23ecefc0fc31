// Package atom reads and writes collection payloads in the Atom/XML wire
// format.
//
// A payload is an m:value wrapper in the metadata namespace holding zero or
// more m:element items. Each item is null, a primitive or a complex value
// whose properties live in the data namespace. CollectionReader exposes the
// payload as a pull state machine; CollectionWriter is its push mirror.
package atom

import (
	"fmt"
	"io"

	"github.com/OData/odata.net-sub101/pkg/model"
)

// ReadAll reads every item of the payload in r.
func ReadAll(r io.Reader, opts ReaderOptions) ([]model.Value, error) {
	reader, err := NewCollectionReader(r, opts)
	if err != nil {
		return nil, err
	}
	var items []model.Value
	for item, err := range reader.All() {
		if err != nil {
			return items, fmt.Errorf("read collection: %w", err)
		}
		items = append(items, item)
	}
	return items, nil
}

// WriteAll writes items as one complete payload to w.
func WriteAll(w io.Writer, items []model.Value, opts WriterOptions) error {
	writer, err := NewCollectionWriter(w, opts)
	if err != nil {
		return err
	}
	if err := writer.WriteStart(model.CollectionStart{}); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	for _, item := range items {
		if err := writer.WriteItem(item); err != nil {
			if flushErr := writer.Flush(); flushErr != nil {
				return fmt.Errorf("write collection: %w (flush: %v)", err, flushErr)
			}
			return fmt.Errorf("write collection: %w", err)
		}
	}
	if err := writer.WriteEnd(); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}
