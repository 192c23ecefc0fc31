package xmlcursor

import xmlerrors "github.com/OData/odata.net-sub101/errors"

// StartBuffering marks the current node. Nodes read until StopBuffering or
// CommitBuffering are recorded. Buffering does not nest.
func (c *Cursor) StartBuffering() error {
	if c.buffering {
		return xmlerrors.NewUsagef(xmlerrors.ErrCursorBuffering, "cursor is already buffering")
	}
	c.buffering = true
	c.record = append(c.record[:0], c.cur)
	c.recordAttr = c.attrIndex
	return nil
}

// StopBuffering rewinds to the node marked by StartBuffering. The recorded
// nodes are replayed by later calls to Read.
func (c *Cursor) StopBuffering() error {
	if !c.buffering {
		return xmlerrors.NewUsagef(xmlerrors.ErrCursorBuffering, "cursor is not buffering")
	}
	replay := make([]node, 0, len(c.record)-1+len(c.queue))
	replay = append(replay, c.record[1:]...)
	replay = append(replay, c.queue...)
	c.queue = replay
	c.cur = c.record[0]
	c.attrIndex = c.recordAttr
	c.record = nil
	c.buffering = false
	return nil
}

// CommitBuffering ends buffering and keeps the current position.
func (c *Cursor) CommitBuffering() error {
	if !c.buffering {
		return xmlerrors.NewUsagef(xmlerrors.ErrCursorBuffering, "cursor is not buffering")
	}
	c.record = nil
	c.buffering = false
	return nil
}

// IsBuffering reports whether a buffering mark is active.
func (c *Cursor) IsBuffering() bool {
	return c.buffering
}

// AssertNotBuffering returns a usage fault when a buffering mark is active.
func (c *Cursor) AssertNotBuffering() error {
	if c.buffering {
		line, column := c.Pos()
		return xmlerrors.NewUsagef(xmlerrors.ErrCursorBuffering, "cursor is buffering").At(line, column)
	}
	return nil
}
