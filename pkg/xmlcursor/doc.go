// Package xmlcursor provides a namespace-aware, positioned XML node cursor
// built on encoding/xml. Element and attribute names are interned into a
// NameTable so callers compare them by handle. The cursor supports a single
// level of lookahead: StartBuffering marks the current node, later reads are
// recorded, and StopBuffering rolls the cursor back to the mark.
package xmlcursor
