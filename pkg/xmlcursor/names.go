package xmlcursor

// Name is an interned name handle. Handles from the same NameTable compare
// equal exactly when their strings are equal. The zero Name is never issued
// and marks a name the table refused to intern.
type Name uint32

// NoName is the handle reported for names the table did not intern.
const NoName Name = 0

const nameTableRecentSize = 8

// NameTable interns strings into comparable handles.
// A NameTable is not safe for concurrent use.
type NameTable struct {
	table       map[string]Name
	names       []string
	recent      [nameTableRecentSize]nameTableEntry
	recentCount int
	recentIndex int
	maxEntries  int
}

type nameTableEntry struct {
	value string
	id    Name
}

// NewNameTable creates an empty table.
func NewNameTable() *NameTable {
	return &NameTable{
		table: make(map[string]Name, 32),
		names: []string{""},
	}
}

// Add interns value and returns its handle. Add always succeeds.
func (t *NameTable) Add(value string) Name {
	if id, ok := t.Lookup(value); ok {
		return id
	}
	return t.insert(value)
}

// Lookup returns the handle for value without interning it.
func (t *NameTable) Lookup(value string) (Name, bool) {
	if t == nil {
		return NoName, false
	}
	if id, ok := t.lookupRecent(value); ok {
		return id, true
	}
	if id, ok := t.table[value]; ok {
		t.rememberRecent(nameTableEntry{value: value, id: id})
		return id, true
	}
	return NoName, false
}

// String returns the string for a handle, or "" for NoName or unknown handles.
func (t *NameTable) String(id Name) string {
	if t == nil || int(id) >= len(t.names) {
		return ""
	}
	return t.names[id]
}

// Len reports the number of interned names.
func (t *NameTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.table)
}

// internBounded interns value unless the decoder-side limit is reached.
func (t *NameTable) internBounded(value string) Name {
	if id, ok := t.Lookup(value); ok {
		return id
	}
	if t.maxEntries > 0 && len(t.table) >= t.maxEntries {
		return NoName
	}
	return t.insert(value)
}

func (t *NameTable) insert(value string) Name {
	id := Name(len(t.names))
	t.names = append(t.names, value)
	t.table[value] = id
	t.rememberRecent(nameTableEntry{value: value, id: id})
	return id
}

func (t *NameTable) lookupRecent(value string) (Name, bool) {
	for idx := 0; idx < t.recentCount; idx++ {
		entry := t.recent[idx]
		if entry.value == value {
			return entry.id, true
		}
	}
	return NoName, false
}

func (t *NameTable) rememberRecent(entry nameTableEntry) {
	if t.recentCount < nameTableRecentSize {
		t.recent[t.recentCount] = entry
		t.recentCount++
		return
	}
	t.recent[t.recentIndex] = entry
	t.recentIndex++
	if t.recentIndex >= nameTableRecentSize {
		t.recentIndex = 0
	}
}
