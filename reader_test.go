package atom

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	xmlerrors "github.com/OData/odata.net-sub101/errors"
	"github.com/OData/odata.net-sub101/pkg/model"
)

const nsDecl = `xmlns:m="http://docs.oasis-open.org/odata/ns/metadata" xmlns:d="http://docs.oasis-open.org/odata/ns/data"`

func payload(body string) string {
	return `<?xml version="1.0" encoding="utf-8"?><m:value ` + nsDecl + `>` + body + `</m:value>`
}

func newTestReader(t *testing.T, input string, opts ReaderOptions) *CollectionReader {
	t.Helper()
	r, err := NewCollectionReader(strings.NewReader(input), opts)
	if err != nil {
		t.Fatalf("NewCollectionReader() error = %v", err)
	}
	return r
}

// drive reads to completion and records the state after every call.
func drive(t *testing.T, r *CollectionReader) ([]State, []bool) {
	t.Helper()
	var states []State
	var results []bool
	for range 100 {
		more, err := r.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		if r.scopes.Len() > maxScopeDepth {
			t.Fatalf("scope depth = %d, want <= %d", r.scopes.Len(), maxScopeDepth)
		}
		states = append(states, r.State())
		results = append(results, more)
		if !more {
			return states, results
		}
	}
	t.Fatalf("reader did not complete")
	return nil, nil
}

func TestReaderEmptyPayloadSequence(t *testing.T) {
	inputs := map[string]string{
		"self-closing":       `<m:value ` + nsDecl + `/>`,
		"open and close":     `<m:value ` + nsDecl + `></m:value>`,
		"skippable content":  payload(`  <!-- none --> <x:other xmlns:x="urn:x"/>`),
		"declaration and ws": "<?xml version=\"1.0\"?>\n<m:value " + nsDecl + "/>\n",
	}
	wantStates := []State{StateCollectionStart, StateCollectionEnd, StateCompleted}
	wantResults := []bool{true, true, false}

	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			r := newTestReader(t, input, NewReaderOptions())
			if r.State() != StateStart {
				t.Fatalf("State() = %s, want Start", r.State())
			}
			states, results := drive(t, r)
			if diff := cmp.Diff(wantStates, states); diff != "" {
				t.Fatalf("states mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(wantResults, results); diff != "" {
				t.Fatalf("results mismatch (-want +got):\n%s", diff)
			}
			if _, ok := r.Current(); ok {
				t.Fatalf("Current() ok = true after empty payload")
			}
		})
	}
}

func TestReaderItemSequence(t *testing.T) {
	r := newTestReader(t, payload(`<m:element>1</m:element><m:element m:null="true"/><m:element>3</m:element>`),
		NewReaderOptions().WithItemType(model.PrimitiveType(model.PrimitiveInt32, true)))

	var items []model.Value
	var states []State
	for {
		more, err := r.Read()
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		states = append(states, r.State())
		if r.State() == StateValue {
			items = append(items, r.Item())
		}
		if !more {
			break
		}
	}

	want := []model.Value{model.Int32(1), model.Null(), model.Int32(3)}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	wantStates := []State{StateCollectionStart, StateValue, StateValue, StateValue, StateCollectionEnd, StateCompleted}
	if diff := cmp.Diff(wantStates, states); diff != "" {
		t.Fatalf("states mismatch (-want +got):\n%s", diff)
	}
}

func TestReaderCollectionEndKeepsLastItem(t *testing.T) {
	r := newTestReader(t, payload(`<m:element>a</m:element><m:element>b</m:element>`), NewReaderOptions())
	for r.State() != StateCollectionEnd {
		if _, err := r.Read(); err != nil {
			t.Fatalf("Read() error = %v", err)
		}
	}
	got, ok := r.Current()
	if !ok || !cmp.Equal(got, model.String("b")) {
		t.Fatalf("Current() = %+v, %v; want last item", got, ok)
	}
	if item := r.Item(); !item.IsNull() {
		t.Fatalf("Item() = %+v outside Value, want null", item)
	}
}

func TestReaderAfterCompleted(t *testing.T) {
	r := newTestReader(t, `<m:value `+nsDecl+`/>`, NewReaderOptions())
	drive(t, r)
	for range 2 {
		more, err := r.Read()
		if more || !xmlerrors.IsUsage(err) || !xmlerrors.HasCode(err, xmlerrors.ErrReaderCompleted) {
			t.Fatalf("Read() after completion = %v, %v; want usage fault %s", more, err, xmlerrors.ErrReaderCompleted)
		}
	}
	if r.Err() != nil {
		t.Fatalf("Err() = %v after completed reader misuse, want nil", r.Err())
	}
}

func TestReaderFaultLatch(t *testing.T) {
	r := newTestReader(t, payload(`<m:elementX>1</m:elementX>`), NewReaderOptions())
	if _, err := r.Read(); err != nil {
		t.Fatalf("first Read() error = %v", err)
	}
	_, err := r.Read()
	if !xmlerrors.IsFormat(err) || !xmlerrors.HasCode(err, xmlerrors.ErrInvalidItemElement) {
		t.Fatalf("Read() error = %v, want %s", err, xmlerrors.ErrInvalidItemElement)
	}
	fault, ok := xmlerrors.AsFault(err)
	if !ok || fault.Actual != "elementX" || !strings.Contains(fault.Error(), "http://docs.oasis-open.org/odata/ns/metadata") {
		t.Fatalf("fault = %v, want actual elementX and the metadata namespace", err)
	}

	for range 2 {
		_, again := r.Read()
		if !xmlerrors.IsUsage(again) || !xmlerrors.HasCode(again, xmlerrors.ErrReaderFaulted) {
			t.Fatalf("Read() after fault = %v, want %s", again, xmlerrors.ErrReaderFaulted)
		}
		if !xmlerrors.HasCode(again, xmlerrors.ErrInvalidItemElement) {
			t.Fatalf("Read() after fault = %v, want it to wrap the original fault", again)
		}
	}
}

func TestReaderFaults(t *testing.T) {
	tests := []struct {
		opts  ReaderOptions
		name  string
		input string
		code  xmlerrors.ErrorCode
	}{
		{
			name:  "root namespace",
			input: `<value xmlns="urn:other"/>`,
			code:  xmlerrors.ErrInvalidCollectionNamespace,
		},
		{
			name:  "type on root",
			input: `<m:value ` + nsDecl + ` m:type="#Collection(String)"/>`,
			code:  xmlerrors.ErrTypeOnCollection,
		},
		{
			name:  "mixed shapes",
			input: payload(`<m:element m:type="Int32">1</m:element><m:element><d:A>x</d:A></m:element>`),
			code:  xmlerrors.ErrIncompatibleItemKind,
		},
		{
			name:  "duplicate property",
			input: payload(`<m:element><d:A>1</d:A><d:A>2</d:A></m:element>`),
			code:  xmlerrors.ErrDuplicateProperty,
		},
		{
			name:  "null for non-nullable type",
			input: payload(`<m:element m:null="true"/>`),
			opts:  NewReaderOptions().WithItemType(model.PrimitiveType(model.PrimitiveInt32, false)),
			code:  xmlerrors.ErrNullNotAllowed,
		},
		{
			name:  "depth limit",
			input: payload(`<m:element><d:A><d:B><d:C>x</d:C></d:B></d:A></m:element>`),
			opts:  NewReaderOptions().WithMaxDepth(3),
			code:  xmlerrors.ErrDepthLimit,
		},
		{
			name:  "content after root",
			input: payload(``) + `tail`,
			code:  xmlerrors.ErrContentAfterRoot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestReader(t, tt.input, tt.opts)
			var err error
			for range 20 {
				var more bool
				if more, err = r.Read(); err != nil || !more {
					break
				}
			}
			if !xmlerrors.HasCode(err, tt.code) {
				t.Fatalf("Read() error = %v, want %s", err, tt.code)
			}
			if r.Err() == nil {
				t.Fatalf("Err() = nil after fault")
			}
		})
	}
}

func TestReaderAllStopsEarly(t *testing.T) {
	r := newTestReader(t, payload(`<m:element>a</m:element><m:element>b</m:element><m:element>c</m:element>`), NewReaderOptions())
	var got []model.Value
	for item, err := range r.All() {
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		got = append(got, item)
		if len(got) == 2 {
			break
		}
	}
	if r.State() != StateValue {
		t.Fatalf("State() = %s after break, want Value", r.State())
	}
	for item, err := range r.All() {
		if err != nil {
			t.Fatalf("All() error = %v", err)
		}
		got = append(got, item)
	}
	want := []model.Value{model.String("a"), model.String("b"), model.String("c")}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
	if r.State() != StateCompleted {
		t.Fatalf("State() = %s, want Completed", r.State())
	}
}

func TestReaderAnnotationFilter(t *testing.T) {
	input := payload(`<m:element><m:annotation term="NS.Keep" int="1"/><m:annotation term="NS.Skip" int="2"/><d:A>x</d:A></m:element>`)
	tests := []struct {
		name string
		opts ReaderOptions
		want []model.InstanceAnnotation
	}{
		{name: "default drops annotations", opts: NewReaderOptions()},
		{
			name: "filter selects",
			opts: NewReaderOptions().WithAnnotationFilter("NS.*", "-NS.Skip"),
			want: []model.InstanceAnnotation{{Term: "NS.Keep", Value: model.Int64(1)}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ReadAll(strings.NewReader(input), tt.opts)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if len(items) != 1 || items[0].Kind != model.KindComplex {
				t.Fatalf("items = %+v, want one complex item", items)
			}
			if diff := cmp.Diff(tt.want, items[0].Complex.Annotations); diff != "" {
				t.Fatalf("annotations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReaderOptionsValidate(t *testing.T) {
	tests := []struct {
		name string
		opts ReaderOptions
	}{
		{name: "negative depth", opts: NewReaderOptions().WithMaxDepth(-1)},
		{name: "negative names", opts: NewReaderOptions().WithMaxNameEntries(-1)},
		{name: "bad filter", opts: NewReaderOptions().WithAnnotationFilter("NS*")},
		{name: "collection item type", opts: NewReaderOptions().WithItemType(model.CollectionType(model.PrimitiveType(model.PrimitiveString, true)))},
		{name: "complex without declaration", opts: NewReaderOptions().WithItemType(&model.TypeRef{Kind: model.KindComplex})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.Validate(); err == nil {
				t.Fatalf("Validate() error = nil")
			}
			if _, err := NewCollectionReader(strings.NewReader(""), tt.opts); err == nil {
				t.Fatalf("NewCollectionReader() error = nil")
			}
		})
	}
	if err := NewReaderOptions().Validate(); err != nil {
		t.Fatalf("default Validate() error = %v", err)
	}
}
