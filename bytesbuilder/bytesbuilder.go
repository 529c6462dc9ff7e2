// Package bytesbuilder assembles a JSON response body out of many small,
// already-encoded fragments without ever copying them into one contiguous
// buffer until the final write.
package bytesbuilder

import "io"

var (
	openBracket  = []byte{'['}
	closeBracket = []byte{']'}
	comma        = []byte{','}
)

// Builder is an ordered list of byte slices plus their running total
// length. Fragments are pushed in the order they should appear on the
// wire; nothing is copied or concatenated until WriteTo streams the
// whole thing out.
type Builder struct {
	parts    [][]byte
	totalLen int
}

// New returns an empty Builder, optionally pre-sized for n fragments.
func New(n int) *Builder {
	return &Builder{parts: make([][]byte, 0, n)}
}

// Push appends a fragment. The slice is retained, not copied: callers must
// not mutate it after pushing.
func (b *Builder) Push(p []byte) {
	if len(p) == 0 {
		return
	}
	b.parts = append(b.parts, p)
	b.totalLen += len(p)
}

// PushStatic appends a fragment known at compile time, e.g. a field-name
// literal such as `"number":`.
func (b *Builder) PushStatic(s string) {
	b.Push([]byte(s))
}

// Extend appends every fragment of other into b, in order.
func (b *Builder) Extend(other *Builder) {
	if other == nil {
		return
	}
	b.parts = append(b.parts, other.parts...)
	b.totalLen += other.totalLen
}

// PushJSONList wraps n items, each produced by emit(i), in `[...]` with
// `,` separators, without materializing the item byte slices into a
// single buffer first.
func (b *Builder) PushJSONList(n int, emit func(i int) []byte) {
	b.Push(openBracket)
	for i := 0; i < n; i++ {
		if i > 0 {
			b.Push(comma)
		}
		b.Push(emit(i))
	}
	b.Push(closeBracket)
}

// TotalLen returns the exact number of bytes WriteTo will write.
func (b *Builder) TotalLen() int {
	return b.totalLen
}

// Bytes concatenates every fragment into one slice. Prefer WriteTo for the
// HTTP response path; Bytes exists for call sites (tests, in-process
// embedding) that need a single []byte.
func (b *Builder) Bytes() []byte {
	out := make([]byte, 0, b.totalLen)
	for _, p := range b.parts {
		out = append(out, p...)
	}
	return out
}

// WriteTo streams every fragment to w in order, satisfying io.WriterTo so
// the HTTP server can pass a Builder straight to http.ResponseWriter
// without an intermediate allocation of the whole body.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, p := range b.parts {
		n, err := w.Write(p)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}
