package compose

import "strings"

// Kind discriminates the two shapes a configuration value can take.
type Kind int

const (
	// KindScalar is a single string, number or bool, kept as its text.
	KindScalar Kind = iota

	// KindSequence is an ordered list of scalars.
	KindSequence
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// Value is a configuration value: a scalar or a sequence of scalars.
// The zero value is the empty scalar.
type Value struct {
	kind  Kind
	text  string
	items []string
}

// Scalar returns a scalar value holding text.
func Scalar(text string) Value {
	return Value{kind: KindScalar, text: text}
}

// Sequence returns a sequence value holding a copy of items.
func Sequence(items ...string) Value {
	return Value{kind: KindSequence, items: append([]string{}, items...)}
}

// Kind reports the shape of v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsSequence reports whether v is a sequence.
func (v Value) IsSequence() bool {
	return v.kind == KindSequence
}

// Text returns the scalar text. Sequences return their items joined by a comma.
func (v Value) Text() string {
	if v.kind == KindSequence {
		return strings.Join(v.items, ",")
	}
	return v.text
}

// Items returns the entries of v: the sequence items, or the scalar as a
// single entry. The returned slice is a copy.
func (v Value) Items() []string {
	if v.kind == KindSequence {
		return append([]string{}, v.items...)
	}
	return []string{v.text}
}

// Len returns the number of entries Items would return.
func (v Value) Len() int {
	if v.kind == KindSequence {
		return len(v.items)
	}
	return 1
}

// Concat returns a sequence of v's items followed by other's items.
func (v Value) Concat(other Value) Value {
	items := make([]string, 0, v.Len()+other.Len())
	items = append(items, v.Items()...)
	items = append(items, other.Items()...)
	return Value{kind: KindSequence, items: items}
}

// Equal reports whether v and other have the same kind and content.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == KindScalar {
		return v.text == other.text
	}
	if len(v.items) != len(other.items) {
		return false
	}
	for i := range v.items {
		if v.items[i] != other.items[i] {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (v Value) String() string {
	if v.kind == KindSequence {
		return "[" + strings.Join(v.items, ", ") + "]"
	}
	return v.text
}
