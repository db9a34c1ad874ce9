package token

// KindSet is a set of token kinds.
type KindSet [2]uint64

// NewSet builds a set holding kinds.
func NewSet(kinds ...Kind) KindSet {
	var s KindSet
	return s.With(kinds...)
}

// Has reports whether k is in the set.
func (s KindSet) Has(k Kind) bool {
	return s[k>>6]&(1<<(k&63)) != 0
}

// With returns a copy of the set extended with kinds.
func (s KindSet) With(kinds ...Kind) KindSet {
	for _, k := range kinds {
		s[k>>6] |= 1 << (k & 63)
	}
	return s
}

// Without returns a copy of the set with kinds removed.
func (s KindSet) Without(kinds ...Kind) KindSet {
	for _, k := range kinds {
		s[k>>6] &^= 1 << (k & 63)
	}
	return s
}

// Union returns the union of s and other.
func (s KindSet) Union(other KindSet) KindSet {
	return KindSet{s[0] | other[0], s[1] | other[1]}
}

var _ = [1]struct{}{}[kindCount>>7] // KindSet holds at most 128 kinds
