package runtime

// String is an immutable character sequence. Its hash is computed once at
// construction over at most the first 8 characters using the rolling form
// h := 31*h + c.
type String struct {
	gcHeader
	value string
	hash  uint32
}

var _ Object = (*String)(nil)

func newString(m *ObjectManager, s string) *String {
	str := &String{value: s, hash: hashPrefix(s)}
	m.register(str)
	return str
}

func hashPrefix(s string) uint32 {
	var h uint32
	n := len(s)
	if n > 8 {
		n = 8
	}
	for i := 0; i < n; i++ {
		h = 31*h + uint32(s[i])
	}
	return h
}

func (s *String) String() string { return s.value }
func (s *String) Type() string   { return "string" }

func (s *String) forEachChild(func(Object)) {}

// Equal reports whether s and other hold the same character sequence.
func (s *String) Equal(other *String) bool {
	return s.value == other.value
}
