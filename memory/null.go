package memory

// Null is an all-zero store spanning the usable address range. Writes are
// discarded.
type Null struct{}

var _ Memory = Null{}

func (Null) Get(addr uint32) (value uint32, err error) {
	return
}

func (Null) Set(addr uint32, value uint32) (err error) {
	return
}

func (Null) Size() int {
	return NULL_SIZE
}
