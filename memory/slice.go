package memory

// Slice is a fixed size, array backed store.
type Slice struct {
	Data []uint32
}

var _ Memory = (*Slice)(nil)

// NewSlice creates a zeroed store of size words.
func NewSlice(size int) *Slice {
	return &Slice{Data: make([]uint32, size)}
}

// NewSliceFrom creates a store backed by words.
func NewSliceFrom(words []uint32) *Slice {
	return &Slice{Data: words}
}

func (sm *Slice) Get(addr uint32) (value uint32, err error) {
	if uint64(addr) >= uint64(len(sm.Data)) {
		err = &ErrAddress{Addr: addr, Err: ErrOutOfBounds}
		return
	}

	value = sm.Data[addr]
	return
}

func (sm *Slice) Set(addr uint32, value uint32) (err error) {
	if uint64(addr) >= uint64(len(sm.Data)) {
		err = &ErrAddress{Addr: addr, Err: ErrOutOfBounds}
		return
	}

	sm.Data[addr] = value
	return
}

func (sm *Slice) Size() int {
	return len(sm.Data)
}
