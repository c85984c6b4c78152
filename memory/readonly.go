package memory

// ReadOnly wraps a store and silently discards all writes to it.
type ReadOnly struct {
	Memory
}

var _ Memory = (*ReadOnly)(nil)

// NewReadOnly wraps mem.
func NewReadOnly(mem Memory) *ReadOnly {
	return &ReadOnly{Memory: mem}
}

func (rm *ReadOnly) Set(addr uint32, value uint32) (err error) {
	return
}
