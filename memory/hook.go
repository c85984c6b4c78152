package memory

// ReadPreHook rewrites the address of a read before the lookup.
type ReadPreHook func(addr uint32) uint32

// ReadPostHook rewrites the value returned by a read.
type ReadPostHook func(addr uint32, value uint32) uint32

// WriteHook rewrites both the address and the value of a write.
type WriteHook func(addr uint32, value uint32) (uint32, uint32)

// SizeHook rewrites the reported size.
type SizeHook func(size int) int

// Hook calls optional callbacks around the accesses to a wrapped store.
// With no hooks set it is a pure pass-through.
type Hook struct {
	Memory Memory

	ReadPre  ReadPreHook
	ReadPost ReadPostHook
	Write    WriteHook
	SizeOf   SizeHook
}

var _ Memory = (*Hook)(nil)

// NewHook wraps mem without any hooks.
func NewHook(mem Memory) *Hook {
	return &Hook{Memory: mem}
}

func (hm *Hook) Get(addr uint32) (value uint32, err error) {
	if hm.ReadPre != nil {
		addr = hm.ReadPre(addr)
	}

	value, err = hm.Memory.Get(addr)
	if err != nil {
		return
	}

	if hm.ReadPost != nil {
		value = hm.ReadPost(addr, value)
	}

	return
}

func (hm *Hook) Set(addr uint32, value uint32) (err error) {
	if hm.Write != nil {
		addr, value = hm.Write(addr, value)
	}

	return hm.Memory.Set(addr, value)
}

func (hm *Hook) Size() (size int) {
	size = hm.Memory.Size()
	if hm.SizeOf != nil {
		size = hm.SizeOf(size)
	}

	return
}
