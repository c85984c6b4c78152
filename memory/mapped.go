// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package memory

import (
	"iter"
	"slices"
)

// Token references a single mounted Entry of a Mapped.
// The zero Token never references an Entry.
type Token struct {
	id uint64
}

// Entry is the metadata of one mounted store.
type Entry struct {
	Base    uint32 // First address covered.
	Size    int    // Words covered, fixed at mount time.
	Enabled bool   // Participates in address resolution.

	memory Memory
	token  Token
}

// Contains returns true if addr is within the span of the entry.
func (entry *Entry) Contains(addr uint32) bool {
	return addr >= entry.Base && uint64(addr) < entry.end()
}

func (entry *Entry) end() uint64 {
	return uint64(entry.Base) + uint64(entry.Size)
}

// Mapped overlays multiple stores into a single address space.
//
// Among the enabled entries covering an address, the one mounted last is
// authoritative. Mount a Null store first to give every address a defined
// value.
type Mapped struct {
	Align uint32 // Required base alignment, in words. Zero is treated as 1.

	entries []Entry
	lastId  uint64
}

var _ Memory = (*Mapped)(nil)

// NewMapped creates an empty address space.
func NewMapped() *Mapped {
	return &Mapped{}
}

// Mount takes ownership of mem, and maps it at base.
func (mm *Mapped) Mount(base uint32, mem Memory) (token Token, err error) {
	align := max(mm.Align, 1)
	if base%align != 0 {
		err = &ErrAddress{Addr: base, Err: ErrMountAlign}
		return
	}

	size := mem.Size()
	if size < 0 || uint64(base)+uint64(size) > (uint64(1)<<32) {
		err = &ErrAddress{Addr: base, Err: ErrMountRange}
		return
	}

	mm.lastId++
	token = Token{id: mm.lastId}

	mm.entries = append(mm.entries, Entry{
		Base:    base,
		Size:    size,
		Enabled: true,
		memory:  mem,
		token:   token,
	})

	return
}

// Unmount removes the entry for token, returning ownership of its store.
func (mm *Mapped) Unmount(token Token) (mem Memory, err error) {
	index, err := mm.find(token)
	if err != nil {
		return
	}

	mem = mm.entries[index].memory
	mm.entries = slices.Delete(mm.entries, index, index+1)

	return
}

// Enable restores the entry for token to address resolution.
func (mm *Mapped) Enable(token Token) (err error) {
	return mm.setEnabled(token, true)
}

// Disable removes the entry for token from address resolution, without
// releasing its store.
func (mm *Mapped) Disable(token Token) (err error) {
	return mm.setEnabled(token, false)
}

// IsEnabled returns true if the entry for token participates in resolution.
func (mm *Mapped) IsEnabled(token Token) (enabled bool, err error) {
	index, err := mm.find(token)
	if err != nil {
		return
	}

	enabled = mm.entries[index].Enabled
	return
}

// Borrow returns the store mounted for token, whether or not it is enabled.
func (mm *Mapped) Borrow(token Token) (mem Memory, err error) {
	index, err := mm.find(token)
	if err != nil {
		return
	}

	mem = mm.entries[index].memory
	return
}

// Mounts iterates over all entries in mount order.
func (mm *Mapped) Mounts() iter.Seq2[Token, Entry] {
	return func(yield func(token Token, entry Entry) bool) {
		for _, entry := range mm.entries {
			if !yield(entry.token, entry) {
				return
			}
		}
	}
}

// Resolve returns the token and entry that answer for addr.
func (mm *Mapped) Resolve(addr uint32) (token Token, entry Entry, err error) {
	found, err := mm.resolve(addr)
	if err != nil {
		return
	}

	token, entry = found.token, *found
	return
}

func (mm *Mapped) resolve(addr uint32) (entry *Entry, err error) {
	for n := len(mm.entries) - 1; n >= 0; n-- {
		candidate := &mm.entries[n]
		if candidate.Enabled && candidate.Contains(addr) {
			entry = candidate
			return
		}
	}

	err = &ErrAddress{Addr: addr, Err: ErrUnmapped}
	return
}

func (mm *Mapped) Get(addr uint32) (value uint32, err error) {
	entry, err := mm.resolve(addr)
	if err != nil {
		return
	}

	return entry.memory.Get(addr - entry.Base)
}

func (mm *Mapped) Set(addr uint32, value uint32) (err error) {
	entry, err := mm.resolve(addr)
	if err != nil {
		return
	}

	return entry.memory.Set(addr-entry.Base, value)
}

// Size returns the end of the highest enabled entry.
func (mm *Mapped) Size() (size int) {
	for _, entry := range mm.entries {
		if entry.Enabled {
			size = max(size, int(entry.end()))
		}
	}

	return
}

func (mm *Mapped) find(token Token) (index int, err error) {
	index = slices.IndexFunc(mm.entries, func(entry Entry) bool {
		return token.id != 0 && entry.token == token
	})
	if index < 0 {
		err = ErrTokenUnknown
	}

	return
}

func (mm *Mapped) setEnabled(token Token, enabled bool) (err error) {
	index, err := mm.find(token)
	if err != nil {
		return
	}

	mm.entries[index].Enabled = enabled
	return
}
