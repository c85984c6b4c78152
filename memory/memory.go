// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package memory provides the composable word stores of the osci address space.
//
// osci memory is a sequence of 32-bit words, addressed by word index. Stores
// are combined by Mapped, which overlays them at base addresses so that the
// most recently mounted store covering an address answers for it.
package memory

// Memory is the capability shared by every backing store.
type Memory interface {
	// Get returns the word at addr.
	Get(addr uint32) (value uint32, err error)
	// Set stores value at addr.
	Set(addr uint32, value uint32) (err error)
	// Size returns the number of words covered by the store.
	Size() int
}
