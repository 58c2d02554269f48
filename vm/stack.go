package vm

import "encoding/binary"

// Memory is the byte-addressable region the frame pointer register (R10)
// addresses. Where the teacher's Stack was a LIFO of boxed values for a
// stack-bytecode VM, a register VM with an R10-relative calling convention
// needs flat, randomly-addressable bytes instead: every store and load
// goes through readU64/writeU64 at an absolute offset, never push/pop.
type Memory []byte

func (m Memory) readU64(addr int) (uint64, error) {
	if addr < 0 || addr > len(m)-8 {
		return 0, RuntimeError{Kind: OutOfBounds, Message: "memory read out of bounds"}
	}
	return binary.LittleEndian.Uint64(m[addr : addr+8]), nil
}

func (m Memory) writeU64(addr int, v uint64) error {
	if addr < 0 || addr > len(m)-8 {
		return RuntimeError{Kind: OutOfBounds, Message: "memory write out of bounds"}
	}
	binary.LittleEndian.PutUint64(m[addr:addr+8], v)
	return nil
}
