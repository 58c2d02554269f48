// Package vm is a minimal interpreter standing in for the host runtime
// that ultimately loads and executes a compiled program's bytecode. It is
// an enrichment beyond the compiler's own contract: nothing in this repo
// requires it to run a program correctly end-to-end, but it gives the
// compiler's output somewhere to execute for tests and for the `run`
// subcommand, the same role the teacher's stack VM played for its
// bytecode.
package vm

import (
	"fmt"

	"github.com/idlhub/holyc-bpf-compiler/compiler"
)

// frameSize bounds the R10-relative stack frame every compiled function
// addresses. It is generous relative to anything the code generator's
// simple, unbounded slot allocator (see compiler/codegen.go) is likely to
// emit for test-sized programs.
const frameSize = 4096

// HelperFunc implements one host-runtime helper id from §6.3. It reads its
// arguments out of R1..R5 via the VM it's given and returns the value to
// place in R0.
type HelperFunc func(vm *VM) uint64

// VM is a register-based interpreter for the flat eBPF-style instruction
// stream the compiler package emits.
type VM struct {
	regs [11]uint64
	mem  Memory
	debug bool
}

// New creates a VM with a fresh, zeroed stack frame.
func New() *VM {
	return &VM{mem: make(Memory, frameSize)}
}

// Reg reads one of the eleven register values, for tests that want to
// inspect VM state after a Run.
func (vm *VM) Reg(r compiler.Reg) uint64 { return vm.regs[r] }

// address resolves a (base register, offset) pair to an absolute index
// into mem. R10 is the read-only frame pointer and is pinned to the end of
// the stack region, per §4.3, so that small negative offsets address
// valid, in-bounds slots.
func (vm *VM) address(base compiler.Reg, offset int16) int {
	if base == compiler.R10 {
		return len(vm.mem) + int(offset)
	}
	return int(vm.regs[base]) + int(offset)
}

// Run executes code from its first instruction, with args loaded into
// R1..R5 (per §4.3's calling convention), until it hits an `exit`
// instruction or a RuntimeError. helpers maps a `call` instruction's
// immediate to the Go function invoked for it; a `call` to an id not in
// helpers is a RuntimeError, not a panic — this interpreter never panics,
// mirroring the teacher's Run returning a plain error.
func (vm *VM) Run(code []byte, helpers map[int32]HelperFunc, args ...uint64) (uint64, error) {
	vm.regs = [11]uint64{}
	for i, a := range args {
		if i >= 5 {
			break
		}
		vm.regs[compiler.R1+compiler.Reg(i)] = a
	}

	pc := 0
	for {
		if pc < 0 || pc*8+8 > len(code) {
			return 0, RuntimeError{Kind: OutOfBounds, Message: fmt.Sprintf("instruction pointer %d out of range", pc)}
		}
		in := compiler.Decode(code[pc*8 : pc*8+8])
		if in.Dst > compiler.R10 || in.Src > compiler.R10 {
			return 0, RuntimeError{Kind: OutOfBounds, Message: fmt.Sprintf("register out of range at pc %d", pc)}
		}

		switch in.Op {
		case compiler.MovImm:
			vm.regs[in.Dst] = uint64(int64(in.Imm))
		case compiler.MovReg:
			vm.regs[in.Dst] = vm.regs[in.Src]
		case compiler.AddImm:
			vm.regs[in.Dst] += uint64(int64(in.Imm))
		case compiler.AddReg:
			vm.regs[in.Dst] += vm.regs[in.Src]
		case compiler.SubReg:
			vm.regs[in.Dst] -= vm.regs[in.Src]
		case compiler.MulReg:
			vm.regs[in.Dst] *= vm.regs[in.Src]
		case compiler.DivReg:
			if vm.regs[in.Src] == 0 {
				return 0, RuntimeError{Kind: DivisionByZero, Message: "division by zero"}
			}
			vm.regs[in.Dst] /= vm.regs[in.Src]
		case compiler.ModReg:
			if vm.regs[in.Src] == 0 {
				return 0, RuntimeError{Kind: DivisionByZero, Message: "modulo by zero"}
			}
			vm.regs[in.Dst] %= vm.regs[in.Src]
		case compiler.AndReg:
			vm.regs[in.Dst] &= vm.regs[in.Src]
		case compiler.OrReg:
			vm.regs[in.Dst] |= vm.regs[in.Src]
		case compiler.XorReg:
			vm.regs[in.Dst] ^= vm.regs[in.Src]
		case compiler.LshReg:
			vm.regs[in.Dst] <<= vm.regs[in.Src]
		case compiler.RshReg:
			vm.regs[in.Dst] >>= vm.regs[in.Src]
		case compiler.LshImm:
			vm.regs[in.Dst] <<= uint64(in.Imm)
		case compiler.OrImm:
			vm.regs[in.Dst] |= uint64(uint32(in.Imm))
		case compiler.Ldxdw:
			addr := vm.address(in.Src, in.Offset)
			v, err := vm.mem.readU64(addr)
			if err != nil {
				return 0, err
			}
			vm.regs[in.Dst] = v
		case compiler.Stxdw:
			addr := vm.address(in.Dst, in.Offset)
			if err := vm.mem.writeU64(addr, vm.regs[in.Src]); err != nil {
				return 0, err
			}
		case compiler.Ja:
			pc += 1 + int(in.Offset)
			continue
		case compiler.Jeq:
			if vm.regs[in.Dst] == uint64(int64(in.Imm)) {
				pc += 1 + int(in.Offset)
				continue
			}
		case compiler.Jne:
			if vm.regs[in.Dst] != uint64(int64(in.Imm)) {
				pc += 1 + int(in.Offset)
				continue
			}
		case compiler.JeqReg:
			if vm.regs[in.Dst] == vm.regs[in.Src] {
				pc += 1 + int(in.Offset)
				continue
			}
		case compiler.JneReg:
			if vm.regs[in.Dst] != vm.regs[in.Src] {
				pc += 1 + int(in.Offset)
				continue
			}
		case compiler.JgtReg:
			if vm.regs[in.Dst] > vm.regs[in.Src] {
				pc += 1 + int(in.Offset)
				continue
			}
		case compiler.JgeReg:
			if vm.regs[in.Dst] >= vm.regs[in.Src] {
				pc += 1 + int(in.Offset)
				continue
			}
		case compiler.JltReg:
			if vm.regs[in.Dst] < vm.regs[in.Src] {
				pc += 1 + int(in.Offset)
				continue
			}
		case compiler.JleReg:
			if vm.regs[in.Dst] <= vm.regs[in.Src] {
				pc += 1 + int(in.Offset)
				continue
			}
		case compiler.Call:
			helper, ok := helpers[in.Imm]
			if !ok {
				return 0, RuntimeError{Kind: MissingHelper, Message: fmt.Sprintf("no helper registered for call id %d", in.Imm)}
			}
			vm.regs[compiler.R0] = helper(vm)
		case compiler.Exit:
			return vm.regs[compiler.R0], nil
		default:
			return 0, RuntimeError{Kind: UnknownOpcode, Message: fmt.Sprintf("unknown opcode %#02x at pc %d", byte(in.Op), pc)}
		}
		pc++
	}
}
