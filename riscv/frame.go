package riscv

import (
	"github.com/mna/sysyc/koopa"
)

// frame is the result of the first pass over a function: every IR value
// that needs a home in the stack frame has a byte offset from sp, and the
// frame size is fixed before any code is emitted.
//
// Layout, from sp upward: outgoing call arguments beyond the eighth, then
// one 4-byte slot per value-producing instruction and the storage of each
// alloc, then the saved return address when the function makes calls. The
// total is rounded up to the 16-byte alignment the ABI requires.
type frame struct {
	offsets map[*koopa.Value]int // slot (or alloc base) offset from sp
	size    int
	hasCall bool
	raOff   int // valid when hasCall
}

func buildFrame(fn *koopa.Function) *frame {
	fr := &frame{offsets: make(map[*koopa.Value]int)}

	// reserve the bottom of the frame for outgoing stack arguments
	maxStackArgs := 0
	for _, blk := range fn.Blocks {
		for _, inst := range blk.Insts {
			if inst.Kind != koopa.Call {
				continue
			}
			fr.hasCall = true
			if n := len(inst.Args) - 8; n > maxStackArgs {
				maxStackArgs = n
			}
		}
	}
	next := maxStackArgs * 4

	for _, blk := range fn.Blocks {
		for _, inst := range blk.Insts {
			switch inst.Kind {
			case koopa.Alloc:
				// the alloc's storage lives in the frame; the value itself is
				// the address, so no extra cell is needed
				fr.offsets[inst] = next
				next += inst.Type.Elem.Size()
			case koopa.Load, koopa.Binary, koopa.GetElemPtr, koopa.GetPtr:
				fr.offsets[inst] = next
				next += 4
			case koopa.Call:
				if inst.Name != "" {
					fr.offsets[inst] = next
					next += 4
				}
			}
		}
	}

	if fr.hasCall {
		fr.raOff = next
		next += 4
	}
	fr.size = roundUp16(next)
	return fr
}

func roundUp16(n int) int {
	return (n + 15) &^ 15
}
