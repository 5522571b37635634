package irgen

import "strconv"

// resultKind classifies what an expression emission produced.
type resultKind int

const (
	// resNothing means the node produced no value (void calls, statements).
	resNothing resultKind = iota
	// resImm means the value is a literal constant; no temporary was
	// allocated and the prelude is usually empty.
	resImm
	// resTemp means the value is in the textual temporary %n once the
	// prelude has run.
	resTemp
	// resRet means a control-flow terminator was emitted; the emitter
	// supplies a synthetic label before any further instruction.
	resRet
)

// result is the value half of the per-node emission contract: every
// expression emission returns (prelude text, result).
type result struct {
	kind resultKind
	imm  int32 // valid when kind == resImm
	temp int   // valid when kind == resTemp
}

func imm(v int32) result { return result{kind: resImm, imm: v} }
func temp(n int) result  { return result{kind: resTemp, temp: n} }
func nothing() result    { return result{kind: resNothing} }

// operand renders the result the way a KoopaIR instruction consumes it: the
// literal for an immediate, %n for a temporary. It must not be called for
// the other kinds.
func (r result) operand() string {
	switch r.kind {
	case resImm:
		return strconv.Itoa(int(r.imm))
	case resTemp:
		return "%" + strconv.Itoa(r.temp)
	}
	panic("irgen: result has no operand")
}

// hasValue reports whether the result can be used as an operand.
func (r result) hasValue() bool {
	return r.kind == resImm || r.kind == resTemp
}
