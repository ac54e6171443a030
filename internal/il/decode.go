// Package il extracts semantic facts from raw CIL method bodies.
//
// Decoding is total: unknown opcodes and truncated operands stop the walk and
// mark the facts as Truncated instead of failing.
package il

import "encoding/binary"

// Facts are the body properties rules look at.
type Facts struct {
	Length               int      `json:"length"`
	Instructions         int      `json:"instructions"`
	IsEmpty              bool     `json:"is_empty"`
	ReturnsConstant      bool     `json:"returns_constant"`
	ThrowsNotImplemented bool     `json:"throws_not_implemented"`
	HasNoLogic           bool     `json:"has_no_logic"`
	Truncated            bool     `json:"truncated,omitempty"`
	References           []uint32 `json:"references,omitempty"`
}

// Decoder carries per-unit decoding options.
type Decoder struct {
	// NotImplementedCtors restricts the placeholder-throw pattern to these
	// newobj tokens. Empty means any constructor matches.
	NotImplementedCtors []uint32
}

// Decode uses a zero Decoder.
func Decode(b []byte) Facts { return Decoder{}.Decode(b) }

type instruction struct {
	offset int
	next   int // offset of the following instruction
	op     uint16
	arg    int64
}

func (d Decoder) Decode(b []byte) Facts {
	f := Facts{Length: len(b), IsEmpty: len(b) <= 3}
	insts, truncated := walk(b)
	f.Instructions = len(insts)
	f.Truncated = truncated

	var logic bool
	for i, in := range insts {
		switch {
		case isConditionalBranch(in.op), isCall(in.op):
			logic = true
		case in.op == OpBr || in.op == OpBrS || in.op == OpLeave || in.op == OpLeaveS:
			if int64(in.next)+in.arg < int64(in.offset) {
				logic = true // loop
			}
		}
		if isMemberReference(in.op) {
			f.References = append(f.References, uint32(in.arg))
		}
		if in.op == OpNewobj && i+1 < len(insts) && insts[i+1].op == OpThrow &&
			d.ctorMatches(uint32(in.arg)) {
			f.ThrowsNotImplemented = true
		}
	}

	if truncated {
		// only a prefix was seen, so make no claim about the rest
		if !f.ThrowsNotImplemented {
			f.ThrowsNotImplemented = d.scanThrow(b)
		}
		return f
	}

	f.HasNoLogic = !logic
	f.ReturnsConstant = len(insts) == 2 && isConstantLoad(insts[0].op) && insts[1].op == OpRet
	return f
}

func (d Decoder) ctorMatches(tok uint32) bool {
	if len(d.NotImplementedCtors) == 0 {
		return true
	}
	for _, c := range d.NotImplementedCtors {
		if c == tok {
			return true
		}
	}
	return false
}

// scanThrow looks for newobj <tok> throw at any byte offset.
func (d Decoder) scanThrow(b []byte) bool {
	for i := 0; i+5 < len(b); i++ {
		if b[i] == byte(OpNewobj) && b[i+5] == byte(OpThrow) &&
			d.ctorMatches(binary.LittleEndian.Uint32(b[i+1:i+5])) {
			return true
		}
	}
	return false
}

// walk decodes as many whole instructions as the stream holds.
func walk(b []byte) ([]instruction, bool) {
	var out []instruction
	pos := 0
	for pos < len(b) {
		start := pos
		op := uint16(b[pos])
		kind := oneByte[b[pos]]
		pos++
		if byte(op) == prefix {
			if pos >= len(b) {
				return out, true
			}
			op = 0xFE00 | uint16(b[pos])
			kind = twoByte[b[pos]]
			pos++
		}
		if kind == invalid {
			return out, true
		}

		var arg int64
		if kind == switchTable {
			if pos+4 > len(b) {
				return out, true
			}
			n := int64(binary.LittleEndian.Uint32(b[pos:]))
			pos += 4
			if n > int64(len(b)-pos)/4 {
				return out, true
			}
			pos += int(n) * 4
			arg = n
		} else {
			sz := kind.size()
			if pos+sz > len(b) {
				return out, true
			}
			arg = readArg(b[pos:pos+sz], kind)
			pos += sz
		}
		out = append(out, instruction{offset: start, next: pos, op: op, arg: arg})
	}
	return out, false
}

func readArg(b []byte, kind operand) int64 {
	switch kind {
	case int8Arg, branchShort:
		return int64(int8(b[0]))
	case int16Arg:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case int32Arg, branchLong:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	case token:
		return int64(binary.LittleEndian.Uint32(b))
	case int64Arg:
		return int64(binary.LittleEndian.Uint64(b))
	}
	return 0
}
