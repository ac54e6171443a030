package il

// operand describes what follows an opcode in the instruction stream.
type operand uint8

const (
	invalid operand = iota
	none
	int8Arg
	int16Arg
	int32Arg
	int64Arg
	token
	branchShort
	branchLong
	switchTable
)

// size returns the fixed operand width. switchTable is variable and handled by the walker.
func (o operand) size() int {
	switch o {
	case int8Arg, branchShort:
		return 1
	case int16Arg:
		return 2
	case int32Arg, token, branchLong:
		return 4
	case int64Arg:
		return 8
	default:
		return 0
	}
}

// Opcodes the fact extractor looks at directly.
const (
	OpLdnull   uint16 = 0x14
	OpLdcI4M1  uint16 = 0x15
	OpLdcI48   uint16 = 0x1E
	OpLdcI4S   uint16 = 0x1F
	OpLdcI4    uint16 = 0x20
	OpLdcI8    uint16 = 0x21
	OpJmp      uint16 = 0x27
	OpCall     uint16 = 0x28
	OpCalli    uint16 = 0x29
	OpRet      uint16 = 0x2A
	OpBrS      uint16 = 0x2B
	OpBr       uint16 = 0x38
	OpSwitch   uint16 = 0x45
	OpCallvirt uint16 = 0x6F
	OpNewobj   uint16 = 0x73
	OpThrow    uint16 = 0x7A
	OpLdfld    uint16 = 0x7B
	OpLdflda   uint16 = 0x7C
	OpStfld    uint16 = 0x7D
	OpLdsfld   uint16 = 0x7E
	OpLdsflda  uint16 = 0x7F
	OpStsfld   uint16 = 0x80
	OpLeave    uint16 = 0xDD
	OpLeaveS   uint16 = 0xDE

	prefix      byte   = 0xFE
	OpLdftn     uint16 = 0xFE06
	OpLdvirtftn uint16 = 0xFE07
)

var (
	oneByte [256]operand
	twoByte [256]operand
)

func init() {
	set := func(tbl *[256]operand, lo, hi int, k operand) {
		for op := lo; op <= hi; op++ {
			tbl[op] = k
		}
	}

	// nop, break, ldarg.0-3, ldloc.0-3, stloc.0-3
	set(&oneByte, 0x00, 0x0D, none)
	// ldarg.s, ldarga.s, starg.s, ldloc.s, ldloca.s, stloc.s
	set(&oneByte, 0x0E, 0x13, int8Arg)
	// ldnull, ldc.i4.m1 .. ldc.i4.8
	set(&oneByte, 0x14, 0x1E, none)
	oneByte[0x1F] = int8Arg
	oneByte[0x20] = int32Arg
	oneByte[0x21] = int64Arg
	oneByte[0x22] = int32Arg // ldc.r4
	oneByte[0x23] = int64Arg // ldc.r8
	set(&oneByte, 0x25, 0x26, none)
	set(&oneByte, 0x27, 0x29, token) // jmp, call, calli
	oneByte[0x2A] = none
	set(&oneByte, 0x2B, 0x37, branchShort)
	set(&oneByte, 0x38, 0x44, branchLong)
	oneByte[0x45] = switchTable
	// ldind.*, stind.*, arithmetic, conv.*
	set(&oneByte, 0x46, 0x6E, none)
	oneByte[0x6F] = token
	// cpobj, ldobj, ldstr, newobj, castclass, isinst
	set(&oneByte, 0x70, 0x75, token)
	oneByte[0x76] = none
	oneByte[0x79] = token
	oneByte[0x7A] = none
	// ldfld, ldflda, stfld, ldsfld, ldsflda, stsfld, stobj
	set(&oneByte, 0x7B, 0x81, token)
	set(&oneByte, 0x82, 0x8B, none)
	set(&oneByte, 0x8C, 0x8D, token) // box, newarr
	oneByte[0x8E] = none
	oneByte[0x8F] = token
	set(&oneByte, 0x90, 0xA2, none)
	set(&oneByte, 0xA3, 0xA5, token) // ldelem, stelem, unbox.any
	set(&oneByte, 0xB3, 0xBA, none)
	oneByte[0xC2] = token
	oneByte[0xC3] = none
	oneByte[0xC6] = token
	oneByte[0xD0] = token // ldtoken
	set(&oneByte, 0xD1, 0xDC, none)
	oneByte[0xDD] = branchLong
	oneByte[0xDE] = branchShort
	set(&oneByte, 0xDF, 0xE0, none)

	// 0xFE-prefixed
	set(&twoByte, 0x00, 0x05, none) // arglist, ceq, cgt, cgt.un, clt, clt.un
	set(&twoByte, 0x06, 0x07, token)
	set(&twoByte, 0x09, 0x0E, int16Arg) // ldarg, ldarga, starg, ldloc, ldloca, stloc
	twoByte[0x0F] = none
	twoByte[0x11] = none
	twoByte[0x12] = int8Arg // unaligned.
	set(&twoByte, 0x13, 0x14, none)
	set(&twoByte, 0x15, 0x16, token) // initobj, constrained.
	set(&twoByte, 0x17, 0x18, none)
	twoByte[0x19] = int8Arg // no.
	twoByte[0x1A] = none
	twoByte[0x1C] = token // sizeof
	set(&twoByte, 0x1D, 0x1E, none)
}

func isConditionalBranch(op uint16) bool {
	return (op >= 0x2C && op <= 0x37) || (op >= 0x39 && op <= 0x44) || op == OpSwitch
}

func isCall(op uint16) bool {
	switch op {
	case OpJmp, OpCall, OpCalli, OpCallvirt:
		return true
	}
	return false
}

// isMemberReference reports opcodes whose token operand names a method or field.
func isMemberReference(op uint16) bool {
	switch op {
	case OpJmp, OpCall, OpCallvirt, OpNewobj, OpLdftn, OpLdvirtftn,
		OpLdfld, OpLdflda, OpStfld, OpLdsfld, OpLdsflda, OpStsfld:
		return true
	}
	return false
}

func isConstantLoad(op uint16) bool {
	return op == OpLdnull || (op >= OpLdcI4M1 && op <= OpLdcI48) ||
		op == OpLdcI4S || op == OpLdcI4 || op == OpLdcI8
}
