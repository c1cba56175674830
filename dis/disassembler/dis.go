package disassembler

import (
	"fmt"
	"strings"

	"github.com/newhook/c64/cpu"
)

const maxMemory = 0xffff

type Location struct {
	PC           uint16
	Value        uint8
	OperandBytes []byte
	Inst         *cpu.Instruction
}

func (l Location) instruction() string {
	if l.Inst == nil {
		return fmt.Sprintf("db $%02X        ; Invalid opcode", l.Value)
	}
	operand := FormatOperand(l.Inst.Mode, l.OperandBytes)
	if operand == "" {
		return l.Inst.Name
	}

	// Special case for relative addressing - update target address based on PC
	if l.Inst.Mode == cpu.Relative {
		offset := int8(l.OperandBytes[0])
		target := l.PC + 2 + uint16(offset)
		return fmt.Sprintf("%s $%04X", l.Inst.Name, target)
	}

	return fmt.Sprintf("%s %s", l.Inst.Name, operand)
}

func (l Location) Size() int {
	if l.Inst == nil {
		return 1
	}
	return 1 + l.Inst.Mode.GetOperandBytes()
}

func (l Location) String() string {
	var operandCount int
	if l.Inst != nil {
		operandCount = l.Inst.Mode.GetOperandBytes()
	}

	// Format the hex dump
	var hexDump string
	if operandCount == 0 {
		hexDump = fmt.Sprintf("%02X", l.Value)
	} else if operandCount == 1 {
		hexDump = fmt.Sprintf("%02X %02X", l.Value, l.OperandBytes[0])
	} else {
		hexDump = fmt.Sprintf("%02X %02X %02X", l.Value, l.OperandBytes[0], l.OperandBytes[1])
	}

	return fmt.Sprintf("$%04X: %-8s  %s", l.PC, hexDump, l.instruction())
}

// FormatOperand formats the operand bytes according to the addressing mode
func FormatOperand(mode cpu.AddressingMode, bytes []byte) string {
	switch mode {
	case cpu.Implicit, cpu.Extended:
		return ""
	case cpu.Accumulator:
		return "A"
	case cpu.Immediate:
		return fmt.Sprintf("#$%02X", bytes[0])
	case cpu.ZeroPage:
		return fmt.Sprintf("$%02X", bytes[0])
	case cpu.ZeroPageX:
		return fmt.Sprintf("$%02X,X", bytes[0])
	case cpu.ZeroPageY:
		return fmt.Sprintf("$%02X,Y", bytes[0])
	case cpu.Absolute:
		return fmt.Sprintf("$%02X%02X", bytes[1], bytes[0])
	case cpu.AbsoluteX:
		return fmt.Sprintf("$%02X%02X,X", bytes[1], bytes[0])
	case cpu.AbsoluteY:
		return fmt.Sprintf("$%02X%02X,Y", bytes[1], bytes[0])
	case cpu.Indirect:
		return fmt.Sprintf("($%02X%02X)", bytes[1], bytes[0])
	case cpu.IndirectX:
		return fmt.Sprintf("($%02X,X)", bytes[0])
	case cpu.IndirectY:
		return fmt.Sprintf("($%02X),Y", bytes[0])
	case cpu.Relative:
		// Handle relative addressing for branch instructions
		offset := int8(bytes[0])
		// PC is assumed to be the address after the branch instruction (2 bytes)
		target := uint16(2) + uint16(offset)
		return fmt.Sprintf("$%04X", target)
	default:
		return "???"
	}
}

func DisassembleInstructions(memory cpu.MemoryBus) []Location {
	pc := 0
	endAddr := maxMemory

	var rows []Location
	for pc < endAddr {
		loc := disassembleLocation(memory, pc)
		rows = append(rows, loc)
		pc += loc.Size()
	}

	return rows
}

// DisassembleMemory disassembles a range of memory starting at the given address
func DisassembleMemory(memory cpu.MemoryBus, startAddr int, length int) string {
	var out strings.Builder
	pc := startAddr
	endAddr := startAddr + length

	for pc < endAddr {
		loc := disassembleLocation(memory, pc)
		out.WriteString(loc.String())
		out.WriteString("\n")
		pc += loc.Size()
	}

	return out.String()
}

func disassembleLocation(memory cpu.MemoryBus, pc int) Location {
	// Get opcode
	opcode := memory.Read(uint16(pc))
	l := Location{PC: uint16(pc), Value: opcode}

	// Decode instruction
	inst, exists := cpu.Decode(uint16(opcode))
	if !exists {
		// Handle invalid opcode
		return l
	}

	// Get operand bytes based on addressing mode
	operandCount := inst.Mode.GetOperandBytes()

	// Bounds check
	if pc+operandCount >= maxMemory {
		return l
	}
	l.Inst = &inst

	// Extract operand bytes
	for i := 0; i < operandCount; i++ {
		l.OperandBytes = append(l.OperandBytes, memory.Read(uint16(pc+1+i)))
	}

	return l
}
