// Package vm executes resolved minml programs on a small integer stack
// machine. The compiler and the machine agree on one calling convention:
// the caller pushes arguments left to right, CALL pushes the return
// address, and RET discards the argument slots on the way out.
package vm

import (
	"fmt"

	"minml/pkg/code"
)

// VM is one execution of a resolved program. The zero PC is the entry
// point; the compiler places the program entry first.
type VM struct {
	Program []code.Word
	Stack   []int
	PC      int
	Halted  bool
	Steps   int // instructions executed so far
}

func New(program []code.Word) *VM {
	return &VM{Program: program}
}

func (m *VM) push(v int) {
	m.Stack = append(m.Stack, v)
}

func (m *VM) pop() (int, error) {
	if len(m.Stack) == 0 {
		return 0, fmt.Errorf("stack underflow at address %d", m.PC)
	}
	v := m.Stack[len(m.Stack)-1]
	m.Stack = m.Stack[:len(m.Stack)-1]
	return v, nil
}

// operand reads the operand word of the instruction at m.PC.
func (m *VM) operand() (int, error) {
	if m.PC+1 >= len(m.Program) {
		return 0, fmt.Errorf("missing operand at address %d", m.PC)
	}
	return int(m.Program[m.PC+1]), nil
}

func bool01(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Step decodes and executes one instruction. VM errors mean the program
// was miscompiled or hand-built wrongly; a correct compiler output never
// faults except for division by zero.
func (m *VM) Step() error {
	if m.Halted {
		return nil
	}
	if m.PC < 0 || m.PC >= len(m.Program) {
		return fmt.Errorf("program counter %d out of range", m.PC)
	}

	at := m.PC
	op := code.Opcode(m.Program[at])
	m.Steps++

	switch op {
	case code.Push:
		v, err := m.operand()
		if err != nil {
			return err
		}
		m.push(v)
		m.PC += 2

	case code.Dup:
		depth, err := m.operand()
		if err != nil {
			return err
		}
		if depth < 0 || depth >= len(m.Stack) {
			return fmt.Errorf("DUP %d at address %d: only %d slot(s) on the stack", depth, at, len(m.Stack))
		}
		m.push(m.Stack[len(m.Stack)-1-depth])
		m.PC += 2

	case code.Add, code.Sub, code.Mul, code.Div, code.Mod:
		b, err := m.pop()
		if err != nil {
			return err
		}
		a, err := m.pop()
		if err != nil {
			return err
		}
		switch op {
		case code.Add:
			m.push(a + b)
		case code.Sub:
			m.push(a - b)
		case code.Mul:
			m.push(a * b)
		case code.Div:
			if b == 0 {
				return fmt.Errorf("division by zero at address %d", at)
			}
			m.push(a / b)
		case code.Mod:
			if b == 0 {
				return fmt.Errorf("division by zero at address %d", at)
			}
			m.push(a % b)
		}
		m.PC++

	case code.Eq:
		b, err := m.pop()
		if err != nil {
			return err
		}
		a, err := m.pop()
		if err != nil {
			return err
		}
		m.push(bool01(a == b))
		m.PC++

	case code.Lt:
		b, err := m.pop()
		if err != nil {
			return err
		}
		a, err := m.pop()
		if err != nil {
			return err
		}
		m.push(bool01(a < b))
		m.PC++

	case code.Pop:
		// Removes the slot beneath the top: the top value slides down.
		if len(m.Stack) < 2 {
			return fmt.Errorf("POP at address %d: fewer than two slots on the stack", at)
		}
		m.Stack[len(m.Stack)-2] = m.Stack[len(m.Stack)-1]
		m.Stack = m.Stack[:len(m.Stack)-1]
		m.PC++

	case code.Jmp:
		target, err := m.operand()
		if err != nil {
			return err
		}
		m.PC = target

	case code.JmpIf:
		target, err := m.operand()
		if err != nil {
			return err
		}
		v, err := m.pop()
		if err != nil {
			return err
		}
		if v != 0 {
			m.PC = target
		} else {
			m.PC += 2
		}

	case code.Call:
		target, err := m.operand()
		if err != nil {
			return err
		}
		m.push(at + 2)
		m.PC = target

	case code.Ret:
		arity, err := m.operand()
		if err != nil {
			return err
		}
		result, err := m.pop()
		if err != nil {
			return err
		}
		retAddr, err := m.pop()
		if err != nil {
			return err
		}
		if arity < 0 || arity > len(m.Stack) {
			return fmt.Errorf("RET %d at address %d: only %d slot(s) on the stack", arity, at, len(m.Stack))
		}
		m.Stack = m.Stack[:len(m.Stack)-arity]
		m.push(result)
		m.PC = retAddr

	case code.Halt:
		m.Halted = true

	default:
		return fmt.Errorf("unknown opcode %d at address %d", int(op), at)
	}

	return nil
}

// Run executes instructions until the machine halts or maxSteps have been
// executed. maxSteps <= 0 means no limit.
func (m *VM) Run(maxSteps int) error {
	for !m.Halted {
		if maxSteps > 0 && m.Steps >= maxSteps {
			return fmt.Errorf("program did not halt within %d steps", maxSteps)
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Result returns the value on top of the stack after the machine has
// halted. A program whose body is empty halts with nothing to return.
func (m *VM) Result() (int, bool) {
	if !m.Halted || len(m.Stack) == 0 {
		return 0, false
	}
	return m.Stack[len(m.Stack)-1], true
}
