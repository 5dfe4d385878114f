package code

import (
	"fmt"
	"strings"
)

// Disassemble renders a resolved program as one instruction per line,
// prefixed with its address. Operands of jump and call instructions are
// addresses into the same array.
func Disassemble(program []Word) string {
	var sb strings.Builder
	for pc := 0; pc < len(program); {
		op := Opcode(program[pc])
		if Width(op) == 2 {
			if pc+1 >= len(program) {
				fmt.Fprintf(&sb, "%4d: %s <truncated operand>\n", pc, op)
				break
			}
			fmt.Fprintf(&sb, "%4d: %-5s %d\n", pc, op, int(program[pc+1]))
			pc += 2
			continue
		}
		fmt.Fprintf(&sb, "%4d: %s\n", pc, op)
		pc++
	}
	return sb.String()
}
