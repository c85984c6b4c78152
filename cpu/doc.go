// Package cpu implements the osci instruction and its assembler.
//
// osci has a single instruction of four word addresses:
//
//	op_a op_b target jmp
//
// which stores mem[op_a] - mem[op_b] at target, and continues at jmp if the
// result, as a signed word, is not positive. Otherwise execution continues
// with the next instruction, INSTRUCTION_SIZE words further on. Subtraction
// wraps. An operand that is negative as a signed word is indirect.
//
// The assembler provides labels, equates, macros, and compile-time
// expression evaluation over a source syntax of one statement per line.
package cpu
