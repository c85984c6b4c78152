// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/osciemu/internal"
	"github.com/ezrec/osciemu/memory"
)

const (
	EQUATE_DEPTH = 16 // Maximum nesting of equates and expressions.
	MACRO_DEPTH  = 16 // Maximum nesting of macro expansions.

	MAX_LINE_SIZE = 1 << 30 // Longest accepted text line, in bytes.
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Defines returns the cpu equates.
func Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Predefined system equates
var sysEquate = maps.Collect(internal.IterSeq2Concat(
	memory.Defines(),
	Defines(),
))

// Assembler is a two pass macro assembler for osci programs.
//
// Each statement is one of:
//
//	label:                   ; binds label to the current address
//	a b target [jmp]         ; an instruction, jmp defaults to the next one
//	.word v...               ; literal words
//	.addr ADDR               ; zero fill up to ADDR, if more words follow
//	.org ADDR                ; address of the first word of the image
//	.equ NAME VALUE          ; equate
//	.macro NAME args.. / .endm
//
// Operands are numbers, labels, equates, `$` (the current address), or
// `$(...)` expressions evaluated by starlark. An operand prefixed by `*` is
// indirect.
type Assembler struct {
	Verbose bool // If set, verbosely logs the assembler actions.

	predefine map[string]string   // Predefines
	Label     map[string]uint32   // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	lines      []Line
	origin     uint32
	here       uint32
	expansions int
	nesting    int
	depth      int
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a numeric word.
func valueOf(word string) (value uint32, err error) {
	invert := false
	if word[0] == '~' {
		invert = true
		word = word[1:]
	}

	if len(word) >= 3 && word[0] == '\'' && word[len(word)-1] == '\'' {
		var r rune
		r, _, _, err = strconv.UnquoteChar(word[1:len(word)-1], '\'')
		if err != nil {
			err = ErrParseNumber(word)
			return
		}
		value = uint32(r)
	} else {
		var v64 int64
		v64, err = strconv.ParseInt(word, 0, 64)
		if err != nil || v64 > 0xffffffff || v64 < -int64(0x80000000) {
			err = ErrParseNumber(word)
			return
		}
		value = uint32(v64)
	}

	if invert {
		value = ^value
	}

	return
}

func isIdentifier(word string) bool {
	for n, r := range word {
		if !(r == '_' || unicode.IsLetter(r) || (n > 0 && unicode.IsDigit(r))) {
			return false
		}
	}

	return len(word) > 0
}

// evaluate resolves an operand to its value, at the address here.
func (asm *Assembler) evaluate(word string, here uint32) (value uint32, err error) {
	asm.depth++
	defer func() { asm.depth-- }()

	if asm.depth > EQUATE_DEPTH {
		err = ErrEquateLoop
		return
	}

	switch {
	case len(word) == 0:
		err = ErrOpcodeValueMissing
		return
	case word[0] == '*':
		value, err = asm.evaluate(word[1:], here)
		if err != nil {
			return
		}
		if value == 0 {
			err = ErrIndirectZero
			return
		}
		value = Indirect(value)
		return
	case word == "$":
		value = here
		return
	case strings.HasPrefix(word, "$(") && strings.HasSuffix(word, ")"):
		return asm.parenEval(word[2:len(word)-1], here)
	}

	if label, ok := asm.Label[word]; ok {
		value = label
		return
	}

	if equate, ok := asm.Equate[word]; ok {
		return asm.evaluate(equate, here)
	}

	value, err = valueOf(word)
	if err != nil && isIdentifier(word) {
		err = ErrLabelMissing(word)
	}

	return
}

var identRegexp = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)

// parenEval does $(...) evaluations, binding the referenced labels and
// equates, and HERE as the current address.
func (asm *Assembler) parenEval(expr string, here uint32) (value uint32, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{
		"HERE": starlark.MakeUint64(uint64(here)),
	}
	for _, ident := range identRegexp.FindAllString(expr, -1) {
		_, is_label := asm.Label[ident]
		_, is_equate := asm.Equate[ident]
		if !is_label && !is_equate {
			continue
		}
		var value32 uint32
		value32, err = asm.evaluate(ident, here)
		if errors.Is(err, ErrEquateLoop) {
			return
		}
		if err != nil {
			// Ignore non-integer equates. They may be used as names
			// by the expression itself.
			err = nil
			continue
		}
		pred[ident] = starlark.MakeUint64(uint64(value32))
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value = uint32(st_int64)
	return
}

// splitWords splits a line on white space, keeping $(...) expressions whole.
func splitWords(line string) (words []string, err error) {
	var word strings.Builder
	depth := 0
	for n, r := range line {
		switch {
		case depth == 0 && unicode.IsSpace(r):
			if word.Len() > 0 {
				words = append(words, word.String())
				word.Reset()
			}
			continue
		case r == '(' && (depth > 0 || strings.HasSuffix(line[:n], "$")):
			depth++
		case r == ')' && depth > 0:
			depth--
		}
		word.WriteRune(r)
	}

	if depth != 0 {
		err = ErrExpressionOpen
		return
	}

	if word.Len() > 0 {
		words = append(words, word.String())
	}

	return
}

// parseLine parses a single line of source, with comments removed.
func (asm *Assembler) parseLine(line string, lineno int) (err error) {
	words, err := splitWords(line)
	if err != nil {
		return
	}

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		err = asm.defineLabel(label)
		if err != nil {
			return
		}
		words = words[1:]
	}

	if len(words) == 0 {
		return
	}

	macro, ok := asm.Macro[words[0]]
	if ok {
		return asm.expand(words[0], macro, words[1:])
	}

	return asm.parseWords(words, lineno, line)
}

func (asm *Assembler) defineLabel(label string) (err error) {
	if !isIdentifier(label) {
		err = ErrLabelInvalid
		return
	}

	_, is_label := asm.Label[label]
	_, is_equate := asm.Equate[label]
	if is_label || is_equate {
		err = ErrLabelDuplicate
		return
	}

	asm.Label[label] = asm.here
	return
}

// expand expands a macro invocation.
func (asm *Assembler) expand(name string, macro *Macro, args []string) (err error) {
	if len(args) != len(macro.Args) {
		err = ErrMacroSyntax
		return
	}

	if asm.nesting >= MACRO_DEPTH {
		err = ErrMacroRecursion
		return
	}
	asm.nesting++
	defer func() { asm.nesting-- }()

	asm.expansions++

	prefix := fmt.Sprintf("%v_%v_", name, asm.expansions)

	var argRegexp *regexp.Regexp
	if len(macro.Args) > 0 {
		quoted := make([]string, len(macro.Args))
		for n, arg := range macro.Args {
			quoted[n] = regexp.QuoteMeta(arg)
		}
		argRegexp = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}

	for n, line := range macro.Lines {
		lineno := macro.LineNo + n

		line = strings.ReplaceAll(line, "@", prefix)
		if argRegexp != nil {
			line = argRegexp.ReplaceAllStringFunc(line, func(arg string) string {
				return args[slices.Index(macro.Args, arg)]
			})
		}

		err = asm.parseLine(line, lineno)
		if err != nil {
			err = &ErrMacro{Macro: name, Line: lineno, Err: err}
			return
		}
	}

	return
}

// parseWords evaluates the words of a statement.
func (asm *Assembler) parseWords(words []string, lineno int, text string) (err error) {
	switch words[0] {
	case ".equ":
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, is_label := asm.Label[words[1]]
		_, is_equate := asm.Equate[words[1]]
		if is_label || is_equate {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
	case ".org":
		if len(words) != 2 {
			err = ErrOrgSyntax
			return
		}
		if len(asm.lines) != 0 || len(asm.Label) != 0 {
			err = ErrOrgLate
			return
		}
		asm.origin, err = asm.evaluate(words[1], asm.here)
		asm.here = asm.origin
	case ".addr":
		if len(words) != 2 {
			err = ErrAddrSyntax
			return
		}
		var addr uint32
		addr, err = asm.evaluate(words[1], asm.here)
		if err != nil {
			return
		}
		if addr < asm.here {
			err = ErrAddrBackwards
			return
		}
		asm.here = addr
	case ".word":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		asm.emit(lineno, text, words[1:])
	default:
		if strings.HasPrefix(words[0], ".") {
			err = ErrDirectiveInvalid
			return
		}
		switch len(words) {
		case INSTRUCTION_SIZE:
		case INSTRUCTION_SIZE - 1:
			words = append(slices.Clip(words), fmt.Sprintf("0x%X", asm.here+INSTRUCTION_SIZE))
		default:
			err = ErrOperandCount
			return
		}
		asm.emit(lineno, text, words)
	}

	return
}

func (asm *Assembler) emit(lineno int, text string, words []string) {
	asm.lines = append(asm.lines, Line{
		LineNo: lineno,
		Text:   text,
		Addr:   asm.here,
		Words:  slices.Clone(words),
		Codes:  make([]uint32, len(words)),
	})
	asm.here += uint32(len(words))
}

// link evaluates all operands, now that every label is known.
func (asm *Assembler) link() (err error) {
	for n := range asm.lines {
		line := &asm.lines[n]
		for i, word := range line.Words {
			line.Codes[i], err = asm.evaluate(word, line.Addr)
			if err != nil {
				err = &ErrSyntax{LineNo: line.LineNo, Line: line.Text, Err: err}
				return
			}
		}
	}

	return
}

func (asm *Assembler) reset() {
	asm.Label = make(map[string]uint32)
	asm.Macro = make(map[string](*Macro))
	asm.Equate = maps.Clone(sysEquate)
	maps.Copy(asm.Equate, asm.predefine)
	asm.lines = nil
	asm.origin = 0
	asm.here = 0
	asm.expansions = 0
	asm.nesting = 0
	asm.depth = 0
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)
	scanner.Buffer(nil, MAX_LINE_SIZE)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		var es *ErrSyntax
		if err != nil && !errors.As(err, &es) {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.reset()

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		text_comment := strings.SplitN(text, ";", 2)
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 || !isIdentifier(words[1]) {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
				Args:   words[2:],
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	err = asm.link()
	if err != nil {
		return
	}

	prog = &Program{
		Origin: asm.origin,
		Lines:  slices.Clone(asm.lines),
	}

	if asm.Verbose {
		log.Printf("asm: %v words at 0x%08x", len(prog.Binary()), prog.Origin)
	}

	return
}
