package wat

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"
)

// Compile translates WebAssembly text into binary form.
func Compile(source string) ([]byte, error) {
	toks, err := tokenize(source)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	mod, err := p.parseModule()
	if err != nil {
		return nil, err
	}
	return encode(mod), nil
}

type module struct {
	funcs   []function
	mems    []memory
	datas   []dataSegment
	exports []export
}

type function struct {
	params  []byte
	results []byte
	locals  []byte
	body    []byte
}

type memory struct {
	min    uint32
	max    uint32
	hasMax bool
}

type dataSegment struct {
	offset int32
	bytes  []byte
}

type export struct {
	name  string
	kind  byte
	index uint32
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) next() (token, error) {
	if p.pos >= len(p.toks) {
		return token{}, fmt.Errorf("unexpected end of input")
	}
	t := p.toks[p.pos]
	p.pos++
	return t, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	t, err := p.next()
	if err != nil {
		return token{}, err
	}
	if t.kind != kind {
		return token{}, fmt.Errorf("line %d: expected %s", t.line, what)
	}
	return t, nil
}

func (p *parser) expectAtom(text string) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t.kind != tokAtom || t.text != text {
		return fmt.Errorf("line %d: expected %q", t.line, text)
	}
	return nil
}

func (p *parser) parseModule() (*module, error) {
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	if err := p.expectAtom("module"); err != nil {
		return nil, err
	}
	m := &module{}
	seen := map[string]bool{}
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		if t.kind == tokRParen {
			break
		}
		if t.kind != tokLParen {
			return nil, fmt.Errorf("line %d: expected a module field", t.line)
		}
		head, err := p.expect(tokAtom, "field name")
		if err != nil {
			return nil, err
		}
		switch head.text {
		case "func":
			err = p.parseFunc(m, seen)
		case "memory":
			err = p.parseMemory(m, seen)
		case "data":
			err = p.parseData(m)
		default:
			err = fmt.Errorf("line %d: unsupported module field %q", head.line, head.text)
		}
		if err != nil {
			return nil, err
		}
	}
	if t, ok := p.peek(); ok {
		return nil, fmt.Errorf("line %d: trailing input after module", t.line)
	}
	return m, nil
}

func (p *parser) parseMemory(m *module, seen map[string]bool) error {
	var sizes []uint32
	for {
		t, err := p.next()
		if err != nil {
			return err
		}
		switch t.kind {
		case tokRParen:
			if len(sizes) == 0 || len(sizes) > 2 {
				return fmt.Errorf("line %d: memory wants a min and optional max page count", t.line)
			}
			mem := memory{min: sizes[0]}
			if len(sizes) == 2 {
				mem.max, mem.hasMax = sizes[1], true
			}
			m.mems = append(m.mems, mem)
			return nil
		case tokLParen:
			if err := p.parseInlineExport(m, seen, exportMemory, uint32(len(m.mems))); err != nil {
				return err
			}
		case tokAtom:
			n, err := parseU32(t)
			if err != nil {
				return err
			}
			sizes = append(sizes, n)
		default:
			return fmt.Errorf("line %d: unexpected token in memory", t.line)
		}
	}
}

// parseInlineExport reads an (export "name") group whose opening parenthesis
// is already consumed.
func (p *parser) parseInlineExport(m *module, seen map[string]bool, kind byte, index uint32) error {
	if err := p.expectAtom("export"); err != nil {
		return err
	}
	name, err := p.expect(tokString, "export name string")
	if err != nil {
		return err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return err
	}
	if seen[name.text] {
		return fmt.Errorf("line %d: duplicate export %q", name.line, name.text)
	}
	seen[name.text] = true
	m.exports = append(m.exports, export{name: name.text, kind: kind, index: index})
	return nil
}

func (p *parser) parseData(m *module) error {
	if _, err := p.expect(tokLParen, "'(' before data offset"); err != nil {
		return err
	}
	if err := p.expectAtom("i32.const"); err != nil {
		return err
	}
	off, err := p.expect(tokAtom, "offset constant")
	if err != nil {
		return err
	}
	n, err := parseI32Const(off)
	if err != nil {
		return err
	}
	if _, err := p.expect(tokRParen, "')' after data offset"); err != nil {
		return err
	}
	seg := dataSegment{offset: int32(n)}
	for {
		t, err := p.next()
		if err != nil {
			return err
		}
		if t.kind == tokRParen {
			break
		}
		if t.kind != tokString {
			return fmt.Errorf("line %d: data wants string literals", t.line)
		}
		seg.bytes = append(seg.bytes, t.text...)
	}
	m.datas = append(m.datas, seg)
	return nil
}

func (p *parser) parseFunc(m *module, seen map[string]bool) error {
	fn := function{}
	names := map[string]uint32{}

	if t, ok := p.peek(); ok && t.kind == tokAtom && strings.HasPrefix(t.text, "$") {
		p.pos++ // function names are accepted but unused: call is unsupported
	}

	// header groups: inline export, params, results, locals
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokLParen || p.pos+1 >= len(p.toks) {
			break
		}
		head := p.toks[p.pos+1]
		if head.kind != tokAtom {
			break
		}
		var err error
		done := false
		switch head.text {
		case "export":
			p.pos++
			err = p.parseInlineExport(m, seen, exportFunc, uint32(len(m.funcs)))
		case "param":
			p.pos += 2
			err = p.parseBinding(&fn.params, names, uint32(len(fn.params)))
		case "result":
			p.pos += 2
			err = p.parseTypes(&fn.results)
		case "local":
			p.pos += 2
			err = p.parseBinding(&fn.locals, names, uint32(len(fn.params)+len(fn.locals)))
		default:
			done = true // body begins; parseBody rejects folded groups
		}
		if err != nil {
			return err
		}
		if done {
			break
		}
	}

	body, err := p.parseBody(names)
	if err != nil {
		return err
	}
	fn.body = body
	m.funcs = append(m.funcs, fn)
	return nil
}

// parseBinding reads the rest of a (param ...) or (local ...) group. A $name
// may precede a single type; unnamed groups may list several types.
func (p *parser) parseBinding(types *[]byte, names map[string]uint32, index uint32) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t.kind == tokAtom && strings.HasPrefix(t.text, "$") {
		vt, err := p.expect(tokAtom, "value type")
		if err != nil {
			return err
		}
		b, err := valType(vt)
		if err != nil {
			return err
		}
		if _, dup := names[t.text]; dup {
			return fmt.Errorf("line %d: duplicate name %s", t.line, t.text)
		}
		names[t.text] = index
		*types = append(*types, b)
		_, err = p.expect(tokRParen, "')'")
		return err
	}
	for {
		if t.kind == tokRParen {
			return nil
		}
		b, err := valType(t)
		if err != nil {
			return err
		}
		*types = append(*types, b)
		t, err = p.next()
		if err != nil {
			return err
		}
	}
}

func (p *parser) parseTypes(types *[]byte) error {
	for {
		t, err := p.next()
		if err != nil {
			return err
		}
		if t.kind == tokRParen {
			return nil
		}
		b, err := valType(t)
		if err != nil {
			return err
		}
		*types = append(*types, b)
	}
}

func valType(t token) (byte, error) {
	switch t.text {
	case "i32":
		return 0x7F, nil
	case "i64":
		return 0x7E, nil
	case "f32":
		return 0x7D, nil
	case "f64":
		return 0x7C, nil
	}
	return 0, fmt.Errorf("line %d: unknown value type %q", t.line, t.text)
}

// parseBody reads flat instructions up to the function's closing parenthesis.
func (p *parser) parseBody(names map[string]uint32) ([]byte, error) {
	var out []byte
	depth := 0
	for {
		t, err := p.next()
		if err != nil {
			return nil, err
		}
		switch t.kind {
		case tokRParen:
			if depth != 0 {
				return nil, fmt.Errorf("line %d: function ends with %d unclosed block(s)", t.line, depth)
			}
			return append(out, opEnd), nil
		case tokLParen:
			return nil, fmt.Errorf("line %d: folded instructions are not supported, write flat bodies", t.line)
		case tokAtom:
			switch t.text {
			case "block", "loop", "if":
				bt, err := p.parseBlockType()
				if err != nil {
					return nil, err
				}
				out = append(out, blockOps[t.text], bt)
				depth++
			case "else":
				if depth == 0 {
					return nil, fmt.Errorf("line %d: else outside a block", t.line)
				}
				out = append(out, opElse)
			case "end":
				if depth == 0 {
					return nil, fmt.Errorf("line %d: end without an open block", t.line)
				}
				out = append(out, opEnd)
				depth--
			default:
				out, err = p.parseInstr(out, t, names)
				if err != nil {
					return nil, err
				}
			}
		default:
			return nil, fmt.Errorf("line %d: unexpected string literal in function body", t.line)
		}
	}
}

// parseBlockType reads the optional (result T) group after block, loop or if.
func (p *parser) parseBlockType() (byte, error) {
	t, ok := p.peek()
	if !ok || t.kind != tokLParen {
		return 0x40, nil
	}
	p.pos++
	if err := p.expectAtom("result"); err != nil {
		return 0, err
	}
	vt, err := p.expect(tokAtom, "value type")
	if err != nil {
		return 0, err
	}
	b, err := valType(vt)
	if err != nil {
		return 0, err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return 0, err
	}
	return b, nil
}

func (p *parser) parseInstr(out []byte, t token, names map[string]uint32) ([]byte, error) {
	op, ok := ops[t.text]
	if !ok {
		return nil, fmt.Errorf("line %d: unknown instruction %q", t.line, t.text)
	}
	out = append(out, op.code)
	switch op.imm {
	case immNone:
	case immZero:
		out = append(out, 0x00)
	case immIndex:
		a, err := p.expect(tokAtom, "index")
		if err != nil {
			return nil, err
		}
		var n uint32
		if strings.HasPrefix(a.text, "$") {
			idx, ok := names[a.text]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown local %s", a.line, a.text)
			}
			n = idx
		} else if n, err = parseU32(a); err != nil {
			return nil, err
		}
		out = appendUleb(out, uint64(n))
	case immI32:
		a, err := p.expect(tokAtom, "integer constant")
		if err != nil {
			return nil, err
		}
		v, err := parseI32Const(a)
		if err != nil {
			return nil, err
		}
		out = appendSleb(out, v)
	case immI64:
		a, err := p.expect(tokAtom, "integer constant")
		if err != nil {
			return nil, err
		}
		v, err := parseI64Const(a)
		if err != nil {
			return nil, err
		}
		out = appendSleb(out, v)
	case immMem:
		align := uint64(op.align)
		offset := uint64(0)
		for {
			a, ok := p.peek()
			if !ok || a.kind != tokAtom {
				break
			}
			if v, found := strings.CutPrefix(a.text, "offset="); found {
				n, err := strconv.ParseUint(v, 0, 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad offset %q", a.line, v)
				}
				offset = n
				p.pos++
				continue
			}
			if v, found := strings.CutPrefix(a.text, "align="); found {
				n, err := strconv.ParseUint(v, 0, 32)
				if err != nil || bits.OnesCount64(n) != 1 {
					return nil, fmt.Errorf("line %d: align must be a power of two", a.line)
				}
				align = uint64(bits.TrailingZeros64(n))
				p.pos++
				continue
			}
			break
		}
		out = appendUleb(out, align)
		out = appendUleb(out, offset)
	}
	return out, nil
}

func parseU32(t token) (uint32, error) {
	v, err := strconv.ParseUint(t.text, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("line %d: bad index %q", t.line, t.text)
	}
	return uint32(v), nil
}

// parseI32Const accepts both signed and unsigned spellings and returns the
// signed interpretation of the 32-bit value for LEB encoding.
func parseI32Const(t token) (int64, error) {
	v, err := strconv.ParseInt(t.text, 0, 64)
	if err != nil || v < math.MinInt32 || v > math.MaxUint32 {
		return 0, fmt.Errorf("line %d: bad i32 constant %q", t.line, t.text)
	}
	return int64(int32(uint32(v))), nil
}

func parseI64Const(t token) (int64, error) {
	if v, err := strconv.ParseInt(t.text, 0, 64); err == nil {
		return v, nil
	}
	if u, err := strconv.ParseUint(t.text, 0, 64); err == nil {
		return int64(u), nil
	}
	return 0, fmt.Errorf("line %d: bad i64 constant %q", t.line, t.text)
}
