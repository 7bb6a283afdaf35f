package wat

const (
	secType   = 1
	secFunc   = 3
	secMemory = 5
	secExport = 7
	secCode   = 10
	secData   = 11
)

const (
	exportFunc   = 0x00
	exportMemory = 0x02
)

const (
	opElse = 0x05
	opEnd  = 0x0B
)

var blockOps = map[string]byte{
	"block": 0x02,
	"loop":  0x03,
	"if":    0x04,
}

type immKind int

const (
	immNone immKind = iota
	immZero  // fixed 0x00 byte (memory index)
	immIndex // local or label index
	immI32
	immI64
	immMem
)

type opInfo struct {
	code  byte
	imm   immKind
	align uint32 // natural alignment exponent for memory ops
}

var ops = map[string]opInfo{
	"unreachable": {code: 0x00},
	"nop":         {code: 0x01},
	"br":          {code: 0x0C, imm: immIndex},
	"br_if":       {code: 0x0D, imm: immIndex},
	"return":      {code: 0x0F},
	"drop":        {code: 0x1A},
	"select":      {code: 0x1B},

	"local.get": {code: 0x20, imm: immIndex},
	"local.set": {code: 0x21, imm: immIndex},
	"local.tee": {code: 0x22, imm: immIndex},

	"i32.load":    {code: 0x28, imm: immMem, align: 2},
	"i64.load":    {code: 0x29, imm: immMem, align: 3},
	"i32.load8_u": {code: 0x2D, imm: immMem, align: 0},
	"i32.store":   {code: 0x36, imm: immMem, align: 2},
	"i64.store":   {code: 0x37, imm: immMem, align: 3},
	"i32.store8":  {code: 0x3A, imm: immMem, align: 0},

	"memory.size": {code: 0x3F, imm: immZero},
	"memory.grow": {code: 0x40, imm: immZero},

	"i32.const": {code: 0x41, imm: immI32},
	"i64.const": {code: 0x42, imm: immI64},

	"i32.eqz":  {code: 0x45},
	"i32.eq":   {code: 0x46},
	"i32.ne":   {code: 0x47},
	"i32.lt_s": {code: 0x48},
	"i32.lt_u": {code: 0x49},
	"i32.gt_s": {code: 0x4A},
	"i32.gt_u": {code: 0x4B},
	"i32.le_s": {code: 0x4C},
	"i32.le_u": {code: 0x4D},
	"i32.ge_s": {code: 0x4E},
	"i32.ge_u": {code: 0x4F},

	"i64.eqz":  {code: 0x50},
	"i64.eq":   {code: 0x51},
	"i64.ne":   {code: 0x52},
	"i64.lt_s": {code: 0x53},
	"i64.lt_u": {code: 0x54},
	"i64.gt_s": {code: 0x55},
	"i64.gt_u": {code: 0x56},
	"i64.le_s": {code: 0x57},
	"i64.le_u": {code: 0x58},
	"i64.ge_s": {code: 0x59},
	"i64.ge_u": {code: 0x5A},

	"i32.add":   {code: 0x6A},
	"i32.sub":   {code: 0x6B},
	"i32.mul":   {code: 0x6C},
	"i32.div_s": {code: 0x6D},
	"i32.div_u": {code: 0x6E},
	"i32.rem_s": {code: 0x6F},
	"i32.rem_u": {code: 0x70},
	"i32.and":   {code: 0x71},
	"i32.or":    {code: 0x72},
	"i32.xor":   {code: 0x73},
	"i32.shl":   {code: 0x74},
	"i32.shr_s": {code: 0x75},
	"i32.shr_u": {code: 0x76},

	"i64.add":   {code: 0x7C},
	"i64.sub":   {code: 0x7D},
	"i64.mul":   {code: 0x7E},
	"i64.div_s": {code: 0x7F},
	"i64.div_u": {code: 0x80},
	"i64.rem_s": {code: 0x81},
	"i64.rem_u": {code: 0x82},
	"i64.and":   {code: 0x83},
	"i64.or":    {code: 0x84},
	"i64.xor":   {code: 0x85},
	"i64.shl":   {code: 0x86},
	"i64.shr_s": {code: 0x87},
	"i64.shr_u": {code: 0x88},

	"i32.wrap_i64":     {code: 0xA7},
	"i64.extend_i32_s": {code: 0xAC},
	"i64.extend_i32_u": {code: 0xAD},
}

func encode(m *module) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

	// one type entry per distinct signature
	var sigs [][]byte
	sigIndex := map[string]uint32{}
	typeOf := make([]uint32, len(m.funcs))
	for i, fn := range m.funcs {
		sig := encodeSig(fn.params, fn.results)
		idx, ok := sigIndex[string(sig)]
		if !ok {
			idx = uint32(len(sigs))
			sigIndex[string(sig)] = idx
			sigs = append(sigs, sig)
		}
		typeOf[i] = idx
	}
	if len(sigs) > 0 {
		var body []byte
		body = appendUleb(body, uint64(len(sigs)))
		for _, s := range sigs {
			body = append(body, s...)
		}
		out = appendSection(out, secType, body)
	}

	if len(m.funcs) > 0 {
		var body []byte
		body = appendUleb(body, uint64(len(m.funcs)))
		for _, idx := range typeOf {
			body = appendUleb(body, uint64(idx))
		}
		out = appendSection(out, secFunc, body)
	}

	if len(m.mems) > 0 {
		var body []byte
		body = appendUleb(body, uint64(len(m.mems)))
		for _, mem := range m.mems {
			if mem.hasMax {
				body = append(body, 0x01)
				body = appendUleb(body, uint64(mem.min))
				body = appendUleb(body, uint64(mem.max))
			} else {
				body = append(body, 0x00)
				body = appendUleb(body, uint64(mem.min))
			}
		}
		out = appendSection(out, secMemory, body)
	}

	if len(m.exports) > 0 {
		var body []byte
		body = appendUleb(body, uint64(len(m.exports)))
		for _, e := range m.exports {
			body = appendUleb(body, uint64(len(e.name)))
			body = append(body, e.name...)
			body = append(body, e.kind)
			body = appendUleb(body, uint64(e.index))
		}
		out = appendSection(out, secExport, body)
	}

	if len(m.funcs) > 0 {
		var body []byte
		body = appendUleb(body, uint64(len(m.funcs)))
		for _, fn := range m.funcs {
			entry := encodeLocals(fn.locals)
			entry = append(entry, fn.body...)
			body = appendUleb(body, uint64(len(entry)))
			body = append(body, entry...)
		}
		out = appendSection(out, secCode, body)
	}

	if len(m.datas) > 0 {
		var body []byte
		body = appendUleb(body, uint64(len(m.datas)))
		for _, d := range m.datas {
			body = append(body, 0x00, 0x41)
			body = appendSleb(body, int64(d.offset))
			body = append(body, opEnd)
			body = appendUleb(body, uint64(len(d.bytes)))
			body = append(body, d.bytes...)
		}
		out = appendSection(out, secData, body)
	}

	return out
}

func encodeSig(params, results []byte) []byte {
	out := []byte{0x60}
	out = appendUleb(out, uint64(len(params)))
	out = append(out, params...)
	out = appendUleb(out, uint64(len(results)))
	return append(out, results...)
}

// encodeLocals groups consecutive locals of one type into runs.
func encodeLocals(locals []byte) []byte {
	type run struct {
		t byte
		n uint64
	}
	var runs []run
	for _, t := range locals {
		if len(runs) > 0 && runs[len(runs)-1].t == t {
			runs[len(runs)-1].n++
			continue
		}
		runs = append(runs, run{t: t, n: 1})
	}
	var out []byte
	out = appendUleb(out, uint64(len(runs)))
	for _, r := range runs {
		out = appendUleb(out, r.n)
		out = append(out, r.t)
	}
	return out
}

func appendSection(out []byte, id byte, body []byte) []byte {
	out = append(out, id)
	out = appendUleb(out, uint64(len(body)))
	return append(out, body...)
}

func appendUleb(out []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func appendSleb(out []byte, v int64) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if (v == 0 && b&0x40 == 0) || (v == -1 && b&0x40 != 0) {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}
