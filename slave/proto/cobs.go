package proto

// Encode applies Consistent-Overhead Byte Stuffing to in, returning a
// buffer with no zero bytes remaining. It is ported from the
// reference cobs_encode: one code byte precedes each run of up to 254
// non-zero bytes, the code being the distance to the next zero (or to
// the end of input).
//
// Unlike the classic COBS framing, this system never appends a
// trailing zero delimiter; the wire frame's own LEN byte marks the
// end.
func Encode(in []byte) []byte {
	if len(in) == 0 {
		return []byte{1}
	}
	out := make([]byte, 0, len(in)+len(in)/254+2)
	out = append(out, 0) // placeholder code byte
	codeIdx := 0
	code := byte(1)

	flush := func(c byte) {
		out[codeIdx] = c
	}

	for i := 0; i < len(in); i++ {
		if in[i] == 0 {
			flush(code)
			code = 1
			codeIdx = len(out)
			out = append(out, 0)
			continue
		}
		out = append(out, in[i])
		code++
		if code == 0xFF {
			flush(code)
			code = 1
			codeIdx = len(out)
			out = append(out, 0)
		}
	}
	flush(code)
	return out
}

// Decode reverses Encode. It returns nil if in is malformed (a zero
// code byte, or a run that runs past the end of in).
func Decode(in []byte) []byte {
	out := make([]byte, 0, len(in))
	i := 0
	for i < len(in) {
		code := in[i]
		i++
		if code == 0 {
			return nil
		}
		for n := byte(1); n < code; n++ {
			if i >= len(in) {
				return nil
			}
			out = append(out, in[i])
			i++
		}
		if i < len(in) && code != 0xFF {
			out = append(out, 0)
		}
	}
	return out
}
