package scanner

import (
	"strconv"
)

// number scans a SysY integer literal: decimal, octal (leading 0) or
// hexadecimal (leading 0x/0X), following the C rules. SysY has no floating
// point, no binary literals and no digit separators.
func (s *Scanner) number() (lit string, base int) {
	startOff := s.off

	base = 10
	invalid := -1 // offset of first digit >= base, or < 0

	if s.cur == '0' {
		s.advance()
		if lower(s.cur) == 'x' {
			s.advance()
			base = 16
			if !isHexadecimal(s.cur) {
				s.error(startOff, "hexadecimal literal has no digits")
			}
		} else if isDecimal(s.cur) {
			base = 8
		}
		// a lone "0" stays decimal
	}

	for isDecimal(s.cur) || (base == 16 && isHexadecimal(s.cur)) {
		if base == 8 && s.cur >= '8' && invalid < 0 {
			invalid = s.off
		}
		s.advance()
	}

	lit = string(s.src[startOff:s.off])
	if invalid >= 0 {
		s.errorf(invalid, "invalid digit %q in octal literal", lit[invalid-startOff])
	}
	return lit, base
}

func isDecimal(rn rune) bool {
	return '0' <= rn && rn <= '9'
}

func isHexadecimal(rn rune) bool {
	return isDecimal(rn) ||
		'a' <= rn && rn <= 'f' ||
		'A' <= rn && rn <= 'F'
}

func lower(ch rune) rune {
	return ('a' - 'A') | ch // returns lower-case ch iff ch is ASCII letter
}

// numberToInt converts the literal to its int32 value. The base prefix, if
// any, is stripped before conversion. Values are parsed as unsigned 32-bit,
// so anything up to 4294967295 is accepted and wraps via two's complement
// into int32; the case that occurs in source is 2147483648, as the operand
// of unary minus. Larger values report strconv.ErrRange.
func numberToInt(lit string, base int) (int32, error) {
	switch base {
	case 16:
		lit = lit[2:]
	case 8:
		lit = lit[1:]
	}
	v, err := strconv.ParseUint(lit, base, 32)
	return int32(uint32(v)), err
}
