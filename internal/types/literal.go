package types

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseIntLiteral evaluates a C integer literal (decimal, octal, hex, binary,
// with u/l suffixes) and derives its type the way C does: the first rung of
// the conversion ladder that can represent the magnitude on the given
// platform. Hex and octal literals may land on unsigned rungs without a u
// suffix; decimal ones may not.
func ParseIntLiteral(text string, p Platform) (int64, Type, error) {
	body := text
	unsigned := false
	longCount := 0
	for len(body) > 0 {
		switch body[len(body)-1] {
		case 'u', 'U':
			unsigned = true
			body = body[:len(body)-1]
			continue
		case 'l', 'L':
			longCount++
			body = body[:len(body)-1]
			continue
		}
		break
	}
	if body == "" {
		return 0, Type{}, fmt.Errorf("parse int literal %q: no digits", text)
	}

	base := 10
	digits := body
	allowUnsignedRungs := unsigned
	switch {
	case strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X"):
		base, digits = 16, body[2:]
		allowUnsignedRungs = true
	case strings.HasPrefix(body, "0b") || strings.HasPrefix(body, "0B"):
		base, digits = 2, body[2:]
		allowUnsignedRungs = true
	case len(body) > 1 && body[0] == '0':
		base, digits = 8, body[1:]
		allowUnsignedRungs = true
	}

	mag, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, Type{}, fmt.Errorf("parse int literal %q: %w", text, err)
	}

	startRank := RankInt
	if longCount == 1 {
		startRank = RankLong
	} else if longCount >= 2 {
		startRank = RankLongLong
	}

	for rank := startRank; rank <= RankLongLong; rank++ {
		if !unsigned {
			t := MakeInt(rank)
			if maxv, ok := p.MaxValue(t); ok && mag <= uint64(maxv) {
				return int64(mag), t, nil
			}
		}
		if unsigned || allowUnsignedRungs {
			t := MakeUint(rank)
			maxv, ok := p.MaxValue(t)
			if !ok || mag <= uint64(maxv) {
				// !ok means the 64-bit rung, which always fits
				return int64(mag), t, nil
			}
		}
	}
	// decimal literal too big for long long but no unsigned rung allowed
	return int64(mag), MakeUint(RankLongLong), nil
}

// ParseFloatLiteral evaluates a C floating literal, including hex floats.
func ParseFloatLiteral(text string) (float64, Type, error) {
	body := text
	rank := RankDouble
	for len(body) > 0 {
		switch body[len(body)-1] {
		case 'f', 'F':
			rank = RankFloat
			body = body[:len(body)-1]
			continue
		case 'l', 'L':
			rank = RankDouble
			body = body[:len(body)-1]
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return 0, Type{}, fmt.Errorf("parse float literal %q: %w", text, err)
	}
	return v, MakeFloat(rank), nil
}

// ParseCharLiteral evaluates a character literal including escapes.
// Multi-character literals combine bytes the way C compilers do:
// 'ab' == ('a'<<8)|'b'.
func ParseCharLiteral(text string) (int64, error) {
	if len(text) < 2 || text[0] != '\'' || text[len(text)-1] != '\'' {
		return 0, fmt.Errorf("parse char literal %q: malformed quotes", text)
	}
	body := text[1 : len(text)-1]
	if body == "" {
		return 0, fmt.Errorf("parse char literal %q: empty", text)
	}
	var v int64
	for len(body) > 0 {
		c, rest, err := unescapeOne(body)
		if err != nil {
			return 0, fmt.Errorf("parse char literal %q: %w", text, err)
		}
		v = v<<8 | int64(c)
		body = rest
	}
	return v, nil
}

// UnescapeString decodes the body of a string literal (without quotes is not
// expected: pass the token text with quotes).
func UnescapeString(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", fmt.Errorf("unescape string %q: malformed quotes", text)
	}
	body := text[1 : len(text)-1]
	var sb strings.Builder
	sb.Grow(len(body))
	for len(body) > 0 {
		c, rest, err := unescapeOne(body)
		if err != nil {
			return "", fmt.Errorf("unescape string %q: %w", text, err)
		}
		sb.WriteByte(c)
		body = rest
	}
	return sb.String(), nil
}

// unescapeOne consumes one logical character (plain byte or escape sequence)
// and returns its byte value with the remaining input.
func unescapeOne(s string) (byte, string, error) {
	if s[0] != '\\' {
		return s[0], s[1:], nil
	}
	if len(s) < 2 {
		return 0, "", fmt.Errorf("dangling backslash")
	}
	switch s[1] {
	case 'n':
		return '\n', s[2:], nil
	case 't':
		return '\t', s[2:], nil
	case 'r':
		return '\r', s[2:], nil
	case 'a':
		return 7, s[2:], nil
	case 'b':
		return 8, s[2:], nil
	case 'f':
		return 12, s[2:], nil
	case 'v':
		return 11, s[2:], nil
	case '\\':
		return '\\', s[2:], nil
	case '\'':
		return '\'', s[2:], nil
	case '"':
		return '"', s[2:], nil
	case '?':
		return '?', s[2:], nil
	case 'x':
		i := 2
		var v int
		for i < len(s) && isHexDigit(s[i]) {
			v = v*16 + hexVal(s[i])
			i++
		}
		if i == 2 {
			return 0, "", fmt.Errorf("\\x without hex digits")
		}
		return byte(v), s[i:], nil
	case '0', '1', '2', '3', '4', '5', '6', '7':
		i := 1
		var v int
		for i < len(s) && i < 4 && s[i] >= '0' && s[i] <= '7' {
			v = v*8 + int(s[i]-'0')
			i++
		}
		return byte(v), s[i:], nil
	default:
		return 0, "", fmt.Errorf("unknown escape \\%c", s[1])
	}
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return int(b-'A') + 10
	}
}
