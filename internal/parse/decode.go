package parse

import (
	"bufio"
	"io"
	"strings"
	"unicode/utf8"
)

// decodeLatin1 converts an ISO 8859-1 byte sequence to UTF-8. Every Latin-1
// byte maps to the Unicode code point of the same value, so no table is
// needed and the conversion cannot fail.
func decodeLatin1(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b) + len(b)/8)
	for _, c := range b {
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

// readLatin1Lines reads r line by line, decoding each line from Latin-1 and
// stripping the trailing newline and carriage return.
func readLatin1Lines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, decodeLatin1(sc.Bytes()))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
