package format

import (
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/magnitude"
	"github.com/agbru/magcalc/internal/words"
)

// decimalChunk is the largest power of ten that fits in a word.
const (
	decimalChunk       = 1_000_000_000
	decimalChunkDigits = 9
)

var pow10 = [decimalChunkDigits + 1]words.Word{1, 10, 100, 1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000, 1_000_000_000}

// ParseOperand reads an unsigned integer written in decimal or, with a 0x
// prefix, in hexadecimal. Digits may be grouped with '_' or ','. The result
// is the big-endian unsigned byte encoding of the value, empty for zero.
func ParseOperand(s string) ([]byte, error) {
	clean := strings.NewReplacer("_", "", ",", "").Replace(strings.TrimSpace(s))
	if clean == "" {
		return nil, apperrors.ValidationError{Field: "operand", Message: "empty operand"}
	}
	if strings.HasPrefix(clean, "-") {
		return nil, apperrors.ValidationError{Field: "operand", Message: fmt.Sprintf("%q: magnitudes are unsigned", s)}
	}
	clean = strings.TrimPrefix(clean, "+")
	if rest, ok := cutHexPrefix(clean); ok {
		raw, err := ParseHexBytes(rest)
		if err != nil {
			return nil, err
		}
		return trimZeroBytes(raw), nil
	}
	w, err := parseDecimal(clean)
	if err != nil {
		return nil, apperrors.ValidationError{Field: "operand", Message: fmt.Sprintf("%q: %v", s, err)}
	}
	return wordsToBytes(w), nil
}

// ParseHexBytes decodes a hex string into bytes, keeping leading zero bytes.
// An odd digit count is padded with a leading zero nibble.
func ParseHexBytes(s string) ([]byte, error) {
	s, _ = cutHexPrefix(strings.TrimSpace(s))
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, apperrors.ValidationError{Field: "operand", Message: fmt.Sprintf("invalid hex %q", s)}
	}
	return raw, nil
}

// ParseShift reads a signed shift count in the int32 range.
func ParseShift(s string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, apperrors.ValidationError{Field: "shift", Message: fmt.Sprintf("%q is not a 32-bit integer", s)}
	}
	return int32(n), nil
}

// FormatMagnitude renders m in decimal, or in 0x-prefixed hexadecimal when
// hexOutput is set.
func FormatMagnitude(m magnitude.Magnitude, hexOutput bool) string {
	s, _ := FormatMagnitudeContext(context.Background(), m, hexOutput)
	return s
}

// formatCheckEvery is the number of decimal chunks extracted between two
// checks of the context.
const formatCheckEvery = 64

// FormatMagnitudeContext is FormatMagnitude for values large enough that the
// quadratic decimal conversion must be bounded by ctx. It returns ctx.Err()
// when ctx is done before the conversion completes.
func FormatMagnitudeContext(ctx context.Context, m magnitude.Magnitude, hexOutput bool) (string, error) {
	if hexOutput {
		return m.String(), nil
	}
	if m.IsZero() {
		return "0", nil
	}
	x := append([]words.Word(nil), m.Words()...)
	var chunks []words.Word
	for len(x) > 0 {
		if len(chunks)%formatCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
		chunks = append(chunks, words.DivWord(x, x, decimalChunk))
		x = x[words.LeadingZeroWords(x):]
	}
	var sb strings.Builder
	sb.Grow(len(chunks) * decimalChunkDigits)
	sb.WriteString(strconv.FormatUint(uint64(chunks[len(chunks)-1]), 10))
	for i := len(chunks) - 2; i >= 0; i-- {
		fmt.Fprintf(&sb, "%09d", chunks[i])
	}
	return sb.String(), nil
}

// FormatNumberString inserts thousands separators into a decimal string.
func FormatNumberString(s string) string {
	if s == "" {
		return ""
	}
	prefix := ""
	if s[0] == '-' {
		prefix, s = "-", s[1:]
	}
	n := len(s)
	if n <= 3 {
		return prefix + s
	}
	var sb strings.Builder
	sb.Grow(len(prefix) + n + (n-1)/3)
	sb.WriteString(prefix)
	first := n % 3
	if first == 0 {
		first = 3
	}
	sb.WriteString(s[:first])
	for i := first; i < n; i += 3 {
		sb.WriteByte(',')
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// FormatDigits summarizes a long decimal string as "1234...6789 (N digits)".
// Strings of at most limit digits are returned with separators.
func FormatDigits(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return FormatNumberString(s)
	}
	edge := max(limit/2, 1)
	return fmt.Sprintf("%s...%s (%s digits)", s[:edge], s[len(s)-edge:], FormatNumberString(strconv.Itoa(len(s))))
}

func cutHexPrefix(s string) (string, bool) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:], true
	}
	return s, false
}

func parseDecimal(s string) ([]words.Word, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, fmt.Errorf("invalid digit %q", r)
		}
	}
	var acc []words.Word
	for len(s) > 0 {
		k := len(s) % decimalChunkDigits
		if k == 0 {
			k = decimalChunkDigits
		}
		chunk, err := strconv.ParseUint(s[:k], 10, 32)
		if err != nil {
			return nil, err
		}
		s = s[k:]

		prod := make([]words.Word, len(acc)+1)
		words.MulBasic(prod, acc, []words.Word{pow10[k]})
		sum := make([]words.Word, len(prod)+1)
		words.Add(sum, prod, []words.Word{words.Word(chunk)})
		acc = sum[words.LeadingZeroWords(sum):]
		if len(acc) > math.MaxInt32/words.Size {
			return nil, fmt.Errorf("operand too large")
		}
	}
	return acc, nil
}

func wordsToBytes(w []words.Word) []byte {
	raw := make([]byte, 4*len(w))
	for i, v := range w {
		raw[4*i] = byte(v >> 24)
		raw[4*i+1] = byte(v >> 16)
		raw[4*i+2] = byte(v >> 8)
		raw[4*i+3] = byte(v)
	}
	return trimZeroBytes(raw)
}

func trimZeroBytes(raw []byte) []byte {
	i := 0
	for i < len(raw) && raw[i] == 0 {
		i++
	}
	return raw[i:]
}
