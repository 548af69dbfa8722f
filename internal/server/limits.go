package server

import (
	"fmt"

	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/format"
)

// operandWords is an upper bound on the words of the value written as s.
// A word holds eight hex digits and at least nine decimal ones.
func operandWords(s string) int {
	return len(s)/8 + 1
}

// resultWords bounds the size of the value op produces from operands, which
// must already have the arity of op.
func resultWords(op string, operands []string) (int, error) {
	switch op {
	case "cmp":
		return 0, nil
	case "mag", "sub", "div", "rem":
		return operandWords(operands[0]), nil
	case "add":
		return max(operandWords(operands[0]), operandWords(operands[1])) + 1, nil
	case "mul":
		return operandWords(operands[0]) + operandWords(operands[1]), nil
	case "shl", "shr":
		n, err := format.ParseShift(operands[1])
		if err != nil {
			return 0, err
		}
		count := int64(n)
		if op == "shr" {
			count = -count
		}
		if count <= 0 {
			return operandWords(operands[0]), nil
		}
		return operandWords(operands[0]) + int((count+31)/32), nil
	default:
		return 0, apperrors.ValidationError{Field: "op", Message: fmt.Sprintf("unknown operation %q", op)}
	}
}
