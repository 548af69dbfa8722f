package orchestration

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/agbru/magcalc/internal/config"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/format"
	"github.com/agbru/magcalc/internal/magnitude"
)

// MismatchError reports a result that disagrees with the reference
// computation.
type MismatchError struct {
	JobID string
	Op    string
	Got   string
	Want  string
}

func (e MismatchError) Error() string {
	return fmt.Sprintf("job %s (%s): got %s, want %s", e.JobID, e.Op, e.Got, e.Want)
}

// Verify cross-checks the evaluation of job against math/big and, for
// multiplications, against both multiplication algorithms of calc. evalErr is
// the error Evaluate returned, if any. It returns a MismatchError when the
// results disagree and nil otherwise; failures that the reference cannot
// reproduce, such as exhausted memory, are not mismatches.
func Verify(calc *magnitude.Calculator, job Job, res Result, evalErr error) error {
	want, wantErr := reference(job)
	if wantErr != nil {
		if evalErr == nil {
			return MismatchError{JobID: job.ID, Op: job.Op, Got: res.Format(true), Want: wantErr.Error()}
		}
		return nil
	}
	if evalErr != nil {
		if apperrors.IsRuntimeException(evalErr) {
			return MismatchError{JobID: job.ID, Op: job.Op, Got: evalErr.Error(), Want: "0x" + want.Text(16)}
		}
		return nil
	}

	got := res.Value.Big()
	if res.IsComparison() {
		got = big.NewInt(int64(res.Sign))
	}
	if got.Cmp(want) != 0 {
		return MismatchError{JobID: job.ID, Op: job.Op, Got: res.Format(true), Want: "0x" + want.Text(16)}
	}
	if job.Op == "mul" {
		return crossCheckMultiply(calc, job, res.Value)
	}
	return nil
}

// reference computes job with math/big. Comparison results are -1, 0 or 1.
func reference(job Job) (*big.Int, error) {
	if arity, ok := config.OperationArity(job.Op); !ok || arity != len(job.Operands) {
		return nil, apperrors.ValidationError{Field: "op", Message: fmt.Sprintf("malformed job %q", job.Op)}
	}
	if job.Op == "mag" {
		raw, err := format.ParseHexBytes(job.Operands[0])
		if err != nil {
			return nil, err
		}
		v := new(big.Int).SetBytes(raw)
		if len(raw) > 0 && raw[0]&0x80 != 0 {
			v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(8*len(raw))))
			v.Abs(v)
		}
		return v, nil
	}

	a, err := referenceOperand(job.Operands[0])
	if err != nil {
		return nil, err
	}
	if job.Op == "shl" || job.Op == "shr" {
		n, err := format.ParseShift(job.Operands[1])
		if err != nil {
			return nil, err
		}
		left := job.Op == "shl"
		count := int64(n)
		if count < 0 {
			left, count = !left, -count
		}
		if left {
			return new(big.Int).Lsh(a, uint(count)), nil
		}
		return new(big.Int).Rsh(a, uint(count)), nil
	}

	b, err := referenceOperand(job.Operands[1])
	if err != nil {
		return nil, err
	}
	switch job.Op {
	case "add":
		return new(big.Int).Add(a, b), nil
	case "sub":
		if a.Cmp(b) < 0 {
			return nil, apperrors.ValidationError{Field: "operands", Message: "negative difference"}
		}
		return new(big.Int).Sub(a, b), nil
	case "mul":
		return new(big.Int).Mul(a, b), nil
	case "div", "rem":
		if b.Sign() == 0 {
			return nil, apperrors.ArithmeticError{Cause: apperrors.ErrDivisionByZero}
		}
		if job.Op == "div" {
			return new(big.Int).Quo(a, b), nil
		}
		return new(big.Int).Rem(a, b), nil
	case "cmp":
		return big.NewInt(int64(a.Cmp(b))), nil
	}
	return nil, apperrors.ValidationError{Field: "op", Message: fmt.Sprintf("unknown operation %q", job.Op)}
}

func referenceOperand(s string) (*big.Int, error) {
	raw, err := format.ParseOperand(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(raw), nil
}

// crossCheckMultiply recomputes a product with the schoolbook and Karatsuba
// algorithms independently of the configured threshold.
func crossCheckMultiply(calc *magnitude.Calculator, job Job, got magnitude.Magnitude) error {
	a, err := referenceOperand(job.Operands[0])
	if err != nil {
		return err
	}
	b, err := referenceOperand(job.Operands[1])
	if err != nil {
		return err
	}
	x, y := magnitude.FromBig(a), magnitude.FromBig(b)

	for _, alt := range []struct {
		name string
		mul  func(x, y magnitude.Magnitude) (magnitude.Magnitude, error)
	}{
		{"schoolbook", calc.MultiplyBasic},
		{"karatsuba", calc.MultiplyKaratsuba},
	} {
		p, err := alt.mul(x, y)
		if err != nil {
			var memErr apperrors.MemoryError
			if errors.As(err, &memErr) {
				continue
			}
			return err
		}
		same := p.Equal(got)
		want := p.String()
		calc.Release(p)
		if !same {
			return MismatchError{JobID: job.ID, Op: job.Op + "/" + alt.name, Got: got.String(), Want: want}
		}
	}
	return nil
}
