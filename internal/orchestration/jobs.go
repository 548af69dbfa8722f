package orchestration

import (
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/agbru/magcalc/internal/config"
	apperrors "github.com/agbru/magcalc/internal/errors"
)

// Job is one operation of a batch file.
type Job struct {
	ID       string   `yaml:"id,omitempty" json:"id"`
	Op       string   `yaml:"op" json:"op"`
	Operands []string `yaml:"operands" json:"operands"`
}

type jobFile struct {
	Jobs []Job `yaml:"jobs"`
}

// LoadJobs reads a YAML batch file of the form
//
//	jobs:
//	  - id: square
//	    op: mul
//	    operands: ["0xffffffff", "0xffffffff"]
//
// Jobs without an id get a random UUID. Unknown fields, unknown operations,
// wrong operand counts and duplicate ids are rejected.
func LoadJobs(r io.Reader) ([]Job, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f jobFile
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, apperrors.ValidationError{Field: "jobs", Message: "batch file is empty"}
		}
		return nil, fmt.Errorf("decoding batch file: %w", err)
	}
	if len(f.Jobs) == 0 {
		return nil, apperrors.ValidationError{Field: "jobs", Message: "batch file has no jobs"}
	}

	seen := make(map[string]int, len(f.Jobs))
	for i := range f.Jobs {
		job := &f.Jobs[i]
		if job.ID == "" {
			job.ID = uuid.NewString()
		}
		if prev, dup := seen[job.ID]; dup {
			return nil, apperrors.ValidationError{
				Field:   fmt.Sprintf("jobs[%d].id", i),
				Message: fmt.Sprintf("duplicate id %q (first used by jobs[%d])", job.ID, prev),
			}
		}
		seen[job.ID] = i

		arity, ok := config.OperationArity(job.Op)
		if !ok {
			return nil, apperrors.ValidationError{Field: fmt.Sprintf("jobs[%d].op", i), Message: fmt.Sprintf("unknown operation %q", job.Op)}
		}
		if len(job.Operands) != arity {
			return nil, apperrors.ValidationError{
				Field:   fmt.Sprintf("jobs[%d].operands", i),
				Message: fmt.Sprintf("%s takes %d operands, got %d", job.Op, arity, len(job.Operands)),
			}
		}
	}
	return f.Jobs, nil
}
