package orchestration

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/agbru/magcalc/internal/errors"
)

func TestLoadJobs(t *testing.T) {
	t.Parallel()
	const src = `
jobs:
  - id: square
    op: mul
    operands: ["0xffffffff", "0xffffffff"]
  - op: mag
    operands: ["0xff00"]
  - op: shr
    operands: ["1_000_000", "-3"]
`
	jobs, err := LoadJobs(strings.NewReader(src))
	require.NoError(t, err)

	want := []Job{
		{ID: "square", Op: "mul", Operands: []string{"0xffffffff", "0xffffffff"}},
		{Op: "mag", Operands: []string{"0xff00"}},
		{Op: "shr", Operands: []string{"1_000_000", "-3"}},
	}
	if diff := cmp.Diff(want, jobs, cmpopts.IgnoreFields(Job{}, "ID")); diff != "" {
		t.Errorf("LoadJobs mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "square", jobs[0].ID)
	for _, j := range jobs[1:] {
		_, err := uuid.Parse(j.ID)
		assert.NoError(t, err, "generated id %q should be a UUID", j.ID)
	}
	assert.NotEqual(t, jobs[1].ID, jobs[2].ID)
}

func TestLoadJobsErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"no jobs", "jobs: []\n"},
		{"unknown op", "jobs:\n  - op: pow\n    operands: [\"1\", \"2\"]\n"},
		{"arity", "jobs:\n  - op: add\n    operands: [\"1\"]\n"},
		{"duplicate id", "jobs:\n  - {id: a, op: cmp, operands: [\"1\", \"2\"]}\n  - {id: a, op: cmp, operands: [\"1\", \"2\"]}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := LoadJobs(strings.NewReader(tt.src))
			var ve apperrors.ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestLoadJobsRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	_, err := LoadJobs(strings.NewReader("jobs:\n  - op: add\n    operand: [\"1\", \"2\"]\n"))
	assert.Error(t, err)
}
