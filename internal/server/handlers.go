package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/agbru/magcalc/internal/alloc"
	"github.com/agbru/magcalc/internal/config"
	apperrors "github.com/agbru/magcalc/internal/errors"
	"github.com/agbru/magcalc/internal/logging"
	"github.com/agbru/magcalc/internal/orchestration"
	"github.com/agbru/magcalc/internal/sysmon"
	"github.com/agbru/magcalc/internal/words"
)

// EvalRequest is the body of POST /v1/eval. Operands are decimal or
// 0x-prefixed hexadecimal.
type EvalRequest struct {
	Op       string   `json:"op"`
	Operands []string `json:"operands"`
	Hex      bool     `json:"hex,omitempty"`
}

// EvalResponse is the body of a successful evaluation. Words holds the
// result most significant word first; Sign is set for cmp only.
type EvalResponse struct {
	RequestID string       `json:"request_id"`
	Op        string       `json:"op"`
	Result    string       `json:"result"`
	Sign      *int32       `json:"sign,omitempty"`
	Bits      int          `json:"bits"`
	Words     []words.Word `json:"words"`
	Duration  string       `json:"duration"`
	Verified  bool         `json:"verified,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty"`
	Error     string `json:"error"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string       `json:"status"`
	Uptime    string       `json:"uptime"`
	Allocator *alloc.Stats `json:"allocator,omitempty"`
	System    sysmon.Stats `json:"system"`
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.security.MaxBodyBytes)
	var req EvalRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.writeError(w, r, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	if err := s.validate(req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	jr := s.engine.Run(ctx, orchestration.Job{ID: RequestID(r.Context()), Op: req.Op, Operands: req.Operands})
	if jr.Err != nil {
		s.writeError(w, r, statusFor(jr.Err), jr.Err)
		return
	}
	if jr.Mismatch != nil {
		s.logger.Error("verification mismatch", jr.Mismatch, logging.String("request_id", jr.Job.ID))
		s.writeError(w, r, http.StatusInternalServerError, jr.Mismatch)
		return
	}

	text, err := jr.Result.FormatContext(ctx, req.Hex)
	if err != nil {
		s.writeError(w, r, statusFor(err), err)
		return
	}
	resp := EvalResponse{
		RequestID: jr.Job.ID,
		Op:        req.Op,
		Result:    text,
		Words:     []words.Word{},
		Duration:  jr.Duration.String(),
		Verified:  jr.Verified,
	}
	if jr.Result.IsComparison() {
		resp.Sign = &jr.Result.Sign
	} else {
		resp.Bits = jr.Result.Value.BitLen()
		resp.Words = append(resp.Words, jr.Result.Value.Words()...)
	}
	writeJSON(w, http.StatusOK, resp)
}

// validate rejects requests before any buffer is allocated.
func (s *Server) validate(req EvalRequest) error {
	arity, ok := config.OperationArity(req.Op)
	if !ok {
		return apperrors.ValidationError{Field: "op", Message: fmt.Sprintf("unknown operation %q", req.Op)}
	}
	if len(req.Operands) != arity {
		return apperrors.ValidationError{Field: "operands", Message: fmt.Sprintf("%s takes %d operands, got %d", req.Op, arity, len(req.Operands))}
	}
	for i, op := range req.Operands {
		if s.security.MaxOperandDigits > 0 && len(op) > s.security.MaxOperandDigits {
			return apperrors.ValidationError{Field: fmt.Sprintf("operands[%d]", i), Message: fmt.Sprintf("longer than %d characters", s.security.MaxOperandDigits)}
		}
	}
	if s.security.MaxResultWords > 0 {
		n, err := resultWords(req.Op, req.Operands)
		if err != nil {
			return err
		}
		if n > s.security.MaxResultWords {
			return apperrors.ValidationError{Field: "operands", Message: fmt.Sprintf("%s result would exceed %d words", req.Op, s.security.MaxResultWords)}
		}
	}
	return nil
}

// statusFor maps an evaluation error to an HTTP status.
func statusFor(err error) int {
	var (
		valErr apperrors.ValidationError
		memErr apperrors.MemoryError
	)
	switch {
	case errors.As(err, &valErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.As(err, &memErr):
		return http.StatusInsufficientStorage
	case apperrors.IsRuntimeException(err):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	resp := HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
		System: sysmon.SampleContext(r.Context()),
	}
	if s.stats != nil {
		st := s.stats()
		resp.Allocator = &st
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, r, http.StatusMethodNotAllowed, errors.New("method not allowed"))
		return
	}
	s.metrics.WritePrometheus(w, r)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code int, err error) {
	id := RequestID(r.Context())
	if code >= http.StatusInternalServerError {
		s.logger.Error("request failed", err, logging.String("request_id", id), logging.Int("status", code))
	}
	writeJSON(w, code, ErrorResponse{RequestID: id, Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
