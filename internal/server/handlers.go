package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/agbru/fibwindow/internal/logging"
	"github.com/agbru/fibwindow/internal/recurrence"
	"github.com/agbru/fibwindow/internal/service"
	"github.com/agbru/fibwindow/pkg/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	s.writeJSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Version:   s.version,
	})
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	s.writeJSONResponse(w, http.StatusOK, models.AlgorithmsResponse{Algorithms: s.service.Algorithms()})
}

// handleEvaluate serves GET /evaluate?n=<n>[&algo=][&s0=&s1=&p=&q=].
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	query := r.URL.Query()
	n, err := parseIndex(query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recSpec, err := s.parseRecurrence(query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	algo := query.Get("algo")
	if algo == "" || algo == recurrence.AlgoAll {
		algo = s.defaultAlgo()
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	value, err := s.service.Evaluate(ctx, algo, n, optionsFor(recSpec))
	duration := time.Since(start)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, models.EvaluationResponse{
		N:          n,
		Algorithm:  algo,
		Recurrence: recSpec,
		Value:      value,
		Hex:        "0x" + strconv.FormatUint(value, 16),
		Duration:   duration.String(),
		RequestID:  RequestID(r.Context()),
	})
}

// handleSequence serves GET /sequence?n=<n>[&s0=&s1=&p=&q=].
func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	if !s.requireGet(w, r) {
		return
	}
	query := r.URL.Query()
	n, err := parseIndex(query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	recSpec, err := s.parseRecurrence(query)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeouts.RequestTimeout)
	defer cancel()

	start := time.Now()
	terms, err := s.service.Sequence(ctx, n, optionsFor(recSpec))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, models.SequenceResponse{
		N:          n,
		Recurrence: recSpec,
		Terms:      terms,
		Duration:   time.Since(start).String(),
		RequestID:  RequestID(r.Context()),
	})
}

// defaultAlgo is the configured strategy, or linear when the configuration
// selects all of them.
func (s *Server) defaultAlgo() string {
	if s.cfg.Algo == "" || s.cfg.Algo == recurrence.AlgoAll {
		return recurrence.AlgoLinear
	}
	return s.cfg.Algo
}

func parseIndex(query url.Values) (int64, error) {
	raw := query.Get("n")
	if raw == "" {
		return 0, ParseError{Param: "n", Message: "missing"}
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ParseError{Param: "n", Message: "must be an integer"}
	}
	return n, nil
}

// parseRecurrence reads s0, s1, p and q, defaulting each to the server
// configuration.
func (s *Server) parseRecurrence(query url.Values) (models.RecurrenceSpec, error) {
	recSpec := models.RecurrenceSpec{S0: s.cfg.S0, S1: s.cfg.S1, P: s.cfg.P, Q: s.cfg.Q}
	for _, p := range []struct {
		name string
		dst  *uint64
	}{{"s0", &recSpec.S0}, {"s1", &recSpec.S1}, {"p", &recSpec.P}, {"q", &recSpec.Q}} {
		raw := query.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return recSpec, ParseError{Param: p.name, Message: "must be a non-negative 64-bit integer"}
		}
		*p.dst = v
	}
	return recSpec, nil
}

func optionsFor(recSpec models.RecurrenceSpec) recurrence.Options {
	r := recurrence.New(recSpec.S0, recSpec.S1, recSpec.P, recSpec.Q)
	return recurrence.Options{Recurrence: &r}
}

func (s *Server) requireGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet {
		return true
	}
	w.Header().Set("Allow", http.MethodGet)
	s.writeJSONResponse(w, http.StatusMethodNotAllowed,
		errorBody(http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", RequestID(r.Context())))
	return false
}

// classify maps an error to its HTTP status and machine-readable code.
func classify(err error) (int, string) {
	var parseErr ParseError
	var unknown *recurrence.UnknownEvaluatorError
	switch {
	case errors.As(err, &parseErr):
		return http.StatusBadRequest, "invalid_parameter"
	case errors.As(err, &unknown):
		return http.StatusBadRequest, "unknown_algorithm"
	case errors.Is(err, service.ErrMaxValueExceeded):
		return http.StatusBadRequest, "max_n_exceeded"
	case errors.Is(err, recurrence.ErrIndexTooLarge):
		return http.StatusBadRequest, "index_too_large"
	case errors.Is(err, recurrence.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, recurrence.ErrOverflow):
		return http.StatusUnprocessableEntity, "overflow"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	message := err.Error()
	if code == "max_n_exceeded" {
		message = fmt.Sprintf("Value of 'n' exceeds maximum allowed (%d).", s.securityConfig.MaxNValue)
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("evaluation failed", err, logging.String("request_id", RequestID(r.Context())))
		message = "internal error"
	}
	s.writeJSONResponse(w, status, errorBody(status, code, message, RequestID(r.Context())))
}

func (s *Server) writeJSONResponse(w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		s.logger.Error("encoding JSON response", err)
	}
}
