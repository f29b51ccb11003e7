// Package oracle is the client for the external scoring service that turns
// a feature payload into a YES/NO propensity score.
package oracle

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ignite/propensity-engine/internal/domain"
)

// Score is a validated oracle answer for one customer.
type Score struct {
	Class          domain.PredictedClass `json:"predicted_class"`
	ProbabilityYes float64               `json:"probability_yes"`
	ProbabilityNo  float64               `json:"probability_no"`
}

// Config holds the oracle connection settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// predictResponse is the oracle's envelope for POST /api/predict.
type predictResponse struct {
	StatusCode int             `json:"status_code"`
	Success    bool            `json:"success"`
	Timestamp  string          `json:"timestamp"`
	Data       *predictData    `json:"data"`
	Meta       json.RawMessage `json:"meta,omitempty"`
}

type predictData struct {
	PredictedClass string   `json:"predicted_class"`
	ProbabilityYes *float64 `json:"probability_yes"`
	ProbabilityNo  *float64 `json:"probability_no"`
}

// Health is the oracle's GET /api/health answer.
type Health struct {
	StatusCode int        `json:"status_code"`
	Success    bool       `json:"success"`
	Timestamp  string     `json:"timestamp"`
	Meta       HealthMeta `json:"meta"`
}

// HealthMeta describes the loaded model.
type HealthMeta struct {
	ModelLoaded bool            `json:"model_loaded"`
	AppInfo     AppInfo         `json:"app_info"`
	ModelInfo   json.RawMessage `json:"model_info,omitempty"`
	SystemInfo  json.RawMessage `json:"system_info,omitempty"`
}

// AppInfo carries the oracle build version.
type AppInfo struct {
	Version string `json:"version"`
}

// ErrorKind classifies oracle failures.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindMalformed ErrorKind = "malformed"
	KindInvalid   ErrorKind = "invalid"
)

// Error is returned for every failed oracle call. A failed call never yields
// a default label.
type Error struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("oracle %s error", e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }
