package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ignite/propensity-engine/internal/analytics"
	"github.com/ignite/propensity-engine/internal/features"
	"github.com/ignite/propensity-engine/internal/oracle"
	"github.com/ignite/propensity-engine/internal/pkg/httputil"
	"github.com/ignite/propensity-engine/internal/pkg/logger"
	"github.com/ignite/propensity-engine/internal/service/campaign"
	"github.com/ignite/propensity-engine/internal/service/customer"
	"github.com/ignite/propensity-engine/internal/service/prediction"
)

// respondServiceError maps a service error to its HTTP status. Client errors
// carry the service message; everything else goes through respondSafeError.
func respondServiceError(w http.ResponseWriter, err error) {
	var (
		validation *customer.ValidationError
		mapping    *features.MappingError
		oracleErr  *oracle.Error
	)

	switch {
	case errors.Is(err, campaign.ErrNotFound),
		errors.Is(err, customer.ErrNotFound),
		errors.Is(err, prediction.ErrNotFound):
		httputil.NotFound(w, err.Error())
	case errors.Is(err, campaign.ErrRunInProgress):
		httputil.Conflict(w, "run_in_progress", err.Error())
	case errors.Is(err, campaign.ErrLockLost):
		httputil.Conflict(w, "run_lock_lost", err.Error())
	case errors.Is(err, campaign.ErrInvalidCriteria),
		errors.Is(err, campaign.ErrNameRequired),
		errors.Is(err, customer.ErrInvalidAgeRange),
		errors.Is(err, prediction.ErrNoFields),
		errors.Is(err, prediction.ErrInvalidClass),
		errors.Is(err, prediction.ErrProbabilityRange),
		errors.Is(err, analytics.ErrUnknownGranularity):
		httputil.BadRequest(w, err.Error())
	case errors.As(err, &validation):
		httputil.Unprocessable(w, "invalid customer", validation.Fields)
	case errors.As(err, &mapping):
		httputil.Unprocessable(w, "customer cannot be scored", map[string]string{mapping.Field: mapping.Reason})
	case errors.As(err, &oracleErr):
		logger.Warn("oracle call failed", "kind", string(oracleErr.Kind), "error", err)
		httputil.BadGateway(w, "oracle_"+string(oracleErr.Kind), "scoring service unavailable")
	case errors.Is(err, context.DeadlineExceeded):
		respondSafeError(w, http.StatusGatewayTimeout, err)
	default:
		respondSafeError(w, http.StatusInternalServerError, err)
	}
}

// respondSafeError logs the full internal error and sends a public-safe
// message. Internal details never reach the client.
func respondSafeError(w http.ResponseWriter, code int, internalErr error) {
	msg := safeErrorMessage(code, internalErr)
	if internalErr != nil {
		logger.Error("request failed", "status", code, "public", msg, "error", internalErr)
	}
	httputil.Error(w, code, msg)
}

// safeErrorMessage maps common internal error patterns to public-safe messages.
// 4xx messages are about user input and are returned as is.
func safeErrorMessage(code int, internalErr error) string {
	if code < 500 {
		if internalErr != nil {
			return internalErr.Error()
		}
		return "Bad request"
	}

	if internalErr == nil {
		return "An internal error occurred"
	}

	errStr := strings.ToLower(internalErr.Error())

	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "Service temporarily unavailable"

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "Request timed out"

	case strings.Contains(errStr, "sql") ||
		strings.Contains(errStr, "pq:") ||
		strings.Contains(errStr, "query") ||
		strings.Contains(errStr, "scan") ||
		strings.Contains(errStr, "database"):
		return "A database error occurred"

	case strings.Contains(errStr, "permission") ||
		strings.Contains(errStr, "access denied"):
		return "Access denied"

	default:
		return "An internal error occurred"
	}
}
