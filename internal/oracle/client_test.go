package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/propensity-engine/internal/domain"
	"github.com/ignite/propensity-engine/internal/features"
	"github.com/ignite/propensity-engine/internal/pkg/httpretry"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL + "/", Timeout: 2 * time.Second},
		httpretry.NewRetryClient(srv.Client(), 0))
}

func samplePayload() features.Payload {
	p, err := features.ToPayload(&domain.Customer{
		ID: "c1", Age: 35, Job: "admin.", Marital: "married", Education: "university.degree",
		CreditDefault: "no", Housing: "yes", Loan: "no", Contact: "cellular",
		Month: "may", DayOfWeek: "mon", Campaign: 1, PDays: 999, POutcome: "nonexistent",
		ConsConfIdx: -36.4,
	})
	if err != nil {
		panic(err)
	}
	return p
}

func TestPredict_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/predict", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var got map[string]json.RawMessage
		require.NoError(t, json.Unmarshal(body, &got))
		assert.Contains(t, got, "personal_info")
		assert.Contains(t, got, "campaign_info")

		w.Write([]byte(`{"status_code":200,"success":true,"timestamp":"2024-03-01T00:00:00Z",
			"data":{"predicted_class":"YES","probability_yes":0.73,"probability_no":0.27}}`))
	})

	score, err := c.Predict(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Equal(t, domain.ClassYes, score.Class)
	assert.InDelta(t, 0.73, score.ProbabilityYes, 1e-9)
	assert.InDelta(t, 0.27, score.ProbabilityNo, 1e-9)
}

func TestPredict_DerivesMissingLabel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"probability_yes":0.2,"probability_no":0.6}}`))
	})

	score, err := c.Predict(context.Background(), samplePayload())
	require.NoError(t, err)
	assert.Equal(t, domain.ClassNo, score.Class)
	assert.InDelta(t, 0.25, score.ProbabilityYes, 1e-9, "rescaled to sum 1")
	assert.InDelta(t, 0.75, score.ProbabilityNo, 1e-9)
}

func TestPredict_Failures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   ErrorKind
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`, KindStatus},
		{"bad request", http.StatusBadRequest, `{}`, KindStatus},
		{"not json", http.StatusOK, `<html>`, KindMalformed},
		{"success false", http.StatusOK, `{"success":false,"status_code":422}`, KindInvalid},
		{"missing data", http.StatusOK, `{"success":true}`, KindMalformed},
		{"missing probability", http.StatusOK, `{"success":true,"data":{"predicted_class":"YES","probability_yes":0.9}}`, KindMalformed},
		{"out of range", http.StatusOK, `{"success":true,"data":{"probability_yes":1.4,"probability_no":0.1}}`, KindInvalid},
		{"both zero", http.StatusOK, `{"success":true,"data":{"probability_yes":0,"probability_no":0}}`, KindInvalid},
		{"unknown label", http.StatusOK, `{"success":true,"data":{"predicted_class":"MAYBE","probability_yes":0.5,"probability_no":0.5}}`, KindInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			score, err := c.Predict(context.Background(), samplePayload())
			assert.Nil(t, score)
			var oerr *Error
			require.True(t, errors.As(err, &oerr), "want *Error, got %v", err)
			assert.Equal(t, tc.kind, oerr.Kind)
		})
	}
}

func TestPredict_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(Config{BaseURL: srv.URL, Timeout: time.Second}, httpretry.NewRetryClient(nil, 0))

	_, err := c.Predict(context.Background(), samplePayload())
	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, KindTransport, oerr.Kind)
}

func TestPredict_NotConfigured(t *testing.T) {
	c := NewClient(Config{}, nil)
	assert.False(t, c.IsConfigured())
	_, err := c.Predict(context.Background(), samplePayload())
	var oerr *Error
	require.ErrorAs(t, err, &oerr)
	assert.Equal(t, KindTransport, oerr.Kind)
}

func TestHealthAndModelInfo(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/health", r.URL.Path)
		w.Write([]byte(`{"status_code":200,"success":true,"timestamp":"t",
			"meta":{"model_loaded":true,"app_info":{"version":"1.2.0"},"model_info":{"name":"xgb"}}}`))
	})

	h, err := c.Health(context.Background())
	require.NoError(t, err)
	assert.True(t, h.Success)
	assert.True(t, h.Meta.ModelLoaded)

	meta, err := c.ModelInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", meta.AppInfo.Version)
	assert.JSONEq(t, `{"name":"xgb"}`, string(meta.ModelInfo))
}
