package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageRequest(t *testing.T, query string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "/runs"+query, nil)
	require.NoError(t, err)
	return req
}

// TestParsePageSpec_Defaults verifies the default page size applies when no
// parameters are given.
func TestParsePageSpec_Defaults(t *testing.T) {
	spec, err := parsePageSpec(pageRequest(t, ""))
	require.NoError(t, err)
	assert.Equal(t, uint64(defaultPageLimit), spec.Limit)
	assert.Equal(t, uint64(0), spec.Offset)
}

// TestParsePageSpec_Explicit verifies explicit limit and offset parse through.
func TestParsePageSpec_Explicit(t *testing.T) {
	spec, err := parsePageSpec(pageRequest(t, "?limit=10&offset=30"))
	require.NoError(t, err)
	assert.Equal(t, uint64(10), spec.Limit)
	assert.Equal(t, uint64(30), spec.Offset)
}

// TestParsePageSpec_Caps verifies oversized limits clamp to the maximum.
func TestParsePageSpec_Caps(t *testing.T) {
	spec, err := parsePageSpec(pageRequest(t, "?limit=99999"))
	require.NoError(t, err)
	assert.Equal(t, uint64(maxPageLimit), spec.Limit)
}

// TestParsePageSpec_Invalid covers the rejection cases.
func TestParsePageSpec_Invalid(t *testing.T) {
	_, err := parsePageSpec(pageRequest(t, "?limit=0"))
	assert.ErrorIs(t, err, errBadLimit)

	_, err = parsePageSpec(pageRequest(t, "?limit=ten"))
	assert.ErrorIs(t, err, errBadLimit)

	_, err = parsePageSpec(pageRequest(t, "?offset=-1"))
	assert.ErrorIs(t, err, errBadOffset)
}

// TestWithCORS_EchoesOrigin verifies a browser origin is echoed back with
// credentials allowed.
func TestWithCORS_EchoesOrigin(t *testing.T) {
	handler := WithCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://dashboard.local", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

// TestWithCORS_Preflight verifies OPTIONS requests short-circuit with 204.
func TestWithCORS_Preflight(t *testing.T) {
	handler := WithCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/runs", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// TestValidTables covers the dash aliases on the schema endpoint.
func TestValidTables(t *testing.T) {
	assert.Equal(t, "daily_sales_gold", validTables["daily-sales-gold"])
	assert.Equal(t, "fact_sales", validTables["fact_sales"])
	_, ok := validTables["users"]
	assert.False(t, ok)
}

// TestCalculateNextBackoff verifies growth, the cap and the jitter bounds.
func TestCalculateNextBackoff(t *testing.T) {
	for i := 0; i < 50; i++ {
		next := CalculateNextBackoff(time.Second, 30*time.Second, 2.0, 0.1)
		assert.GreaterOrEqual(t, next, time.Second)
		assert.LessOrEqual(t, next, 2200*time.Millisecond)
	}

	capped := CalculateNextBackoff(25*time.Second, 30*time.Second, 2.0, 0)
	assert.Equal(t, 30*time.Second, capped)
}
