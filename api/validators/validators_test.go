package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/albin6/cellsphere/pkg/errors"
)

type sampleBody struct {
	SKU      string `json:"sku" validate:"required"`
	Quantity int    `json:"quantity" validate:"min=1,max=5"`
}

func TestDecodeJSONBody(t *testing.T) {
	var body sampleBody
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sku":"PX-128","quantity":2}`))
	require.NoError(t, DecodeJSONBody(req, &body))
	require.Equal(t, "PX-128", body.SKU)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"quantity":9}`))
	err := DecodeJSONBody(req, &body)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	require.Equal(t, "is required", details["sku"])
	require.Equal(t, "must be at most 5", details["quantity"])

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"sku":"x","extra":true}`))
	require.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &body), pkgerrors.CodeValidation))
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=abc&big=1000", nil)

	page, err := ParseQueryInt(req, "page", 1, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 3, page)

	def, err := ParseQueryInt(req, "missing", 10, 1, 100)
	require.NoError(t, err)
	require.Equal(t, 10, def)

	_, err = ParseQueryInt(req, "limit", 10, 1, 100)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ParseQueryInt(req, "big", 10, 1, 100)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParsePathUUID(t *testing.T) {
	id := uuid.New()
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("orderId", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	got, err := ParsePathUUID(withParam(id.String()), "orderId")
	require.NoError(t, err)
	require.Equal(t, id, got)

	_, err = ParsePathUUID(withParam("nope"), "orderId")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = ParsePathUUID(withParam(""), "orderId")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	require.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	require.Equal(t, "abc", SanitizeString("abc", 0))
	require.Equal(t, "ab", SanitizeString("a\x00b", 10))
	require.Equal(t, "₹₹", SanitizeString("₹₹₹", 2))
}

func TestParsePage(t *testing.T) {
	params, err := ParsePage(httptest.NewRequest(http.MethodGet, "/?page=3&limit=20", nil))
	require.NoError(t, err)
	require.Equal(t, 3, params.Page)
	require.Equal(t, 20, params.Limit)

	params, err = ParsePage(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Equal(t, 1, params.Page)

	_, err = ParsePage(httptest.NewRequest(http.MethodGet, "/?limit=1000", nil))
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestParseQueryBoolAndTime(t *testing.T) {
	active, err := ParseQueryBool(httptest.NewRequest(http.MethodGet, "/?active=TRUE", nil), "active")
	require.NoError(t, err)
	require.True(t, active)

	_, err = ParseQueryBool(httptest.NewRequest(http.MethodGet, "/?active=maybe", nil), "active")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	start, err := ParseQueryTime(httptest.NewRequest(http.MethodGet, "/?startDate=2026-03-01", nil), "startDate")
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), *start)

	missing, err := ParseQueryTime(httptest.NewRequest(http.MethodGet, "/", nil), "endDate")
	require.NoError(t, err)
	require.Nil(t, missing)

	_, err = ParseQueryTime(httptest.NewRequest(http.MethodGet, "/?endDate=yesterday", nil), "endDate")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

type previewLine struct {
	Code string `json:"code" validate:"required"`
}

func TestDecodeJSONBodyValidatesArrays(t *testing.T) {
	var lines []previewLine
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[{"code":"SAVE10"}]`))
	require.NoError(t, DecodeJSONBody(req, &lines))
	require.Len(t, lines, 1)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[]`))
	require.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &lines), pkgerrors.CodeValidation))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`[{"code":""}]`))
	require.True(t, pkgerrors.IsCode(DecodeJSONBody(req, &lines), pkgerrors.CodeValidation))
}

type returnBody struct {
	Reason string `json:"reason" validate:"notblank"`
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	var body returnBody

	err := DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader("")), &body)
	require.EqualError(t, err, "VALIDATION_ERROR: request body is required")

	err = DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"x"}{"reason":"y"}`)), &body)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	big := `{"reason":"` + strings.Repeat("a", MaxBodyBytes) + `"}`
	err = DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big)), &body)
	require.ErrorContains(t, err, "exceeds")

	err = DecodeJSONBody(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"   "}`)), &body)
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	require.Equal(t, "is required", details["reason"])
}
