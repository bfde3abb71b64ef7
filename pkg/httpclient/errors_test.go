package httpclient

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/steve-ongera/amazon/pkg/errors"
)

func errResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseResponseError_ActionError(t *testing.T) {
	err := ParseResponseError(errResponse(http.StatusBadRequest, `{"error":"Insufficient stock"}`))
	require.Error(t, err)

	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Insufficient stock", apiErr.Message)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
}

func TestParseResponseError_DRFDetail(t *testing.T) {
	err := ParseResponseError(errResponse(http.StatusNotFound, `{"detail":"Not found."}`))
	require.Error(t, err)

	var apiErr *apperrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Not found.", apiErr.Message)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestParseResponseError_FieldErrors(t *testing.T) {
	body := `{"email":["This field is required."],"password":["Too short.","Too common."]}`
	err := ParseResponseError(errResponse(http.StatusBadRequest, body))
	require.Error(t, err)

	fields := apperrors.FieldErrors(err)
	require.NotNil(t, fields)
	assert.Equal(t, "This field is required.", fields["email"])
	assert.Equal(t, "Too short.; Too common.", fields["password"])
}

func TestParseResponseError_Unauthorized(t *testing.T) {
	err := ParseResponseError(errResponse(http.StatusUnauthorized, `{"detail":"Token expired"}`))
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
}

func TestParseResponseError_PaymentFailed(t *testing.T) {
	err := ParseResponseError(errResponse(http.StatusUnprocessableEntity, `{"error":"STK push rejected"}`))
	assert.True(t, errors.Is(err, apperrors.ErrPaymentFailed))
	assert.Equal(t, "STK push rejected", apperrors.UserMessage(err, "fallback"))
}

func TestParseResponseError_UnstructuredBody(t *testing.T) {
	err := ParseResponseError(errResponse(http.StatusBadGateway, "upstream timeout"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "upstream timeout")
}

func TestIsClientError(t *testing.T) {
	assert.True(t, IsClientError(http.StatusBadRequest))
	assert.True(t, IsClientError(http.StatusNotFound))
	assert.False(t, IsClientError(http.StatusOK))
	assert.False(t, IsClientError(http.StatusInternalServerError))
}
