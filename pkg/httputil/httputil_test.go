package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusBadRequest, "Insufficient stock available.")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Insufficient stock available.", body["error"])
}

func TestWriteDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteDetail(rec, http.StatusUnauthorized, "Given token not valid for any token type")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Given token not valid for any token type", body["detail"])
}

func TestWriteFieldErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteFieldErrors(rec, http.StatusBadRequest, map[string][]string{
		"email": {"This field is required."},
	})

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"This field is required."}, body["email"])
}

func TestWritePage(t *testing.T) {
	rec := httptest.NewRecorder()
	WritePage(rec, []string{"a", "b"}, 5, "http://x/api/products/?page=2", "")

	var body struct {
		Count    int      `json:"count"`
		Next     *string  `json:"next"`
		Previous *string  `json:"previous"`
		Results  []string `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 5, body.Count)
	require.NotNil(t, body.Next)
	assert.Nil(t, body.Previous)
	assert.Len(t, body.Results, 2)
}
