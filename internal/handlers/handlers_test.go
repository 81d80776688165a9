package handlers

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/servicios/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"conflict", apperr.Conflict("El email ya está registrado"), http.StatusBadRequest, `{"error":"El email ya está registrado"}`},
		{"auth", apperr.Auth("Credenciales inválidas", nil), http.StatusUnauthorized, `{"error":"Credenciales inválidas"}`},
		{"forbidden", apperr.Forbidden("No"), http.StatusForbidden, `{"error":"No"}`},
		{"upload", apperr.Upload("tipo de archivo no permitido", nil), http.StatusBadRequest, `{"error":"tipo de archivo no permitido"}`},
		{"internal", apperr.Internal("Error interno del servidor", errors.New("db down")), http.StatusInternalServerError, `{"error":"Error interno del servidor"}`},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, `{"error":"Error interno del servidor"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tc.err)
			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}

func TestRespondErrorMalformedJSON(t *testing.T) {
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var body struct {
			Rating int `json:"rating"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	for _, payload := range []string{`{"rating":`, `{"rating":"cinco"}`, ``} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", bytes.NewBufferString(payload)))
		assert.Equal(t, http.StatusBadRequest, w.Code, payload)
	}
}

func multipartRequest(t *testing.T, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/providers/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestSignupFromForm(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartRequest(t, map[string]string{
		"email":          "ana@example.com",
		"experience":     "7",
		"pricePerHour":   "22.5",
		"specialties":    `["Tuberías","Calefones"]`,
		"certifications": "Gas, Electricidad básica",
		"references":     `[{"name":"Luis","phone":"555","relationship":"cliente"}]`,
	})

	in, err := signupFromForm(c)
	require.NoError(t, err)
	assert.Equal(t, 7, in.Experience)
	assert.Equal(t, 22.5, in.PricePerHour)
	assert.Equal(t, []string{"Tuberías", "Calefones"}, in.Specialties)
	assert.Equal(t, []string{"Gas", "Electricidad básica"}, in.Certifications)
	require.Len(t, in.References, 1)
	assert.Equal(t, "Luis", in.References[0].Name)
}

func TestSignupFromFormRejectsBadNumbers(t *testing.T) {
	for _, fields := range []map[string]string{
		{"experience": "siete"},
		{"pricePerHour": "caro"},
		{"references": "Luis"},
	} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = multipartRequest(t, fields)

		_, err := signupFromForm(c)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "%v", fields)
	}
}
