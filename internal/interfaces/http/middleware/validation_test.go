package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/obralink/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cancelBody struct {
	Reason string `json:"reason" binding:"required,max=5"`
	State  string `json:"state" binding:"omitempty,oneof=pending sent"`
}

type listQuery struct {
	State    string `form:"state" binding:"omitempty,jobstate"`
	Platform string `form:"platform" binding:"omitempty,platform"`
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/", func(c *gin.Context) {
		var body cancelBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"too long reason","state":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.NotEmpty(t, resp.Error.RequestID)
	assert.ElementsMatch(t, []dto.ValidationDetail{
		{Field: "reason", Message: "Must be at most 5 characters"},
		{Field: "state", Message: "Must be one of: pending sent"},
	}, resp.Error.Details)
}

func TestValidationDetails_PlainError(t *testing.T) {
	details := ValidationDetails(errors.New("unexpected EOF"))
	assert.Equal(t, []dto.ValidationDetail{{Message: "unexpected EOF"}}, details)
}

func TestSetupValidator_DomainTags(t *testing.T) {
	SetupValidator()

	router := gin.New()
	router.GET("/", func(c *gin.Context) {
		var q listQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	tests := []struct {
		query      string
		wantStatus int
		wantField  string
	}{
		{"?state=error&platform=ctaima", http.StatusOK, ""},
		{"", http.StatusOK, ""},
		{"?state=lost", http.StatusBadRequest, "state"},
		{"?platform=9%20bad!", http.StatusBadRequest, "platform"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantField == "" {
				return
			}
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			require.Len(t, resp.Error.Details, 1)
			assert.Equal(t, tt.wantField, resp.Error.Details[0].Field)
		})
	}
}
