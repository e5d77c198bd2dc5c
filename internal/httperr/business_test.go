package httperr

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBusiness(t *testing.T) {
	err := fmt.Errorf("create: %w", ErrBusiness("staff_inactive"))
	assert.True(t, IsBusiness(err, "staff_inactive"))
	assert.False(t, IsBusiness(err, "invalid_status"))
	assert.False(t, IsBusiness(nil, "staff_inactive"))
}

func TestWriteDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	WriteDetails(c, http.StatusConflict, "slot_full", "this slot already has 2 of 2 active staff booked", gin.H{"capacity": 2})

	require.Equal(t, http.StatusConflict, w.Code)
	assert.True(t, c.IsAborted())

	var body HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "slot_full", body.Code)
	assert.Equal(t, map[string]any{"capacity": 2.0}, body.Details)
}

func TestBusinessError_HTTPStatus(t *testing.T) {
	var be BusinessError
	require.ErrorAs(t, ErrBusiness("services_required"), &be)
	assert.Equal(t, http.StatusBadRequest, be.HTTPStatus())

	require.ErrorAs(t, ErrUnprocessable("staff_inactive"), &be)
	assert.Equal(t, http.StatusUnprocessableEntity, be.HTTPStatus())
}
