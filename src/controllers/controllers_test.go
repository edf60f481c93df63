package controllers

import (
	"errors"
	"net/http"
	"starcall/src/types"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestFail(t *testing.T) {
	status, err := fail(types.ErrNotFound("Order not found"))
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, gin.H{"error": "Order not found"}, ErrorBody(err))

	status, err = fail(types.ErrTransferFailed(errors.New("card declined")))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, gin.H{"error": "Payment transfer failed", "details": "card declined"}, ErrorBody(err))

	status, err = fail(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, gin.H{"error": "Internal server error"}, ErrorBody(err))
}

func TestBadRequest(t *testing.T) {
	status, err := badRequest(errors.New("Key: 'tipAmount' failed on the 'money' tag"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.True(t, types.IsKind(err, types.ERR_VALIDATION))
}
