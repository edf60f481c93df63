package controllers

import (
	"log"
	"net/http"
	"starcall/src/common"
	"starcall/src/types"

	"github.com/gin-gonic/gin"
)

func actorFrom(ctx *gin.Context) *common.Actor {
	return &common.Actor{
		ID:   ctx.GetUint("id"),
		Role: types.Role(ctx.GetString("role")),
	}
}

// fail maps an error to the status it is rendered with.
func fail(err error) (int, error) {
	if appErr, ok := types.AsAppError(err); ok {
		if appErr.Cause != nil {
			log.Printf("[%s] %s\n", appErr.Kind, appErr.Cause.Error())
		}
		return appErr.HTTPStatus(), appErr
	}
	log.Printf("[Controllers] unexpected error: %s\n", err.Error())
	return http.StatusInternalServerError, err
}

func badRequest(err error) (int, error) {
	return http.StatusBadRequest, types.ErrValidation("Invalid request", err.Error())
}

// ErrorBody renders err as {error, details?}. Unknown errors are not leaked.
func ErrorBody(err error) gin.H {
	appErr, ok := types.AsAppError(err)
	if !ok {
		return gin.H{"error": "Internal server error"}
	}
	body := gin.H{"error": appErr.Message}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	return body
}
