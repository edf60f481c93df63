package controllers

import (
	"net/http"
	"starcall/src/common"
	"starcall/src/types"

	"github.com/gin-gonic/gin"
)

func AdminListPayouts(ctx *gin.Context) ([]types.APIResponsePayout, int64, int, error) {
	var query types.ListPayoutsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		status, err := badRequest(err)
		return nil, 0, status, err
	}
	res, total, err := common.ListPayouts(ctx.Request.Context(), actorFrom(ctx), &query)
	if err != nil {
		status, err := fail(err)
		return nil, 0, status, err
	}
	return res, total, http.StatusOK, nil
}

func AdminOrderBreakdown(ctx *gin.Context) (*types.APIResponseBreakdown, int, error) {
	var params types.OrderNumberParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		status, err := badRequest(err)
		return nil, status, err
	}
	res, err := common.OrderBreakdown(ctx.Request.Context(), actorFrom(ctx), params.OrderNumber)
	if err != nil {
		status, err := fail(err)
		return nil, status, err
	}
	return res, http.StatusOK, nil
}
