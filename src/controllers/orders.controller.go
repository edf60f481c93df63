package controllers

import (
	"net/http"
	"starcall/src/common"
	"starcall/src/types"

	"github.com/gin-gonic/gin"
)

const maxVideoSize = 512 << 20

func OrdersApprove(ctx *gin.Context) (*types.APIResponseApproval, int, error) {
	var body types.ApproveOrderRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		status, err := badRequest(err)
		return nil, status, err
	}
	res, err := common.ApproveOrder(ctx.Request.Context(), actorFrom(ctx), &body)
	if err != nil {
		status, err := fail(err)
		return nil, status, err
	}
	return res, http.StatusOK, nil
}

func OrdersStatus(ctx *gin.Context) (*types.APIResponseOrderStatus, int, error) {
	var query types.OrderStatusQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		status, err := badRequest(err)
		return nil, status, err
	}
	res, err := common.GetOrderStatus(ctx.Request.Context(), actorFrom(ctx), query.OrderNumber)
	if err != nil {
		status, err := fail(err)
		return nil, status, err
	}
	return res, http.StatusOK, nil
}

func OrdersDecline(ctx *gin.Context) (*types.APIResponseDecline, int, error) {
	var body types.DeclineOrderRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		status, err := badRequest(err)
		return nil, status, err
	}
	res, err := common.DeclineOrder(ctx.Request.Context(), actorFrom(ctx), &body)
	if err != nil {
		status, err := fail(err)
		return nil, status, err
	}
	return res, http.StatusOK, nil
}

func OrdersDeliverVideo(ctx *gin.Context) (*types.APIResponseDelivery, int, error) {
	var params types.OrderNumberParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		status, err := badRequest(err)
		return nil, status, err
	}
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxVideoSize)
	fh, err := ctx.FormFile("video")
	if err != nil {
		status, err := badRequest(err)
		return nil, status, err
	}
	f, err := fh.Open()
	if err != nil {
		status, err := badRequest(err)
		return nil, status, err
	}
	defer f.Close()

	res, err := common.DeliverVideo(ctx.Request.Context(), actorFrom(ctx), params.OrderNumber, f, fh.Header.Get("Content-Type"))
	if err != nil {
		status, err := fail(err)
		return nil, status, err
	}
	return res, http.StatusCreated, nil
}
