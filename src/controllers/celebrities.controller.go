package controllers

import (
	"net/http"
	"starcall/src/common"
	"starcall/src/types"

	"github.com/gin-gonic/gin"
)

func CelebritiesList(ctx *gin.Context) ([]types.APIResponseCelebrity, int, error) {
	var query types.ListCelebritiesQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		status, err := badRequest(err)
		return nil, status, err
	}
	res, err := common.ListCelebrities(ctx.Request.Context(), &query)
	if err != nil {
		status, err := fail(err)
		return nil, status, err
	}
	return res, http.StatusOK, nil
}

func CelebritiesGet(ctx *gin.Context) (*types.APIResponseCelebrity, int, error) {
	var params types.SlugParams
	if err := ctx.ShouldBindUri(&params); err != nil {
		status, err := badRequest(err)
		return nil, status, err
	}
	res, err := common.GetCelebrity(ctx.Request.Context(), params.Slug)
	if err != nil {
		status, err := fail(err)
		return nil, status, err
	}
	return res, http.StatusOK, nil
}

func CelebritiesCreate(ctx *gin.Context) (*types.APIResponseCelebrity, int, error) {
	var body types.CreateCelebrityRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		status, err := badRequest(err)
		return nil, status, err
	}
	res, err := common.CreateCelebrityProfile(ctx.Request.Context(), actorFrom(ctx), &body)
	if err != nil {
		status, err := fail(err)
		return nil, status, err
	}
	return res, http.StatusCreated, nil
}

func CelebritiesOnboarding(ctx *gin.Context) (string, int, error) {
	url, err := common.StartPayoutOnboarding(ctx.Request.Context(), actorFrom(ctx))
	if err != nil {
		status, err := fail(err)
		return "", status, err
	}
	return url, http.StatusOK, nil
}

func CelebritiesEarnings(ctx *gin.Context) (*types.APIResponseEarnings, int, error) {
	res, err := common.CelebrityEarnings(ctx.Request.Context(), actorFrom(ctx))
	if err != nil {
		status, err := fail(err)
		return nil, status, err
	}
	return res, http.StatusOK, nil
}
