package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staking_wallet_back/models"
	"staking_wallet_back/pkg/service"
)

const invalidBody = "invalid request body"

func (h *Handler) Connect(c *gin.Context) {
	var input models.ConnectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, invalidBody)
		return
	}

	res, err := h.service.Wallet.Connect(c.Request.Context(), input)
	if err != nil {
		newServiceErrorResponse(c, err, service.MsgInternalServerError, messageBody)
		return
	}
	wrapOkJSON(c, res)
}

func (h *Handler) ValidateReferral(c *gin.Context) {
	var input models.ValidateReferralInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(invalidBody))
		return
	}

	res, err := h.service.Wallet.ValidateReferral(c.Request.Context(), input)
	if err != nil {
		newServiceErrorResponse(c, err, service.MsgReferralValidateFailed, errorBody)
		return
	}
	wrapOkJSON(c, res)
}

func (h *Handler) SubmitReferral(c *gin.Context) {
	var input models.SubmitReferralInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, referralBody(invalidBody))
		return
	}

	res, err := h.service.Wallet.SubmitReferral(c.Request.Context(), input)
	if err != nil {
		newServiceErrorResponse(c, err, service.MsgReferralSubmitFailed, referralBody)
		return
	}
	wrapOkJSON(c, res)
}

func (h *Handler) SkipReferral(c *gin.Context) {
	var input models.SkipReferralInput
	if err := c.ShouldBindJSON(&input); err != nil {
		newErrorResponse(c, http.StatusBadRequest, invalidBody)
		return
	}

	res, err := h.service.Wallet.SkipReferral(c.Request.Context(), input)
	if err != nil {
		newServiceErrorResponse(c, err, service.MsgInternalServerError, messageBody)
		return
	}
	wrapOkJSON(c, res)
}

// Mirror returns the wallet snapshot as last relayed to Redis.
func (h *Handler) Mirror(c *gin.Context) {
	snapshot, err := h.service.Mirror.GetSnapshot(c.Request.Context(), c.Query("walletAddress"))
	if err != nil {
		newServiceErrorResponse(c, err, service.MsgInternalServerError, messageBody)
		return
	}
	wrapOkJSON(c, snapshot)
}
