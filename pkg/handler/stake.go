package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staking_wallet_back/models"
	"staking_wallet_back/pkg/service"
)

func (h *Handler) Stake(c *gin.Context) {
	var input models.StakeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(invalidBody))
		return
	}

	res, err := h.service.Stake.SubmitStake(c.Request.Context(), input)
	if err != nil {
		newServiceErrorResponse(c, err, service.MsgStakeFailed, errorBody)
		return
	}
	wrapOkJSON(c, res)
}

func (h *Handler) StakeInfo(c *gin.Context) {
	info, err := h.service.Stake.GetStakeInfo(c.Request.Context(), c.Query("walletAddress"))
	if err != nil {
		body := errorBody
		if service.KindOf(err) == service.KindValidation {
			body = messageBody
		}
		newServiceErrorResponse(c, err, service.MsgStakeInfoFailed, body)
		return
	}
	wrapOkJSON(c, info)
}

func (h *Handler) Stakes(c *gin.Context) {
	records, err := h.service.Stake.ListStakes(c.Request.Context(), c.Query("walletAddress"))
	if err != nil {
		newServiceErrorResponse(c, err, service.MsgInternalServerError, messageBody)
		return
	}
	wrapOkJSON(c, map[string]interface{}{
		"stakes": records,
	})
}
