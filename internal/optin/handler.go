package optin

import (
	"github.com/ahwlsqja/channel-optin/internal/common/errors"
	"github.com/ahwlsqja/channel-optin/internal/common/middleware"
	"github.com/ahwlsqja/channel-optin/pkg/eip712"
	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for channel opt-in and opt-out
type Handler struct {
	service *Service
}

// NewHandler creates a new opt-in handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the channel routes on the router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	channels := rg.Group("/v1/channels/:channel")
	{
		channels.POST("/subscribe", h.Subscribe)
		channels.POST("/unsubscribe", h.Unsubscribe)
	}
}

// Subscribe godoc
// @Summary Opt a user into a channel
// @Description Verifies an EIP-712 Subscribe proof signed by the subscriber. Message addresses are CAIP-10; the proof covers the bare addresses.
// @Tags channels
// @Accept json
// @Produce json
// @Param channel path string true "Channel CAIP-10 address" example(eip155:1:0xC14d71f1b4B3c6b7c4b9b7c1f2e6a0d5b3a8e9f1)
// @Param request body SubscriptionRequest true "Signed subscription"
// @Success 200 {object} middleware.SuccessResponse{data=SubscriptionResponse} "Proof verified"
// @Failure 400 {object} middleware.ErrorResponse "Invalid input, address or chain"
// @Failure 401 {object} middleware.ErrorResponse "Proof rejected"
// @Failure 409 {object} middleware.ErrorResponse "Proof already used"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /apis/v1/channels/{channel}/subscribe [post]
func (h *Handler) Subscribe(c *gin.Context) {
	h.handle(c, eip712.ActionSubscribe)
}

// Unsubscribe godoc
// @Summary Opt a user out of a channel
// @Description Verifies an EIP-712 Unsubscribe proof signed by the unsubscriber. Message addresses are CAIP-10; the proof covers the bare addresses.
// @Tags channels
// @Accept json
// @Produce json
// @Param channel path string true "Channel CAIP-10 address" example(eip155:1:0xC14d71f1b4B3c6b7c4b9b7c1f2e6a0d5b3a8e9f1)
// @Param request body SubscriptionRequest true "Signed unsubscription"
// @Success 200 {object} middleware.SuccessResponse{data=SubscriptionResponse} "Proof verified"
// @Failure 400 {object} middleware.ErrorResponse "Invalid input, address or chain"
// @Failure 401 {object} middleware.ErrorResponse "Proof rejected"
// @Failure 409 {object} middleware.ErrorResponse "Proof already used"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /apis/v1/channels/{channel}/unsubscribe [post]
func (h *Handler) Unsubscribe(c *gin.Context) {
	h.handle(c, eip712.ActionUnsubscribe)
}

func (h *Handler) handle(c *gin.Context, action eip712.Action) {
	var req SubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.service.metrics.observe(string(action), OutcomeInvalidRequest)
		middleware.RespondError(c, errors.InvalidInput(err.Error()))
		return
	}

	resp, err := h.service.Process(c.Request.Context(), action, c.Param("channel"), &req)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	middleware.RespondOK(c, resp)
}
