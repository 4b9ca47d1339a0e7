package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/capwatch/capwatch/internal/reconcile"
	subscriptiondomain "github.com/capwatch/capwatch/internal/subscription/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) UpsertSubscription(c *gin.Context) {
	var req subscriptiondomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	sub, err := s.subscriptionSvc.Upsert(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.reconciler.Enqueue(c.Request.Context(), reconcile.Instruction{SKU: sub.SKU}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (s *Server) GetSubscription(c *gin.Context) {
	sub, err := s.subscriptionSvc.Get(c.Request.Context(), c.Param("subscription_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

type terminateRequest struct {
	EffectiveAt *time.Time `json:"effective_at"`
}

func (s *Server) TerminateSubscription(c *gin.Context) {
	var req terminateRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	terminate := subscriptiondomain.TerminateRequest{
		SubscriptionID: strings.TrimSpace(c.Param("subscription_id")),
	}
	if req.EffectiveAt != nil {
		terminate.EffectiveAt = *req.EffectiveAt
	}

	sub, err := s.subscriptionSvc.Terminate(c.Request.Context(), terminate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, sub)
}

func (s *Server) IngestContract(c *gin.Context) {
	var req subscriptiondomain.ContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	contract, err := s.subscriptionSvc.IngestContract(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.reconciler.Enqueue(c.Request.Context(), reconcile.Instruction{SKU: contract.SKU}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, contract)
}
