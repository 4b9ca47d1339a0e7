package server

import (
	"net/http"
	"strings"

	offeringdomain "github.com/capwatch/capwatch/internal/offering/domain"
	"github.com/capwatch/capwatch/internal/reconcile"
	"github.com/gin-gonic/gin"
)

func (s *Server) ListOfferings(c *gin.Context) {
	offerings, err := s.offeringSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, offerings)
}

func (s *Server) GetOffering(c *gin.Context) {
	offering, err := s.offeringSvc.GetBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, offering)
}

// SyncOffering upserts a catalog entry and enqueues reconciliation so every
// subscription of the SKU picks up the new base capacity.
func (s *Server) SyncOffering(c *gin.Context) {
	var req offeringdomain.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.SKU = strings.TrimSpace(c.Param("sku"))

	offering, err := s.offeringSvc.Sync(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if err := s.reconciler.Enqueue(c.Request.Context(), reconcile.Instruction{SKU: offering.SKU}); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, offering)
}
