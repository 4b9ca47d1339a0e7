package server

import (
	"net/http"
	"strings"

	"github.com/capwatch/capwatch/internal/reconcile"
	"github.com/gin-gonic/gin"
)

type reconcileRequest struct {
	SKU    string `json:"sku"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

// EnqueueReconcile pushes an explicit reconcile instruction onto the task
// queue. The instruction is processed asynchronously by the consumer.
func (s *Server) EnqueueReconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.SKU) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	instruction := reconcile.Instruction{
		SKU:    strings.TrimSpace(req.SKU),
		Offset: req.Offset,
		Limit:  req.Limit,
	}
	if err := s.reconciler.Enqueue(c.Request.Context(), instruction); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": "queued", "sku": instruction.SKU})
}
