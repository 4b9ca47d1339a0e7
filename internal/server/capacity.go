package server

import (
	"fmt"
	"net/http"
	"strings"

	capacitydomain "github.com/capwatch/capwatch/internal/capacity/domain"
	"github.com/capwatch/capwatch/internal/capacity/granularity"
	"github.com/gin-gonic/gin"
)

// GetCapacityReport serves the time-bucketed capacity report for a product.
// With a metric id path segment it reports that metric alone; without one it
// aggregates every metric and lists the contributors in meta.
func (s *Server) GetCapacityReport(c *gin.Context) {
	filter := capacitydomain.Filter{
		OrgID:            strings.TrimSpace(c.Query("org_id")),
		ProductID:        strings.TrimSpace(c.Param("product_id")),
		MetricID:         strings.TrimSpace(c.Param("metric_id")),
		ServiceLevel:     parseMatchParam(c.Query("sla")),
		Usage:            parseMatchParam(c.Query("usage")),
		BillingProvider:  parseMatchParam(c.Query("billing_provider")),
		BillingAccountID: parseMatchParam(c.Query("billing_account_id")),
	}

	category, err := parseCategoryParam(c.Query("category"))
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: %s", ErrInvalidRequest, err))
		return
	}
	filter.Category = category

	hardwareTypes, err := parseHardwareTypesParam(c.Query("hardware_types"))
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: %s", ErrInvalidRequest, err))
		return
	}
	filter.HardwareTypes = hardwareTypes

	begin, err := parseRequiredTime(c.Query("beginning"))
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: beginning: %s", ErrInvalidRequest, err))
		return
	}
	end, err := parseRequiredTime(c.Query("ending"))
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: ending: %s", ErrInvalidRequest, err))
		return
	}

	gran, err := granularity.Parse(c.DefaultQuery("granularity", string(granularity.Daily)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	offset, limit, err := parseWindowParams(c.Query("page_token"), c.Query("offset"), c.Query("limit"))
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: %s", ErrInvalidRequest, err))
		return
	}

	report, err := s.capacitySvc.BuildReport(c.Request.Context(), capacitydomain.ReportRequest{
		Filter:      filter,
		Begin:       begin,
		End:         end,
		Granularity: gran,
		Offset:      offset,
		Limit:       limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
