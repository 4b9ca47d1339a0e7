package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/capwatch/capwatch/internal/clock"
	offeringdomain "github.com/capwatch/capwatch/internal/offering/domain"
	offeringrepo "github.com/capwatch/capwatch/internal/offering/repository"
	offeringservice "github.com/capwatch/capwatch/internal/offering/service"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupOfferingRoutes(t *testing.T) (*gin.Engine, offeringdomain.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&offeringdomain.Offering{}))

	svc := offeringservice.NewService(offeringservice.ServiceParam{
		DB:    db,
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  offeringrepo.Provide(),
	})

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())
	registerRoutes(&Server{engine: engine, offeringSvc: svc})
	return engine, svc
}

func TestListOfferingsRoute(t *testing.T) {
	engine, svc := setupOfferingRoutes(t)

	cores := int64(4)
	for _, sku := range []string{"SKU002", "SKU001"} {
		_, err := svc.Sync(context.Background(), offeringdomain.SyncRequest{
			SKU:           sku,
			PhysicalCores: &cores,
			ProductIDs:    []string{"RHEL"},
		})
		require.NoError(t, err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/capacity/v1/offerings", nil)
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var offerings []offeringdomain.Offering
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &offerings))
	require.Len(t, offerings, 2)
	assert.Equal(t, "SKU001", offerings[0].SKU)
	assert.Equal(t, "SKU002", offerings[1].SKU)
}

func TestGetOfferingRouteUnknownSKU(t *testing.T) {
	engine, _ := setupOfferingRoutes(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/capacity/v1/offerings/SKU404", nil)
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
