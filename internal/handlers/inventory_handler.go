package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-order-pricing/internal/checkout"
	"github.com/imrishuroy/go-order-pricing/internal/validation"
)

// asyncBatchTarget names where a queued batch is applied.
const asyncBatchTarget = "stock-worker"

func registerInventoryRoutes(r *gin.Engine, svc *checkout.Service, v *validatorv10.Validate) {
	r.POST("/inventory/batch", func(c *gin.Context) {
		var req validation.StockBatchRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		// async=true hands the batch to the stock worker through the queue. The worker applies it
		// to its own ledger, so the batch never shows in this API's report or audit routes.
		if c.Query("async") == "true" {
			batchID, err := svc.EnqueueStockBatch(c.Request.Context(), checkout.StockBatchMessage{
				LowStockThreshold: req.LowStockThreshold,
				MaxPrice:          req.MaxPrice,
				Records:           req.ToUpdates(),
			})
			switch {
			case errors.Is(err, checkout.ErrNoQueue):
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "queue_not_configured"})
			case err != nil:
				log.WithError(err).Error("Enqueue stock batch failed")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "enqueue_failed", "detail": err.Error()})
			default:
				c.JSON(http.StatusAccepted, gin.H{
					"batch_id":   batchID,
					"records":    len(req.Records),
					"applied_by": asyncBatchTarget,
					"note":       "applied by the stock worker; not reflected in /inventory/report or /inventory/audit",
				})
			}
			return
		}

		res := svc.ApplyStockBatch(c.Request.Context(), req.ToUpdates(), req.Options(svc.BatchDefaults()))
		c.JSON(http.StatusOK, res)
	})

	r.GET("/inventory/report", func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.StockReport(time.Now()))
	})

	r.GET("/inventory/audit", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"entries": svc.AuditLines()})
	})
}
