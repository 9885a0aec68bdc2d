package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"github.com/imrishuroy/go-order-pricing/internal/checkout"
	"github.com/imrishuroy/go-order-pricing/internal/idempotency"
	"github.com/imrishuroy/go-order-pricing/internal/validation"
)

// RegisterRoutes registers the order, promotion and inventory routes.
func RegisterRoutes(r *gin.Engine, svc *checkout.Service) {
	v := validation.New()
	registerOrdersRoutes(r, svc, v)
	registerPromotionRoutes(r, svc, v)
	registerInventoryRoutes(r, svc, v)
}

func registerOrdersRoutes(r *gin.Engine, svc *checkout.Service, v *validatorv10.Validate) {
	r.POST("/orders", func(c *gin.Context) {
		ctx := c.Request.Context()

		var req validation.PlaceOrderRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			// BindAndValidate already wrote a 400
			return
		}

		idempKey := c.GetHeader("Idempotency-Key")
		res, err := svc.PlaceOrder(ctx, req.ToPricing(), idempKey)
		if err != nil {
			log.WithError(err).WithField("idempotency_key", idempKey).Error("Place order failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "idempotency_check_failed", "detail": err.Error()})
			return
		}
		if res.Replay != nil {
			writeReplay(c, res.Replay)
			return
		}

		status := http.StatusCreated
		if res.Order.Status.Rejected() {
			status = http.StatusUnprocessableEntity
		}
		body, err := json.Marshal(res.Order)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "encode_failed"})
			return
		}

		if status == http.StatusCreated {
			c.Header("Location", fmt.Sprintf("/orders/%s", res.Order.OrderID))
			if err := svc.CompleteIdempotency(ctx, idempKey, res, body, status); err != nil {
				log.WithError(err).WithField("idempotency_key", idempKey).Warn("Failed to store idempotent receipt")
			}
		}
		c.Data(status, "application/json", body)
	})

	// GET /orders/:id returns the summary of the first order under id. detail=true returns the
	// full priced order; all=true lists every in-memory order sharing the id.
	r.GET("/orders/:id", func(c *gin.Context) {
		id := c.Param("id")
		if c.Query("all") == "true" {
			all := svc.FindOrders(id)
			if len(all) == 0 {
				c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found", "order_id": id})
				return
			}
			c.JSON(http.StatusOK, gin.H{"order_id": id, "count": len(all), "orders": all})
			return
		}

		if c.Query("detail") == "true" {
			o, ok, err := svc.FindOrder(c.Request.Context(), id)
			writeLookup(c, id, o, ok, err)
			return
		}
		sum, ok, err := svc.OrderSummary(c.Request.Context(), id)
		writeLookup(c, id, sum, ok, err)
	})
}

func writeLookup(c *gin.Context, id string, view any, ok bool, err error) {
	if err != nil {
		log.WithError(err).WithField("order_id", id).Error("Order lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "order_not_found", "order_id": id})
		return
	}
	c.JSON(http.StatusOK, view)
}

// writeReplay answers a repeated Idempotency-Key from the stored record.
func writeReplay(c *gin.Context, rec *idempotency.Record) {
	c.Header("Idempotent-Replayed", "true")
	switch rec.Status {
	case idempotency.StatusDone:
		if rec.ReceiptBody != "" && rec.ReceiptStatus != 0 {
			c.Data(rec.ReceiptStatus, "application/json", []byte(rec.ReceiptBody))
			return
		}
		c.JSON(http.StatusOK, gin.H{"order_id": rec.OrderID})
	case idempotency.StatusInProgress:
		c.JSON(http.StatusAccepted, gin.H{"message": "request already in progress", "order_id": rec.OrderID})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "unknown_idempotency_status"})
	}
}
