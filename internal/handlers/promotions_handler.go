package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/imrishuroy/go-order-pricing/internal/checkout"
	"github.com/imrishuroy/go-order-pricing/internal/promotions"
	"github.com/imrishuroy/go-order-pricing/internal/validation"
)

func registerPromotionRoutes(r *gin.Engine, svc *checkout.Service, v *validatorv10.Validate) {
	r.POST("/promotions", func(c *gin.Context) {
		var req validation.RegisterPromotionRequest
		if err := validation.BindAndValidate(c, &req, v); err != nil {
			return
		}

		res := svc.RegisterPromotion(req.Code, promotions.Kind(req.Kind), req.PercentOrZero())
		status := http.StatusOK
		switch res {
		case promotions.Registered:
			status = http.StatusCreated
		case promotions.Rejected:
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"code": req.Code, "result": res})
	})

	r.GET("/promotions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"codes": svc.PromotionCodes()})
	})
}
