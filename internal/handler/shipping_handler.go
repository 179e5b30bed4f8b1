package handler

import (
	"net/http"

	"storeadmin/internal/middleware"
	"storeadmin/internal/service"
	"storeadmin/pkg/pagination"
	"storeadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type QuoteRequest struct {
	ZoneID string  `json:"zone_id" binding:"required"`
	Weight *string `json:"weight"` // kg, decimal string
	Price  *string `json:"price"`  // declared order value, decimal string
}

type ShippingHandler struct {
	shippingService service.ShippingService
}

func NewShippingHandler(shippingService service.ShippingService) *ShippingHandler {
	return &ShippingHandler{shippingService: shippingService}
}

func (h *ShippingHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Quote endpoint is called by checkout, not the admin panel
	router.POST("/api/shipping/quote", h.Quote)

	zones := router.Group("/api/shipping/zones")
	{
		zones.GET("", middleware.RequireAccess("shipping_zones", "read"), h.ListZones)
		zones.POST("", middleware.RequireAccess("shipping_zones", "write"), h.CreateZone)
		zones.PUT("/:id", middleware.RequireAccess("shipping_zones", "write"), h.UpdateZone)
		zones.DELETE("/:id", middleware.RequireAccess("shipping_zones", "delete"), h.DeleteZone)
		zones.GET("/:id/rates", middleware.RequireAccess("shipping_rates", "read"), h.ListRates)
		zones.POST("/:id/rates", middleware.RequireAccess("shipping_rates", "write"), h.CreateRate)
	}

	rates := router.Group("/api/shipping/rates")
	{
		rates.PUT("/:id", middleware.RequireAccess("shipping_rates", "write"), h.UpdateRate)
		rates.DELETE("/:id", middleware.RequireAccess("shipping_rates", "delete"), h.DeleteRate)
	}
}

// Quote computes applicable shipping costs and the cheapest one
// @Summary      Quote shipping for a shipment
// @Description  Returns every applicable rate for the zone plus the cheapest; cheapest is null when none applies.
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        payload  body      QuoteRequest  true  "Quote Payload"
// @Success      200      {object}  response.Response{data=service.QuoteResult}
// @Failure      400      {object}  response.Response
// @Router       /api/shipping/quote [post]
func (h *ShippingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	weight, err := parseOptionalDecimal(req.Weight)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid weight value"))
		return
	}
	price, err := parseOptionalDecimal(req.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid price value"))
		return
	}

	result, err := h.shippingService.Calculate(c.Request.Context(), req.ZoneID, weight, price)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListZones returns paginated shipping zones
// @Summary      List shipping zones
// @Tags         shipping
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]model.ShippingZone}
// @Router       /api/shipping/zones [get]
func (h *ShippingHandler) ListZones(c *gin.Context) {
	p := pagination.Parse(c)

	zones, total, err := h.shippingService.ListZones(c.Request.Context(), p.Page, p.Limit)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": zones,
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
	}))
}

// CreateZone creates a shipping zone
// @Summary      Create shipping zone
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateZoneRequest  true  "Zone Payload"
// @Success      201      {object}  response.Response{data=model.ShippingZone}
// @Router       /api/shipping/zones [post]
func (h *ShippingHandler) CreateZone(c *gin.Context) {
	var req service.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	zone, err := h.shippingService.CreateZone(c.Request.Context(), middleware.AdminID(c), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, zone))
}

// UpdateZone updates a shipping zone
// @Summary      Update shipping zone
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Zone ID"
// @Param        payload  body      service.CreateZoneRequest  true  "Zone Payload"
// @Success      200      {object}  response.Response{data=model.ShippingZone}
// @Router       /api/shipping/zones/{id} [put]
func (h *ShippingHandler) UpdateZone(c *gin.Context) {
	var req service.CreateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	zone, err := h.shippingService.UpdateZone(c.Request.Context(), middleware.AdminID(c), c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, zone))
}

// DeleteZone deletes a shipping zone and its rates
// @Summary      Delete shipping zone
// @Tags         shipping
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Zone ID"
// @Success      200  {object}  response.Response
// @Router       /api/shipping/zones/{id} [delete]
func (h *ShippingHandler) DeleteZone(c *gin.Context) {
	if err := h.shippingService.DeleteZone(c.Request.Context(), middleware.AdminID(c), c.Param("id")); err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// ListRates returns all rates of a zone, active or not, in evaluation order
// @Summary      List zone rates
// @Tags         shipping
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Zone ID"
// @Success      200  {object}  response.Response{data=[]model.ShippingRate}
// @Router       /api/shipping/zones/{id}/rates [get]
func (h *ShippingHandler) ListRates(c *gin.Context) {
	rates, err := h.shippingService.ListRatesByZone(c.Request.Context(), c.Param("id"))
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rates))
}

// CreateRate adds a rate to a zone
// @Summary      Create shipping rate
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Zone ID"
// @Param        payload  body      service.CreateRateRequest  true  "Rate Payload"
// @Success      201      {object}  response.Response{data=model.ShippingRate}
// @Router       /api/shipping/zones/{id}/rates [post]
func (h *ShippingHandler) CreateRate(c *gin.Context) {
	var req service.CreateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rate, err := h.shippingService.CreateRate(c.Request.Context(), middleware.AdminID(c), c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, rate))
}

// UpdateRate updates a rate
// @Summary      Update shipping rate
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string  true  "Rate ID"
// @Param        payload  body      service.CreateRateRequest  true  "Rate Payload"
// @Success      200      {object}  response.Response{data=model.ShippingRate}
// @Router       /api/shipping/rates/{id} [put]
func (h *ShippingHandler) UpdateRate(c *gin.Context) {
	var req service.CreateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	rate, err := h.shippingService.UpdateRate(c.Request.Context(), middleware.AdminID(c), c.Param("id"), req)
	if err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rate))
}

// DeleteRate removes a rate
// @Summary      Delete shipping rate
// @Tags         shipping
// @Produce      json
// @Security     BearerAuth
// @Param        id  path      string  true  "Rate ID"
// @Success      200  {object}  response.Response
// @Router       /api/shipping/rates/{id} [delete]
func (h *ShippingHandler) DeleteRate(c *gin.Context) {
	if err := h.shippingService.DeleteRate(c.Request.Context(), middleware.AdminID(c), c.Param("id")); err != nil {
		status := statusForError(err)
		c.JSON(status, response.Error(status, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

func parseOptionalDecimal(s *string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
