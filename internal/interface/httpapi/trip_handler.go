package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"txapp-service/internal/usecase"
)

type tripStartRequest struct {
	ShiftID         uint       `json:"shift_id" binding:"required"`
	OrderIndex      int        `json:"order_index" binding:"gte=0"`
	OdometerStart   int        `json:"odometer_start" binding:"gte=0"`
	PickupLocation  string     `json:"pickup_location" binding:"required"`
	PickupTime      *time.Time `json:"pickup_time"`
	ClientID        *uint      `json:"client_id"`
	PaymentMethodID *uint      `json:"payment_method_id"`
	OffSchedule     bool       `json:"off_schedule"`
	Notes           string     `json:"notes"`
}

type tripEndRequest struct {
	OdometerEnd     *int       `json:"odometer_end" binding:"required,gte=0"`
	DropoffLocation string     `json:"dropoff_location" binding:"required"`
	DropoffTime     *time.Time `json:"dropoff_time"`
	MeterPrice      string     `json:"meter_price"`
	AmountCollected string     `json:"amount_collected" binding:"required"`
	PaymentMethodID *uint      `json:"payment_method_id"`
}

func (h *Handler) startTrip(c *gin.Context) {
	var req tripStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	trip, err := h.svc.Trips.LogTripStart(c.Request.Context(), identityFrom(c), usecase.TripStartInput{
		ShiftID:         req.ShiftID,
		OrderIndex:      req.OrderIndex,
		OdometerStart:   req.OdometerStart,
		PickupLocation:  req.PickupLocation,
		PickupTime:      orZero(req.PickupTime),
		ClientID:        req.ClientID,
		PaymentMethodID: req.PaymentMethodID,
		OffSchedule:     req.OffSchedule,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *Handler) endTrip(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req tripEndRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	meter, err := parseAmount("meter_price", req.MeterPrice)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	collected, err := parseAmount("amount_collected", req.AmountCollected)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	trip, err := h.svc.Trips.LogTripEnd(c.Request.Context(), identityFrom(c), id, usecase.TripEndInput{
		OdometerEnd:     *req.OdometerEnd,
		DropoffLocation: req.DropoffLocation,
		DropoffTime:     orZero(req.DropoffTime),
		MeterPrice:      meter,
		AmountCollected: collected,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) cancelTrip(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	trip, err := h.svc.Trips.CancelTrip(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *Handler) listTrips(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	trips, err := h.svc.Trips.ListTrips(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, trips)
}
