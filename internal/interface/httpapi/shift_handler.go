package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/usecase"
)

type openShiftRequest struct {
	DriverID      uint       `json:"driver_id"`
	VehicleID     uint       `json:"vehicle_id" binding:"required"`
	ServiceDate   string     `json:"service_date"`
	StartTime     *time.Time `json:"start_time"`
	OdometerStart int        `json:"odometer_start" binding:"gte=0"`
	EncodingMode  string     `json:"encoding_mode" binding:"omitempty,oneof=LIVE ULTERIEUR ADMIN"`
}

type updateShiftRequest struct {
	VehicleID         *uint      `json:"vehicle_id"`
	EncodingMode      *string    `json:"encoding_mode" binding:"omitempty,oneof=LIVE ULTERIEUR ADMIN"`
	ServiceDate       *string    `json:"service_date"`
	StartTime         *time.Time `json:"start_time"`
	EndTime           *time.Time `json:"end_time"`
	OdometerStart     *int       `json:"odometer_start" binding:"omitempty,gte=0"`
	OdometerEnd       *int       `json:"odometer_end" binding:"omitempty,gte=0"`
	InterruptionNotes *string    `json:"interruption_notes"`
	DeclaredCash      *string    `json:"declared_cash"`
	Signature         *string    `json:"signature"`
}

type closeShiftRequest struct {
	EndTime           *time.Time `json:"end_time"`
	OdometerEnd       *int       `json:"odometer_end" binding:"required,gte=0"`
	InterruptionNotes string     `json:"interruption_notes"`
	DeclaredCash      string     `json:"declared_cash"`
	Signature         string     `json:"signature"`
}

type changeVehicleRequest struct {
	VehicleID uint `json:"vehicle_id" binding:"required"`
}

func (h *Handler) openShift(c *gin.Context) {
	var req openShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	serviceDate, err := parseDate("service_date", req.ServiceDate)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	shift, err := h.svc.Ledger.OpenShift(c.Request.Context(), identityFrom(c), usecase.OpenShiftInput{
		DriverID:      req.DriverID,
		VehicleID:     req.VehicleID,
		ServiceDate:   serviceDate,
		StartTime:     orZero(req.StartTime),
		OdometerStart: req.OdometerStart,
		EncodingMode:  entity.EncodingMode(req.EncodingMode),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, shift)
}

func (h *Handler) activeShift(c *gin.Context) {
	actor := identityFrom(c)
	driverID := actor.DriverID
	if v := c.Query("driver_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			badRequest(c, fmt.Errorf("invalid driver_id"))
			return
		}
		driverID = uint(id)
	}

	shift, err := h.svc.Ledger.GetActiveShift(c.Request.Context(), actor, driverID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if shift == nil {
		c.JSON(http.StatusOK, gin.H{"shift": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shift": shift})
}

func (h *Handler) updateShift(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req updateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	patch := usecase.ShiftPatch{
		VehicleID:         req.VehicleID,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		OdometerStart:     req.OdometerStart,
		OdometerEnd:       req.OdometerEnd,
		InterruptionNotes: req.InterruptionNotes,
		Signature:         req.Signature,
	}
	if req.EncodingMode != nil {
		mode := entity.EncodingMode(*req.EncodingMode)
		patch.EncodingMode = &mode
	}
	if req.ServiceDate != nil {
		d, err := parseDate("service_date", *req.ServiceDate)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		patch.ServiceDate = &d
	}
	if req.DeclaredCash != nil {
		cash, err := parseAmount("declared_cash", *req.DeclaredCash)
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		patch.DeclaredCash = &cash
	}

	shift, err := h.svc.Ledger.UpdateShift(c.Request.Context(), identityFrom(c), id, patch)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *Handler) closeShift(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req closeShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	cash, err := parseAmount("declared_cash", req.DeclaredCash)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	shift, err := h.svc.Ledger.CloseShift(c.Request.Context(), identityFrom(c), id, usecase.CloseShiftInput{
		EndTime:           orZero(req.EndTime),
		OdometerEnd:       *req.OdometerEnd,
		InterruptionNotes: req.InterruptionNotes,
		DeclaredCash:      cash,
		Signature:         req.Signature,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *Handler) validateShift(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	shift, err := h.svc.Ledger.ValidateShift(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *Handler) changeVehicle(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req changeVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	shift, err := h.svc.Ledger.ChangeVehicle(c.Request.Context(), identityFrom(c), id, req.VehicleID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, shift)
}

func (h *Handler) shiftTotals(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx, actor := c.Request.Context(), identityFrom(c)

	trips, err := h.svc.Trips.ComputeShiftTripTotals(ctx, actor, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	expenses, err := h.svc.Expenses.ComputeShiftExpenseTotals(ctx, actor, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trips":    trips,
		"expenses": expenses,
		"net":      trips.Revenue.Sub(expenses).Round(2),
	})
}

func (h *Handler) shiftReport(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := h.svc.Reports.Build(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) shiftReportXLSX(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	report, err := h.svc.Reports.Build(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	data, err := h.svc.Reports.ExportXLSX(report)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	attachment(c, fmt.Sprintf("feuille-de-route-%d.xlsx", id), xlsxContentType, data)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
