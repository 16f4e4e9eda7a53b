package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"txapp-service/internal/usecase"
)

type expenseRequest struct {
	ShiftID         uint       `json:"shift_id" binding:"required"`
	Category        string     `json:"category" binding:"required"`
	Description     string     `json:"description"`
	Amount          string     `json:"amount" binding:"required"`
	Date            *time.Time `json:"date"`
	PaymentMethodID *uint      `json:"payment_method_id"`
	ReceiptRef      string     `json:"receipt_ref"`
	Notes           string     `json:"notes"`
}

func (h *Handler) logExpense(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	expense, err := h.svc.Expenses.LogExpense(c.Request.Context(), identityFrom(c), usecase.ExpenseInput{
		ShiftID:         req.ShiftID,
		Category:        req.Category,
		Description:     req.Description,
		Amount:          amount,
		Date:            orZero(req.Date),
		PaymentMethodID: req.PaymentMethodID,
		ReceiptRef:      req.ReceiptRef,
		Notes:           req.Notes,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (h *Handler) listExpenses(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	expenses, err := h.svc.Expenses.ListExpenses(c.Request.Context(), identityFrom(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func (h *Handler) deleteAllExpenses(c *gin.Context) {
	n, err := h.svc.Expenses.DeleteAllExpenses(c.Request.Context(), identityFrom(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
