package httpapi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/usecase"
	"txapp-service/pkg/logger"
	"txapp-service/pkg/money"
)

// Services groups the usecases served over HTTP
type Services struct {
	Auth           *usecase.AuthService
	Ledger         *usecase.ShiftLedger
	Trips          *usecase.TripRecorder
	Expenses       *usecase.ExpenseRecorder
	Oversight      *usecase.OversightAggregator
	Reports        *usecase.ReportBuilder
	Inbox          *usecase.NotificationInbox
	Vehicles       *usecase.CatalogService[entity.Vehicle]
	Clients        *usecase.CatalogService[entity.Client]
	PaymentMethods *usecase.CatalogService[entity.PaymentMethod]
	Drivers        *usecase.CatalogService[entity.Driver]
}

// Handler serves the lifecycle endpoints
type Handler struct {
	svc    Services
	logger logger.Logger
}

// NewHandler creates a new handler
func NewHandler(svc Services, logger logger.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, fmt.Errorf("invalid %s", name))
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return def
	}
	return v
}

func orZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// parseAmount reads an optional user-formatted amount
func parseAmount(field, s string) (decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.Zero, nil
	}
	d, err := money.Parse(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s: %v", entity.ErrInvalidInput, field, err)
	}
	return d, nil
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", entity.ErrInvalidInput, field)
	}
	return d, nil
}
