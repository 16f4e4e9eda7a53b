package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"txapp-service/internal/domain/entity"
	"txapp-service/internal/domain/repository"
	"txapp-service/pkg/logger"
	"txapp-service/pkg/metrics"
)

// ExpenseInput holds the fields of a new expense
type ExpenseInput struct {
	ShiftID         uint
	Category        string
	Description     string
	Amount          decimal.Decimal
	Date            time.Time // defaults to now
	PaymentMethodID *uint
	ReceiptRef      string
	Notes           string
}

// ExpenseRecorder appends expenses to shifts
type ExpenseRecorder struct {
	shifts   repository.ShiftRepository
	expenses repository.ExpenseRepository
	events   *changeEmitter
	metrics  *metrics.Metrics
	logger   logger.Logger
	now      func() time.Time
}

// NewExpenseRecorder creates a new expense recorder
func NewExpenseRecorder(
	shifts repository.ShiftRepository,
	expenses repository.ExpenseRepository,
	publisher repository.EventPublisher,
	m *metrics.Metrics,
	logger logger.Logger,
) *ExpenseRecorder {
	return &ExpenseRecorder{
		shifts:   shifts,
		expenses: expenses,
		events:   newChangeEmitter(publisher, m, logger),
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// LogExpense records a cost on a shift that is not validated yet
func (r *ExpenseRecorder) LogExpense(ctx context.Context, actor entity.Identity, in ExpenseInput) (*entity.Expense, error) {
	const op = "log_expense"
	if !actor.Can(entity.ActionLogExpense) {
		return nil, entity.ErrForbidden
	}
	if in.Category == "" {
		return nil, entity.ErrInvalidInput
	}
	if in.Amount.IsNegative() {
		return nil, entity.ErrNegativeAmount
	}

	shift, err := readableShift(ctx, r.shifts, actor, in.ShiftID)
	if err != nil {
		return nil, err
	}
	if shift.Validated {
		return nil, entity.ErrShiftValidated
	}

	date := in.Date
	if date.IsZero() {
		date = r.now()
	}
	expense := &entity.Expense{
		ShiftID:         shift.ID,
		Category:        in.Category,
		Description:     in.Description,
		Amount:          in.Amount,
		Date:            date,
		PaymentMethodID: in.PaymentMethodID,
		ReceiptRef:      in.ReceiptRef,
		Notes:           in.Notes,
	}
	if err := r.expenses.Create(ctx, expense); err != nil {
		r.metrics.ErrorsCount.WithLabelValues(op).Inc()
		return nil, entity.StepError(op, "insert_expense", err)
	}

	r.metrics.ExpensesLogged.Inc()
	r.logger.Info("Expense logged",
		"expenseID", expense.ID,
		"shiftID", shift.ID,
		"category", expense.Category,
		"amount", expense.Amount.String())

	record := *expense
	r.events.emit(ctx, entity.EventInsert, entity.EntityExpense, shift.ID, entity.Snapshot{Expense: &record}, nil)
	return expense, nil
}

// ListExpenses returns the expenses of a shift
func (r *ExpenseRecorder) ListExpenses(ctx context.Context, actor entity.Identity, shiftID uint) ([]*entity.Expense, error) {
	if _, err := readableShift(ctx, r.shifts, actor, shiftID); err != nil {
		return nil, err
	}
	return r.expenses.ListByShift(ctx, shiftID)
}

// ComputeShiftExpenseTotals sums the expense amounts of a shift
func (r *ExpenseRecorder) ComputeShiftExpenseTotals(ctx context.Context, actor entity.Identity, shiftID uint) (decimal.Decimal, error) {
	expenses, err := r.ListExpenses(ctx, actor, shiftID)
	if err != nil {
		return decimal.Zero, err
	}
	return entity.SumExpenses(expenses), nil
}

// DeleteAllExpenses is the administrative bulk purge. Subscribers receive a
// single delete event without shift, which forces a full oversight refresh.
func (r *ExpenseRecorder) DeleteAllExpenses(ctx context.Context, actor entity.Identity) (int64, error) {
	if !actor.Can(entity.ActionManageData) {
		return 0, entity.ErrForbidden
	}

	n, err := r.expenses.DeleteAll(ctx)
	if err != nil {
		r.metrics.ErrorsCount.WithLabelValues("delete_all_expenses").Inc()
		return 0, entity.StepError("delete_all_expenses", "delete", err)
	}

	r.logger.Warn("All expenses deleted", "count", n, "userID", actor.UserID)
	r.events.emit(ctx, entity.EventDelete, entity.EntityExpense, 0, entity.Snapshot{}, nil)
	return n, nil
}
