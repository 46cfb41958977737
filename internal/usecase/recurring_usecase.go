package usecase

import (
	"context"
	"time"

	"github.com/velinov/fintrack/internal/domain"
)

// RecurringUseCase manages recurring templates and turns due templates into
// real fixed transactions.
type RecurringUseCase struct {
	recurringRepo RecurringRepository
	txRepo        TransactionRepository
	ledger        *LedgerUseCase
	now           func() time.Time
}

// NewRecurringUseCase creates a new RecurringUseCase.
func NewRecurringUseCase(
	recurringRepo RecurringRepository,
	txRepo TransactionRepository,
	ledger *LedgerUseCase,
) *RecurringUseCase {
	return &RecurringUseCase{
		recurringRepo: recurringRepo,
		txRepo:        txRepo,
		ledger:        ledger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// PostDue creates one fixed transaction for every active template whose
// occurrence fell inside the lookback window and has not been posted yet.
// Posting goes through the ledger create path, so the delta lands
// atomically with the row.
func (uc *RecurringUseCase) PostDue(ctx context.Context, userID string) (int, error) {
	now := uc.now()
	windowStart := now.Add(-AutoPostLookback)

	templates, err := uc.recurringRepo.ListActive(ctx, userID)
	if err != nil {
		return 0, err
	}
	if len(templates) == 0 {
		return 0, nil
	}

	existing, err := uc.txRepo.ListByUserBetween(ctx, userID, windowStart, now)
	if err != nil {
		return 0, err
	}

	posted := 0
	for _, tpl := range templates {
		for _, due := range dueOccurrences(tpl, windowStart, now) {
			if hasPosting(tpl, existing, due) {
				continue
			}

			templateID := tpl.ID
			amount := tpl.Amount
			dueDate := due
			_, err := uc.ledger.Create(ctx, CreateTransactionInput{
				UserID:       userID,
				AccountID:    tpl.AccountID,
				Type:         domain.TransactionTypeExpense,
				SourceType:   domain.SourceRecurring,
				IsFixed:      true,
				MerchantName: tpl.Name,
				Category:     tpl.Category,
				TransactionDate: &dueDate,
				Amount: domain.AmountInput{
					OriginalAmount:   &amount,
					OriginalCurrency: domain.CurrencyBGN,
				},
				Notes:               tpl.Note,
				RecurringTemplateID: &templateID,
			})
			if err != nil {
				return posted, err
			}
			posted++
		}
	}

	return posted, nil
}

// UpcomingPayment is one template's next occurrence with its paid status.
type UpcomingPayment struct {
	Template *domain.RecurringTemplate
	DueDate  time.Time
	Paid     bool
}

// Upcoming lists active templates due within the next seven days, each
// marked paid when a matching transaction exists for the occurrence.
func (uc *RecurringUseCase) Upcoming(ctx context.Context, userID string) ([]UpcomingPayment, error) {
	now := uc.now()
	horizon := now.Add(UpcomingWindow)

	templates, err := uc.recurringRepo.ListActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	existing, err := uc.txRepo.ListByUserBetween(ctx, userID, monthStart, horizon)
	if err != nil {
		return nil, err
	}

	upcoming := make([]UpcomingPayment, 0, len(templates))
	for _, tpl := range templates {
		due := tpl.NextDueDate(now)
		if due.After(horizon) {
			continue
		}

		upcoming = append(upcoming, UpcomingPayment{
			Template: tpl,
			DueDate:  due,
			Paid:     hasPosting(tpl, existing, tpl.DueDateForMonth(now.Year(), now.Month(), now.Location())),
		})
	}

	return upcoming, nil
}

// CreateTemplate persists a new template.
func (uc *RecurringUseCase) CreateTemplate(ctx context.Context, tpl *domain.RecurringTemplate) error {
	if err := tpl.Validate(); err != nil {
		return err
	}

	if tpl.ID == "" {
		tpl.ID = uc.ledger.idGen.Generate()
	}
	now := uc.now()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now

	return uc.recurringRepo.Create(ctx, tpl)
}

// UpdateTemplate edits an owned template.
func (uc *RecurringUseCase) UpdateTemplate(ctx context.Context, tpl *domain.RecurringTemplate) error {
	if err := tpl.Validate(); err != nil {
		return err
	}

	existing, err := uc.recurringRepo.GetOwned(ctx, tpl.UserID, tpl.ID)
	if err != nil {
		return err
	}

	tpl.CreatedAt = existing.CreatedAt
	tpl.UpdatedAt = uc.now()

	return uc.recurringRepo.Update(ctx, tpl)
}

// DeleteTemplate removes an owned template.
func (uc *RecurringUseCase) DeleteTemplate(ctx context.Context, userID, id string) error {
	return uc.recurringRepo.Delete(ctx, userID, id)
}

// ListTemplates lists all of a user's templates.
func (uc *RecurringUseCase) ListTemplates(ctx context.Context, userID string) ([]*domain.RecurringTemplate, error) {
	return uc.recurringRepo.ListByUser(ctx, userID)
}

// dueOccurrences returns the template occurrences inside (from, to],
// i.e. already due but recent enough to post.
func dueOccurrences(tpl *domain.RecurringTemplate, from, to time.Time) []time.Time {
	var due []time.Time

	prev := to.AddDate(0, -1, 0)
	for _, candidate := range []time.Time{
		tpl.DueDateForMonth(prev.Year(), prev.Month(), to.Location()),
		tpl.DueDateForMonth(to.Year(), to.Month(), to.Location()),
	} {
		if candidate.After(to) || !candidate.After(from) {
			continue
		}
		due = append(due, candidate)
	}

	return due
}

func hasPosting(tpl *domain.RecurringTemplate, existing []*domain.Transaction, due time.Time) bool {
	for _, t := range existing {
		if tpl.MatchesOn(t, due) {
			return true
		}
	}
	return false
}
