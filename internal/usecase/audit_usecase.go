package usecase

import (
	"context"
	"time"
)

// AuditUseCase verifies the balance invariant: every account's stored
// balances must equal the signed sum of its currently-applied transaction
// deltas. The un-apply passes of the due-date sweep assume flipped rows
// never actually posted a delta; this audit is the check (and backfill)
// for data where that assumption does not hold.
type AuditUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	ledgerRepo  LedgerRepository
	now         func() time.Time
}

// NewAuditUseCase creates a new AuditUseCase.
func NewAuditUseCase(txManager TransactionManager, accountRepo AccountRepository, ledgerRepo LedgerRepository) *AuditUseCase {
	return &AuditUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		ledgerRepo:  ledgerRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// AccountAuditRow is the per-account comparison of stored vs recomputed
// balances.
type AccountAuditRow struct {
	AccountID        string
	Name             string
	StoredBGNCents   int64
	StoredEURCents   int64
	ExpectedBGNCents int64
	ExpectedEURCents int64
	Consistent       bool
}

// Audit recomputes every owned account's applied sums and compares them to
// the stored balances. With backfill set, drifted accounts are rewritten to
// the recomputed values in one transaction.
func (uc *AuditUseCase) Audit(ctx context.Context, userID string, backfill bool) ([]AccountAuditRow, error) {
	now := uc.now()

	sums, err := uc.ledgerRepo.AppliedSums(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	accounts, err := uc.accountRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows := make([]AccountAuditRow, 0, len(accounts))
	var drifted []AccountAuditRow
	for _, acc := range accounts {
		expected := sums[acc.ID]
		row := AccountAuditRow{
			AccountID:        acc.ID,
			Name:             acc.Name,
			StoredBGNCents:   acc.BalanceBGNCents,
			StoredEURCents:   acc.BalanceEURCents,
			ExpectedBGNCents: expected.BGNCents,
			ExpectedEURCents: expected.EURCents,
		}
		row.Consistent = row.StoredBGNCents == row.ExpectedBGNCents && row.StoredEURCents == row.ExpectedEURCents

		rows = append(rows, row)
		if !row.Consistent {
			drifted = append(drifted, row)
		}
	}

	if backfill && len(drifted) > 0 {
		tx, err := uc.txManager.Begin(ctx)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback(ctx)

		for _, row := range drifted {
			if err := uc.accountRepo.SetBalances(ctx, tx, row.AccountID, row.ExpectedBGNCents, row.ExpectedEURCents); err != nil {
				return nil, err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
	}

	return rows, nil
}
