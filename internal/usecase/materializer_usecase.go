package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/velinov/fintrack/internal/domain"
)

// MaterializerUseCase keeps the applied flag of fixed transactions
// consistent with their due date. It is invoked at the start of read-heavy
// endpoints and is safe to run redundantly and concurrently for the same
// user.
type MaterializerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txRepo      TransactionRepository
	retrier     Retrier
	now         func() time.Time
}

// NewMaterializerUseCase creates a new MaterializerUseCase.
func NewMaterializerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txRepo TransactionRepository,
) *MaterializerUseCase {
	return &MaterializerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txRepo:      txRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// ApplyDueFixedExpenses runs the three-pass sweep and returns how many rows
// were newly applied.
//
// Passes 1 and 2 flip the flag without reversing any delta: by invariant
// such rows never had their delta posted, so this is a consistency
// correction, not a financial reversal. Rows that violate that assumption
// are surfaced by the ledger audit instead.
func (uc *MaterializerUseCase) ApplyDueFixedExpenses(ctx context.Context, userID string) (int, error) {
	if uc.retrier == nil {
		return uc.sweep(ctx, userID)
	}

	// Concurrent sweeps for the same user can deadlock on account rows;
	// those runs are retried whole.
	var applied int
	err := uc.retrier.Retry(ctx, func() error {
		var err error
		applied, err = uc.sweep(ctx, userID)
		return err
	})
	return applied, err
}

// SetRetrier makes each sweep retry transient database failures.
func (uc *MaterializerUseCase) SetRetrier(r Retrier) {
	uc.retrier = r
}

func (uc *MaterializerUseCase) sweep(ctx context.Context, userID string) (int, error) {
	now := uc.now()

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	// Pass 1: future-dated rows must never read as applied.
	if _, err := uc.txRepo.UnapplyFutureDated(ctx, tx, userID, now); err != nil {
		return 0, err
	}

	// Pass 2: rows created before their nominal date and untouched since
	// predate the sweep. Rows this sweep applied carry a later updated_at
	// and are left alone, so repeated sweeps cannot re-post their deltas.
	if _, err := uc.txRepo.UnapplyLegacyInverted(ctx, tx, userID); err != nil {
		return 0, err
	}

	// Pass 3: apply newly-due rows. The guarded update is the concurrency
	// mechanism; a delta is only posted when this invocation won the flip.
	due, err := uc.txRepo.ListDueUnapplied(ctx, tx, userID, now)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, t := range due {
		flipped, err := uc.txRepo.MarkApplied(ctx, tx, t.ID, now)
		if err != nil {
			return 0, err
		}
		if !flipped {
			continue
		}

		if err := uc.applyEffects(ctx, tx, t.BalanceEffect()); err != nil {
			return 0, err
		}
		applied++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return applied, nil
}

func (uc *MaterializerUseCase) applyEffects(ctx context.Context, tx Transaction, effects map[string]domain.Delta) error {
	ids := make([]string, 0, len(effects))
	for id := range effects {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := uc.accountRepo.ApplyDelta(ctx, tx, id, effects[id]); err != nil {
			return err
		}
	}

	return nil
}
