package usecase

import "time"

// Clock overrides for tests; the production constructors pin time.Now.

func (uc *LedgerUseCase) SetClock(now func() time.Time)       { uc.now = now }
func (uc *MaterializerUseCase) SetClock(now func() time.Time) { uc.now = now }
func (uc *RecurringUseCase) SetClock(now func() time.Time)    { uc.now = now }
func (uc *AccountUseCase) SetClock(now func() time.Time)      { uc.now = now }
func (uc *AuditUseCase) SetClock(now func() time.Time)        { uc.now = now }
