package usecases

import "time"

func (u *SavingsUsecase) SetClock(now func() time.Time) { u.now = now }

func (u *MarketUsecase) SetClock(now func() time.Time) { u.now = now }
