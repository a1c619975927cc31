package service

import (
	"testing"
	"time"

	"sygil/internal/domain"
	"sygil/internal/models"

	"github.com/stretchr/testify/require"
)

func TestRedeemInstantFulfil(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 100)
	item := env.newItem(t, creator.ID, domain.VaultTypeText, 40, 0, 0)

	rd, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionFulfilled, rd.Status)
	require.NotNil(t, rd.FulfilledAt)
	require.Equal(t, int64(40), rd.PointsSpent)

	require.Equal(t, int64(60), env.bucket(t, fan.ID, creator.ID))
	got, err := env.vaultRepo.GetByID(item.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.UnlockCount)
}

func TestRedeemPromiseStaysPending(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 100)
	item := env.newItem(t, creator.ID, domain.VaultTypePromise, 25, 0, 0)

	rd, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionPending, rd.Status)
	require.Nil(t, rd.FulfilledAt)
	require.Equal(t, int64(1), env.notificationCount(t, creator.ID, "REDEMPTION_REQUEST"))
}

func TestRedeemInsufficientPoints(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 10)
	item := env.newItem(t, creator.ID, domain.VaultTypePromise, 25, 0, 0)

	_, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.ErrorIs(t, err, ErrInsufficientPoints)

	require.Equal(t, int64(10), env.bucket(t, fan.ID, creator.ID))
	got, err := env.vaultRepo.GetByID(item.ID)
	require.NoError(t, err)
	require.Zero(t, got.UnlockCount)
	var n int64
	require.NoError(t, env.db.Model(&models.Redemption{}).Count(&n).Error)
	require.Zero(t, n)
}

func TestRedeemSoldOut(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	first := env.newUser(t, "first", domain.AccountTypeUser)
	second := env.newUser(t, "second", domain.AccountTypeUser)
	env.fund(t, first.ID, creator.ID, 50)
	env.fund(t, second.ID, creator.ID, 50)
	item := env.newItem(t, creator.ID, domain.VaultTypePromise, 20, 1, 0)

	_, err := env.redemptionSvc.Redeem(first.ID, item.ID, "")
	require.NoError(t, err)

	_, err = env.redemptionSvc.Redeem(second.ID, item.ID, "")
	require.ErrorIs(t, err, ErrSoldOut)
	require.Equal(t, int64(50), env.bucket(t, second.ID, creator.ID))
}

func TestRedeemUserLimit(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 100)
	item := env.newItem(t, creator.ID, domain.VaultTypePromise, 10, 0, 1)

	_, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.NoError(t, err)

	_, err = env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.ErrorIs(t, err, ErrUserLimitReached)
	require.Equal(t, int64(90), env.bucket(t, fan.ID, creator.ID))
}

func TestRedeemUserLimitResetByRejection(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 100)
	item := env.newItem(t, creator.ID, domain.VaultTypePromise, 10, 0, 1)

	rd, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.NoError(t, err)
	_, err = env.redemptionSvc.Reject(creator.ID, rd.ID, "not this time")
	require.NoError(t, err)

	// A rejected redemption refunded its points and no longer counts against
	// the per-fan limit.
	_, err = env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.NoError(t, err)
}

func TestRedeemValidation(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 100)

	qna := env.newItem(t, creator.ID, domain.VaultTypeQnA, 10, 0, 0)
	_, err := env.redemptionSvc.Redeem(fan.ID, qna.ID, "")
	require.ErrorIs(t, err, ErrFanInputRequired)

	inactive := env.newItem(t, creator.ID, domain.VaultTypePromise, 10, 0, 0)
	inactive.Active = false
	require.NoError(t, env.vaultRepo.Update(inactive))
	_, err = env.redemptionSvc.Redeem(fan.ID, inactive.ID, "")
	require.ErrorIs(t, err, ErrItemInactive)

	_, err = env.redemptionSvc.Redeem(fan.ID, 9999, "")
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestFulfilQnA(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	other := env.newUser(t, "other", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 100)
	item := env.newItem(t, creator.ID, domain.VaultTypeQnA, 30, 0, 0)

	rd, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "what's your favourite song?")
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionPending, rd.Status)

	_, err = env.redemptionSvc.Fulfil(other.ID, rd.ID, "mine")
	require.ErrorIs(t, err, ErrNotItemOwner)

	_, err = env.redemptionSvc.Fulfil(creator.ID, rd.ID, "")
	require.ErrorIs(t, err, ErrResponseRequired)

	done, err := env.redemptionSvc.Fulfil(creator.ID, rd.ID, "this one")
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionFulfilled, done.Status)
	require.Equal(t, "this one", done.CreatorResponse)
	require.Equal(t, int64(1), env.notificationCount(t, fan.ID, "REDEMPTION_FULFILLED"))

	// Terminal redemptions cannot transition again.
	_, err = env.redemptionSvc.Fulfil(creator.ID, rd.ID, "again")
	require.ErrorIs(t, err, ErrNotPending)
	_, err = env.redemptionSvc.Reject(creator.ID, rd.ID, "too late")
	require.ErrorIs(t, err, ErrNotPending)
}

func TestRejectRefundsExactly(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 100)
	item := env.newItem(t, creator.ID, domain.VaultTypePromise, 35, 0, 0)

	rd, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.NoError(t, err)
	require.Equal(t, int64(65), env.bucket(t, fan.ID, creator.ID))

	_, err = env.redemptionSvc.Reject(creator.ID, rd.ID, "")
	require.ErrorIs(t, err, ErrReasonRequired)

	rejected, err := env.redemptionSvc.Reject(creator.ID, rd.ID, "cannot do this one")
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionRejected, rejected.Status)
	require.Equal(t, "cannot do this one", rejected.RejectionReason)
	require.Equal(t, int64(100), env.bucket(t, fan.ID, creator.ID))
	require.Equal(t, int64(100), env.aggregate(t, fan.ID))
	require.Equal(t, int64(1), env.ledgerCount(t, fan.ID, domain.TxTypeRefund))
	require.Equal(t, int64(1), env.notificationCount(t, fan.ID, "REDEMPTION_REJECTED"))

	// A second reject must not produce a second refund.
	_, err = env.redemptionSvc.Reject(creator.ID, rd.ID, "again")
	require.ErrorIs(t, err, ErrNotPending)
	require.Equal(t, int64(1), env.ledgerCount(t, fan.ID, domain.TxTypeRefund))
}

func TestRejectRacingSweepRefundsOnce(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 100)
	item := env.newItem(t, creator.ID, domain.VaultTypePromise, 35, 0, 0)

	rd, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.NoError(t, err)
	env.backdate(t, rd.ID, 61*24*time.Hour)

	// The sweep wins: it cancels the redemption and owns the refund.
	res := env.sweepSvc.Run(time.Now())
	require.Equal(t, 1, res.Cancelled)
	require.Equal(t, int64(100), env.bucket(t, fan.ID, creator.ID))

	// A late reject or fulfil loses the race and must not touch the row.
	_, err = env.redemptionSvc.Reject(creator.ID, rd.ID, "too slow")
	require.ErrorIs(t, err, ErrNotPending)
	_, err = env.redemptionSvc.Fulfil(creator.ID, rd.ID, "")
	require.ErrorIs(t, err, ErrNotPending)

	// The conditional updates guard the window between the service's read
	// and its write: once the row left Pending, neither transition lands.
	ok, err := env.redemptionRepo.MarkRejected(rd.ID, "too slow")
	require.NoError(t, err)
	require.False(t, ok)
	ok, err = env.redemptionRepo.MarkFulfilled(rd.ID, "done", time.Now())
	require.NoError(t, err)
	require.False(t, ok)

	got, err := env.redemptionRepo.GetByID(rd.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionCancelled, got.Status)
	require.Equal(t, int64(1), env.ledgerCount(t, fan.ID, domain.TxTypeRefund))
	require.Equal(t, int64(100), env.bucket(t, fan.ID, creator.ID))
}

func TestRedeemFreeItem(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	item := env.newItem(t, creator.ID, domain.VaultTypeText, 0, 0, 0)

	// Zero-cost items redeem without any bucket at all.
	rd, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionFulfilled, rd.Status)
	require.Zero(t, env.ledgerCount(t, fan.ID, domain.TxTypeSpent))
}
