package service

import (
	"testing"
	"time"

	"sygil/internal/domain"
	"sygil/internal/models"

	"github.com/stretchr/testify/require"
)

func TestPointsForDonation(t *testing.T) {
	cases := []struct {
		amount int64
		want   int64
	}{
		{100, 10},
		{99, 9},
		{10, 1},
		{9, 0},
		{1, 0},
		{0, 0},
		{1055, 105},
	}
	for _, c := range cases {
		require.Equal(t, c.want, PointsForDonation(c.amount), "amount %d", c.amount)
	}
}

func TestAwardForDonation(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)

	awarded, err := env.pointsSvc.AwardForDonation(fan.ID, creator.ID, 250, "order_1")
	require.NoError(t, err)
	require.Equal(t, int64(25), awarded)

	require.Equal(t, int64(25), env.bucket(t, fan.ID, creator.ID))
	require.Equal(t, int64(25), env.aggregate(t, fan.ID))

	var tx models.PointTransaction
	require.NoError(t, env.db.Where("user_id = ? AND type = ?", fan.ID, domain.TxTypeEarned).First(&tx).Error)
	require.Equal(t, int64(25), tx.Amount)
	require.Equal(t, "order_1", tx.Reference)
	require.NotNil(t, tx.ExpiresAt)
	require.WithinDuration(t, time.Now().Add(testExpiry), *tx.ExpiresAt, time.Minute)

	// Donation too small to earn anything: no ledger row either.
	awarded, err = env.pointsSvc.AwardForDonation(fan.ID, creator.ID, 5, "order_2")
	require.NoError(t, err)
	require.Zero(t, awarded)
	require.Equal(t, int64(1), env.ledgerCount(t, fan.ID, domain.TxTypeEarned))
}

func TestSpendInsufficientLeavesNothingBehind(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 10)

	err := env.pointsSvc.Spend(fan.ID, creator.ID, 20, "too expensive", "ref_1")
	require.ErrorIs(t, err, ErrInsufficientPoints)

	require.Equal(t, int64(10), env.bucket(t, fan.ID, creator.ID))
	require.Equal(t, int64(10), env.aggregate(t, fan.ID))
	require.Zero(t, env.ledgerCount(t, fan.ID, domain.TxTypeSpent))
}

func TestSpendDoesNotCrossCreatorBuckets(t *testing.T) {
	env := newTestEnv(t)
	alice := env.newUser(t, "alice", domain.AccountTypeCreator)
	bob := env.newUser(t, "bob", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, alice.ID, 50)

	// 50 aggregate points, but none of them with bob.
	err := env.pointsSvc.Spend(fan.ID, bob.ID, 10, "wrong creator", "ref_1")
	require.ErrorIs(t, err, ErrInsufficientPoints)
	require.Equal(t, int64(50), env.bucket(t, fan.ID, alice.ID))
	require.Equal(t, int64(50), env.aggregate(t, fan.ID))
}

func TestSpendAndRefundRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 50)

	require.NoError(t, env.pointsSvc.Spend(fan.ID, creator.ID, 30, "vault item", "ref_1"))
	require.Equal(t, int64(20), env.bucket(t, fan.ID, creator.ID))
	require.Equal(t, int64(20), env.aggregate(t, fan.ID))

	require.NoError(t, env.pointsSvc.Refund(fan.ID, creator.ID, 30, "rejected", "ref_1"))
	require.Equal(t, int64(50), env.bucket(t, fan.ID, creator.ID))
	require.Equal(t, int64(50), env.aggregate(t, fan.ID))
	require.Equal(t, int64(1), env.ledgerCount(t, fan.ID, domain.TxTypeSpent))
	require.Equal(t, int64(1), env.ledgerCount(t, fan.ID, domain.TxTypeRefund))
}

func TestGrantBonus(t *testing.T) {
	env := newTestEnv(t)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)

	_, err := env.pointsSvc.GrantBonus("fan", 0, "")
	require.ErrorIs(t, err, ErrInvalidPoints)
	_, err = env.pointsSvc.GrantBonus("fan", -5, "")
	require.ErrorIs(t, err, ErrInvalidPoints)
	_, err = env.pointsSvc.GrantBonus("nobody", 10, "")
	require.ErrorIs(t, err, ErrUserNotFound)

	tx, err := env.pointsSvc.GrantBonus("fan", 100, "launch promo")
	require.NoError(t, err)
	require.Equal(t, domain.TxTypeBonus, tx.Type)
	require.Equal(t, int64(100), tx.Amount)
	require.NotNil(t, tx.ExpiresAt)
	require.Equal(t, int64(100), env.aggregate(t, fan.ID))
	require.Equal(t, int64(1), env.notificationCount(t, fan.ID, "BONUS_GRANTED"))

	// Resolve by numeric id works too.
	_, err = env.pointsSvc.GrantBonus("1", 10, "")
	require.NoError(t, err)
	require.Equal(t, int64(110), env.aggregate(t, fan.ID))
}

func TestExpirePoints(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 40)

	// Spend part of the grant, then push its expiry into the past.
	require.NoError(t, env.pointsSvc.Spend(fan.ID, creator.ID, 15, "vault item", "ref_1"))
	past := time.Now().Add(-time.Hour)
	require.NoError(t, env.db.Model(&models.PointTransaction{}).
		Where("user_id = ? AND type = ?", fan.ID, domain.TxTypeEarned).
		UpdateColumn("expires_at", past).Error)

	expired, errs := env.pointsSvc.ExpirePoints(time.Now())
	require.Empty(t, errs)
	require.Equal(t, 1, expired)

	// Only the unspent remainder is drained.
	require.Zero(t, env.bucket(t, fan.ID, creator.ID))
	require.Zero(t, env.aggregate(t, fan.ID))
	var exp models.PointTransaction
	require.NoError(t, env.db.Where("user_id = ? AND type = ?", fan.ID, domain.TxTypeExpired).First(&exp).Error)
	require.Equal(t, int64(25), exp.Amount)

	// Second run finds nothing.
	expired, errs = env.pointsSvc.ExpirePoints(time.Now())
	require.Empty(t, errs)
	require.Zero(t, expired)
}

func TestReconcile(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 80)
	require.NoError(t, env.pointsSvc.Spend(fan.ID, creator.ID, 30, "vault item", "ref_1"))
	require.NoError(t, env.pointsSvc.Refund(fan.ID, creator.ID, 30, "rejected", "ref_1"))

	aggregate, ledger, err := env.pointsSvc.Reconcile("fan")
	require.NoError(t, err)
	require.Equal(t, int64(80), aggregate)
	require.Equal(t, aggregate, ledger)

	_, _, err = env.pointsSvc.Reconcile("nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}
