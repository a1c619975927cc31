package service

import (
	"testing"
	"time"

	"sygil/internal/domain"
	"sygil/internal/models"

	"github.com/stretchr/testify/require"
)

func (e *testEnv) backdate(t *testing.T, redemptionID uint, age time.Duration) {
	t.Helper()
	require.NoError(t, e.db.Model(&models.Redemption{}).
		Where("id = ?", redemptionID).
		UpdateColumn("created_at", time.Now().Add(-age)).Error)
}

func TestSweepCancelsStalePending(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 100)
	item := env.newItem(t, creator.ID, domain.VaultTypePromise, 30, 0, 0)

	stale, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.NoError(t, err)
	fresh, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.NoError(t, err)
	env.backdate(t, stale.ID, 61*24*time.Hour)
	require.Equal(t, int64(40), env.bucket(t, fan.ID, creator.ID))

	res := env.sweepSvc.Run(time.Now())
	require.Empty(t, res.Errors)
	require.Equal(t, 1, res.Cancelled)
	require.Equal(t, int64(30), res.PointsRefunded)

	got, err := env.redemptionRepo.GetByID(stale.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionCancelled, got.Status)
	require.Equal(t, domain.SweepCancelReason, got.RejectionReason)
	require.NotNil(t, got.ExpiredAt)

	untouched, err := env.redemptionRepo.GetByID(fresh.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RedemptionPending, untouched.Status)

	require.Equal(t, int64(70), env.bucket(t, fan.ID, creator.ID))
}

func TestSweepRefundsOnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 50)
	item := env.newItem(t, creator.ID, domain.VaultTypePromise, 20, 0, 0)

	rd, err := env.redemptionSvc.Redeem(fan.ID, item.ID, "")
	require.NoError(t, err)
	env.backdate(t, rd.ID, 90*24*time.Hour)

	first := env.sweepSvc.Run(time.Now())
	require.Equal(t, 1, first.Cancelled)
	second := env.sweepSvc.Run(time.Now())
	require.Zero(t, second.Cancelled)
	require.Zero(t, second.PointsRefunded)

	require.Equal(t, int64(50), env.bucket(t, fan.ID, creator.ID))
	require.Equal(t, int64(1), env.ledgerCount(t, fan.ID, domain.TxTypeRefund))
}

func TestSweepOneNotificationPerCreator(t *testing.T) {
	env := newTestEnv(t)
	alice := env.newUser(t, "alice", domain.AccountTypeCreator)
	bob := env.newUser(t, "bob", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, alice.ID, 100)
	env.fund(t, fan.ID, bob.ID, 100)
	aliceItem := env.newItem(t, alice.ID, domain.VaultTypePromise, 10, 0, 0)
	bobItem := env.newItem(t, bob.ID, domain.VaultTypePromise, 10, 0, 0)

	// Three stale for alice, one for bob.
	for i := 0; i < 3; i++ {
		rd, err := env.redemptionSvc.Redeem(fan.ID, aliceItem.ID, "")
		require.NoError(t, err)
		env.backdate(t, rd.ID, 61*24*time.Hour)
	}
	rd, err := env.redemptionSvc.Redeem(fan.ID, bobItem.ID, "")
	require.NoError(t, err)
	env.backdate(t, rd.ID, 61*24*time.Hour)

	res := env.sweepSvc.Run(time.Now())
	require.Equal(t, 4, res.Cancelled)
	require.Len(t, res.Creators, 2)

	require.Equal(t, int64(1), env.notificationCount(t, alice.ID, "REDEMPTIONS_EXPIRED"))
	require.Equal(t, int64(1), env.notificationCount(t, bob.ID, "REDEMPTIONS_EXPIRED"))

	for _, sum := range res.Creators {
		switch sum.CreatorID {
		case alice.ID:
			require.Equal(t, 3, sum.Cancelled)
			require.Equal(t, int64(30), sum.PointsRefunded)
		case bob.ID:
			require.Equal(t, 1, sum.Cancelled)
			require.Equal(t, int64(10), sum.PointsRefunded)
		default:
			t.Fatalf("unexpected creator %d in summary", sum.CreatorID)
		}
	}
}

func TestSweepExpiresOldGrants(t *testing.T) {
	env := newTestEnv(t)
	creator := env.newUser(t, "creator", domain.AccountTypeCreator)
	fan := env.newUser(t, "fan", domain.AccountTypeUser)
	env.fund(t, fan.ID, creator.ID, 60)
	require.NoError(t, env.db.Model(&models.PointTransaction{}).
		Where("user_id = ? AND type = ?", fan.ID, domain.TxTypeEarned).
		UpdateColumn("expires_at", time.Now().Add(-time.Hour)).Error)

	res := env.sweepSvc.Run(time.Now())
	require.Equal(t, 1, res.PointsExpired)
	require.Zero(t, env.bucket(t, fan.ID, creator.ID))
	require.Zero(t, env.aggregate(t, fan.ID))
}
