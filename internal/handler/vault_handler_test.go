package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"sygil/internal/domain"
	"sygil/internal/models"
	"sygil/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type vaultTestEnv struct {
	router    *gin.Engine
	vaultRepo *repository.VaultRepository
}

// newVaultTestEnv wires the vault routes behind a stand-in for the auth
// middleware that trusts a fixed creator identity.
func newVaultTestEnv(t *testing.T, creatorID uint) *vaultTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.VaultItem{}))

	vaultRepo := repository.NewVaultRepository(db)
	h := NewVaultHandler(vaultRepo, repository.NewUserRepository(db))
	r := gin.New()
	r.PATCH("/creator/vault/:id", func(c *gin.Context) {
		c.Set("user_id", creatorID)
	}, h.Update)
	return &vaultTestEnv{router: r, vaultRepo: vaultRepo}
}

func (e *vaultTestEnv) newItem(t *testing.T, creatorID uint, limit int) *models.VaultItem {
	t.Helper()
	item := &models.VaultItem{
		CreatorID:  creatorID,
		Title:      "Signed print",
		Type:       domain.VaultTypeText,
		SecretText: "the secret",
		PointCost:  50,
		Limit:      limit,
		Active:     true,
	}
	require.NoError(t, e.vaultRepo.Create(item))
	return item
}

func (e *vaultTestEnv) patch(t *testing.T, itemID uint, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch,
		fmt.Sprintf("/creator/vault/%d", itemID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestVaultUpdateLimitOnlyGrows(t *testing.T) {
	env := newVaultTestEnv(t, 1)

	finite := env.newItem(t, 1, 5)
	unlimited := env.newItem(t, 1, 0)

	// Raising a finite limit is allowed.
	w := env.patch(t, finite.ID, `{"limit": 8}`)
	require.Equal(t, http.StatusOK, w.Code)
	got, err := env.vaultRepo.GetByID(finite.ID)
	require.NoError(t, err)
	require.Equal(t, 8, got.Limit)

	// Lowering it is not.
	w = env.patch(t, finite.ID, `{"limit": 3}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	got, err = env.vaultRepo.GetByID(finite.ID)
	require.NoError(t, err)
	require.Equal(t, 8, got.Limit)

	// Finite to unlimited (0) is a raise.
	w = env.patch(t, finite.ID, `{"limit": 0}`)
	require.Equal(t, http.StatusOK, w.Code)
	got, err = env.vaultRepo.GetByID(finite.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Limit)

	// Unlimited back to finite would shrink supply.
	w = env.patch(t, unlimited.ID, `{"limit": 100}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	got, err = env.vaultRepo.GetByID(unlimited.ID)
	require.NoError(t, err)
	require.Equal(t, 0, got.Limit)

	// Other fields still update when the limit is untouched.
	w = env.patch(t, unlimited.ID, `{"point_cost": 75}`)
	require.Equal(t, http.StatusOK, w.Code)
	got, err = env.vaultRepo.GetByID(unlimited.ID)
	require.NoError(t, err)
	require.Equal(t, int64(75), got.PointCost)
}

func TestVaultUpdateOwnership(t *testing.T) {
	env := newVaultTestEnv(t, 1)
	other := env.newItem(t, 2, 5)

	w := env.patch(t, other.ID, `{"limit": 8}`)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = env.patch(t, 9999, `{"limit": 8}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}
