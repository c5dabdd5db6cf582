package settlement

import (
	"context"
	"testing"
	"time"

	"github.com/quotelink/referral-api/internal/agent"
	"github.com/quotelink/referral-api/internal/apperr"
	"github.com/quotelink/referral-api/internal/quote"
	"github.com/quotelink/referral-api/internal/utils/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var kst = time.FixedZone("KST", 9*3600)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, kst).UTC()
}

func strptr(s string) *string { return &s }

func newReconciler(t *testing.T) (*Reconciler, *gorm.DB) {
	db := dbtest.Open(t, &agent.Agent{}, &quote.QuoteRequest{}, &SettlementRecord{})
	for _, a := range []agent.Agent{
		{ID: "Ab3kM9", Name: "Kim", Phone: "01011112222", Account: strptr("KB 123-456"), IsActive: true},
		{ID: "Xy7nP2", Name: "Lee", Phone: "01033334444", IsActive: true},
		{ID: "Mn4pQ7", Name: "Park", Phone: "01077778888", IsActive: true},
	} {
		require.NoError(t, db.Create(&a).Error)
	}
	return NewReconciler(db, kst), db
}

func addQuotes(t *testing.T, db *gorm.DB, agentID string, times ...time.Time) {
	for _, ts := range times {
		q := quote.QuoteRequest{AgentID: agentID, ConversionType: quote.TypeQuoteRequest, Status: quote.StatusPending, CreatedAt: ts}
		require.NoError(t, db.Create(&q).Error)
	}
}

func TestPeriod(t *testing.T) {
	r := NewReconciler(nil, kst)

	start, end, err := r.Period("2025-02")
	require.NoError(t, err)
	assert.True(t, start.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, kst)))
	assert.True(t, end.Equal(time.Date(2025, 2, 28, 23, 59, 59, int(999*time.Millisecond), kst)))

	for _, bad := range []string{"", "2025-13", "2025-1", "25-11", "2025/11", "2025-11-01"} {
		_, _, err := r.Period(bad)
		assert.ErrorIs(t, err, apperr.ErrValidation, bad)
	}
}

func TestAdjustThenSettleScenario(t *testing.T) {
	r, db := newReconciler(t)
	ctx := context.Background()
	addQuotes(t, db, "Ab3kM9", at(2025, 11, 3, 10), at(2025, 11, 14, 15), at(2025, 11, 28, 9))

	n, err := r.AdjustUnitPrice(ctx, "Ab3kM9", "2025-11", 12000)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	var rows []quote.QuoteRequest
	require.NoError(t, db.Where("agent_id = ?", "Ab3kM9").Find(&rows).Error)
	for _, q := range rows {
		require.NotNil(t, q.CommissionAmount)
		assert.Equal(t, int64(12000), *q.CommissionAmount)
	}

	n, err = r.SettleAgent(ctx, "Ab3kM9", "2025-11")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	require.NoError(t, db.Where("agent_id = ?", "Ab3kM9").Find(&rows).Error)
	for _, q := range rows {
		assert.True(t, q.IsSettled)
		require.NotNil(t, q.SettlementMonth)
		assert.Equal(t, "2025-11", *q.SettlementMonth)
	}

	view, err := r.PeriodStats(ctx, "2025-11")
	require.NoError(t, err)
	require.Len(t, view.SettlementData, 1)
	s := view.SettlementData[0]
	assert.True(t, s.IsSettled)
	assert.Equal(t, int64(36000), s.Commission)
	assert.Equal(t, int64(36000), s.SettledCommission)
	assert.Equal(t, int64(0), s.PendingCommission)
	assert.Equal(t, int64(12000), s.UnitPrice)
	assert.Equal(t, "KB 123-456", s.Account)

	// repetir o acerto não altera nada e continua sendo sucesso
	n, err = r.SettleAgent(ctx, "Ab3kM9", "2025-11")
	require.NoError(t, err)
	assert.Zero(t, n)

	// ajuste depois do acerto não toca linhas acertadas
	n, err = r.AdjustUnitPrice(ctx, "Ab3kM9", "2025-11", 5000)
	require.NoError(t, err)
	assert.Zero(t, n)
	view, err = r.PeriodStats(ctx, "2025-11")
	require.NoError(t, err)
	assert.Equal(t, int64(36000), view.SettlementData[0].Commission)

	history, err := r.History(ctx, "2025-11")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, KindAdjust, history[0].Kind)
	assert.Equal(t, int64(12000), history[0].Amount)
	assert.Equal(t, KindSettle, history[1].Kind)
	assert.Equal(t, int64(3), history[1].RowCount)
	assert.Equal(t, int64(36000), history[1].Amount)
}

func TestSettleScopedToMonth(t *testing.T) {
	r, db := newReconciler(t)
	ctx := context.Background()
	// 2025-10-31 23h KST ainda é outubro; 2025-12-01 00h KST já é dezembro
	addQuotes(t, db, "Ab3kM9", time.Date(2025, 10, 31, 23, 0, 0, 0, kst).UTC(), at(2025, 11, 1, 0), at(2025, 12, 1, 0))

	n, err := r.SettleAgent(ctx, "Ab3kM9", "2025-11")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	var settled int64
	require.NoError(t, db.Model(&quote.QuoteRequest{}).Where("is_settled = ?", true).Count(&settled).Error)
	assert.Equal(t, int64(1), settled)
}

func TestPartialSettlementView(t *testing.T) {
	r, db := newReconciler(t)
	ctx := context.Background()
	addQuotes(t, db, "Ab3kM9", at(2025, 11, 3, 10), at(2025, 11, 4, 10))
	addQuotes(t, db, "Xy7nP2", at(2025, 11, 5, 10))
	addQuotes(t, db, "Mn4pQ7", at(2025, 10, 5, 10))

	_, err := r.SettleAgent(ctx, "Ab3kM9", "2025-11")
	require.NoError(t, err)
	addQuotes(t, db, "Ab3kM9", at(2025, 11, 20, 10))
	_, err = r.AdjustUnitPrice(ctx, "Ab3kM9", "2025-11", 15000)
	require.NoError(t, err)

	view, err := r.PeriodStats(ctx, "2025-11")
	require.NoError(t, err)
	require.Len(t, view.SettlementData, 2, "agentes sem conversões no mês ficam de fora")

	ab := view.SettlementData[0]
	assert.Equal(t, "Ab3kM9", ab.AgentID)
	assert.False(t, ab.IsSettled)
	assert.Equal(t, 3, ab.Quotes)
	assert.Equal(t, int64(35000), ab.Commission)
	assert.Equal(t, int64(20000), ab.SettledCommission)
	assert.Equal(t, int64(15000), ab.PendingCommission)
	assert.Equal(t, int64(15000), ab.UnitPrice)

	assert.Equal(t, Summary{
		TotalAgents:       2,
		SettledAgents:     0,
		PendingAgents:     2,
		TotalQuotes:       4,
		TotalCommission:   45000,
		SettledCommission: 20000,
		PendingCommission: 25000,
	}, view.Stats)
}

func TestSettleAll(t *testing.T) {
	r, db := newReconciler(t)
	ctx := context.Background()
	addQuotes(t, db, "Ab3kM9", at(2025, 11, 3, 10), at(2025, 11, 4, 10))
	addQuotes(t, db, "Xy7nP2", at(2025, 11, 5, 10))
	addQuotes(t, db, "Mn4pQ7", at(2025, 10, 5, 10))

	n, err := r.SettleAll(ctx, "2025-11")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = r.SettleAll(ctx, "2025-11")
	require.NoError(t, err)
	assert.Zero(t, n)

	view, err := r.PeriodStats(ctx, "2025-11")
	require.NoError(t, err)
	assert.Equal(t, 2, view.Stats.SettledAgents)
	assert.Zero(t, view.Stats.PendingCommission)

	history, err := r.History(ctx, "2025-11")
	require.NoError(t, err)
	assert.Len(t, history, 2)

	var october quote.QuoteRequest
	require.NoError(t, db.Where("agent_id = ?", "Mn4pQ7").First(&october).Error)
	assert.False(t, october.IsSettled)
}

func TestValidationErrors(t *testing.T) {
	r, _ := newReconciler(t)
	ctx := context.Background()

	_, err := r.SettleAgent(ctx, "", "2025-11")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = r.SettleAgent(ctx, "Ab3kM9", "11-2025")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = r.SettleAll(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = r.AdjustUnitPrice(ctx, "Ab3kM9", "2025-11", 0)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = r.AdjustUnitPrice(ctx, "Ab3kM9", "2025-11", -100)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = r.PeriodStats(ctx, "nov")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
