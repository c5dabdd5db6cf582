package settlement

import (
	"context"
	"strings"
	"time"

	"github.com/quotelink/referral-api/internal/agent"
	"github.com/quotelink/referral-api/internal/apperr"
	"github.com/quotelink/referral-api/internal/metrics"
	"github.com/quotelink/referral-api/internal/quote"
	"gorm.io/gorm"
)

const monthLayout = "2006-01"

// Reconciler calcula a visão de acerto de um mês e altera o estado de acerto
// das conversões. Toda escrita é um UPDATE condicionado a is_settled=false,
// então repetir uma operação não muda nada.
type Reconciler struct {
	DB       *gorm.DB
	Agents   agent.Repository
	Quotes   quote.Repository
	Ledger   Repository
	Location *time.Location
}

func NewReconciler(db *gorm.DB, loc *time.Location) *Reconciler {
	if loc == nil {
		loc = time.UTC
	}
	return &Reconciler{
		DB:       db,
		Agents:   agent.NewRepository(),
		Quotes:   quote.NewRepository(),
		Ledger:   NewRepository(),
		Location: loc,
	}
}

// Period devolve o primeiro e o último instante do mês no fuso configurado.
func (r *Reconciler) Period(month string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(monthLayout, month, r.Location)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("month deve estar no formato YYYY-MM: %q", month)
	}
	return start, start.AddDate(0, 1, 0).Add(-time.Millisecond), nil
}

func (r *Reconciler) PeriodStats(ctx context.Context, month string) (*View, error) {
	start, end, err := r.Period(month)
	if err != nil {
		return nil, err
	}

	db := r.DB.WithContext(ctx)
	agents, err := r.Agents.ListActive(db)
	if err != nil {
		return nil, apperr.Storage("listar agentes ativos", err)
	}
	quotes, err := r.Quotes.ListBetween(db, start, end)
	if err != nil {
		return nil, apperr.Storage("listar conversões do mês", err)
	}

	byAgent := make(map[string][]quote.QuoteRequest)
	for _, q := range quotes {
		byAgent[q.AgentID] = append(byAgent[q.AgentID], q)
	}

	view := &View{Month: month, SettlementData: []PeriodStats{}}
	for _, ag := range agents {
		list := byAgent[ag.ID]
		if len(list) == 0 {
			continue
		}
		s := statsFor(ag, list, month)
		view.SettlementData = append(view.SettlementData, s)

		view.Stats.TotalAgents++
		if s.IsSettled {
			view.Stats.SettledAgents++
		} else {
			view.Stats.PendingAgents++
		}
		view.Stats.TotalQuotes += s.Quotes
		view.Stats.TotalCommission += s.Commission
		view.Stats.SettledCommission += s.SettledCommission
		view.Stats.PendingCommission += s.PendingCommission
	}
	return view, nil
}

// list vem ordenada por created_at; o preço unitário exibido é o da conversão mais recente.
func statsFor(ag agent.Agent, list []quote.QuoteRequest, month string) PeriodStats {
	s := PeriodStats{
		AgentID:    ag.ID,
		Name:       ag.Name,
		Phone:      ag.Phone,
		Quotes:     len(list),
		Commission: quote.SumCommission(list),
		UnitPrice:  quote.EffectiveCommission(list[len(list)-1].CommissionAmount),
		IsSettled:  true,
	}
	if ag.Account != nil {
		s.Account = *ag.Account
	}
	for _, q := range list {
		if q.IsSettled && q.SettlementMonth != nil && *q.SettlementMonth == month {
			s.SettledCommission += quote.EffectiveCommission(q.CommissionAmount)
		} else {
			s.IsSettled = false
		}
	}
	s.PendingCommission = s.Commission - s.SettledCommission
	return s
}

// SettleAgent acerta as conversões em aberto do agente no mês. Zero linhas é sucesso.
func (r *Reconciler) SettleAgent(ctx context.Context, agentID, month string) (int64, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return 0, apperr.Validation("agentId é obrigatório")
	}
	start, end, err := r.Period(month)
	if err != nil {
		return 0, err
	}

	var n int64
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err = r.settle(tx, agentID, month, start, end)
		return err
	})
	if err != nil {
		return 0, apperr.Storage("acertar agente", err)
	}
	metrics.SettlementRows.WithLabelValues(KindSettle).Add(float64(n))
	return n, nil
}

// SettleAll acerta, numa única transação, todos os agentes com pendências no mês.
func (r *Reconciler) SettleAll(ctx context.Context, month string) (int64, error) {
	start, end, err := r.Period(month)
	if err != nil {
		return 0, err
	}

	var total int64
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := r.Quotes.AgentsWithUnsettled(tx, start, end)
		if err != nil {
			return err
		}
		for _, id := range ids {
			n, err := r.settle(tx, id, month, start, end)
			if err != nil {
				return err
			}
			total += n
		}
		return nil
	})
	if err != nil {
		return 0, apperr.Storage("acerto em lote", err)
	}
	metrics.SettlementRows.WithLabelValues(KindSettle).Add(float64(total))
	return total, nil
}

func (r *Reconciler) settle(tx *gorm.DB, agentID, month string, start, end time.Time) (int64, error) {
	list, err := r.Quotes.ListByAgentBetween(tx, agentID, start, end)
	if err != nil {
		return 0, err
	}
	var amount int64
	for _, q := range list {
		if !q.IsSettled {
			amount += quote.EffectiveCommission(q.CommissionAmount)
		}
	}

	n, err := r.Quotes.SettleUnsettled(tx, agentID, month, start, end)
	if err != nil || n == 0 {
		return n, err
	}
	return n, r.Ledger.Append(tx, &SettlementRecord{
		AgentID:  agentID,
		Month:    month,
		Kind:     KindSettle,
		RowCount: n,
		Amount:   amount,
	})
}

// AdjustUnitPrice troca a comissão das conversões ainda em aberto do agente no mês.
func (r *Reconciler) AdjustUnitPrice(ctx context.Context, agentID, month string, amount int64) (int64, error) {
	agentID = strings.TrimSpace(agentID)
	if agentID == "" {
		return 0, apperr.Validation("agentId é obrigatório")
	}
	if amount <= 0 {
		return 0, apperr.Validation("commissionAmount deve ser positivo")
	}
	start, end, err := r.Period(month)
	if err != nil {
		return 0, err
	}

	var n int64
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err = r.Quotes.SetUnsettledCommission(tx, agentID, start, end, amount)
		if err != nil || n == 0 {
			return err
		}
		return r.Ledger.Append(tx, &SettlementRecord{
			AgentID:  agentID,
			Month:    month,
			Kind:     KindAdjust,
			RowCount: n,
			Amount:   amount,
		})
	})
	if err != nil {
		return 0, apperr.Storage("ajustar preço unitário", err)
	}
	metrics.SettlementRows.WithLabelValues(KindAdjust).Add(float64(n))
	return n, nil
}

func (r *Reconciler) History(ctx context.Context, month string) ([]SettlementRecord, error) {
	if _, _, err := r.Period(month); err != nil {
		return nil, err
	}
	list, err := r.Ledger.ListByMonth(r.DB.WithContext(ctx), month)
	if err != nil {
		return nil, apperr.Storage("listar histórico de acertos", err)
	}
	return list, nil
}
