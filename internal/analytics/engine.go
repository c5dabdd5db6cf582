package analytics

import (
	"context"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/quotelink/referral-api/internal/agent"
	"github.com/quotelink/referral-api/internal/apperr"
	"github.com/quotelink/referral-api/internal/click"
	"github.com/quotelink/referral-api/internal/metrics"
	"github.com/quotelink/referral-api/internal/quote"
	"gorm.io/gorm"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"

	DefaultWorkers = 4

	trailingMonths = 6
	trailingDays   = 30
)

// Engine calcula as estatísticas por agente e as séries agregadas.
type Engine struct {
	DB       *gorm.DB
	Agents   agent.Repository
	Clicks   click.Repository
	Quotes   quote.Repository
	Location *time.Location
	Workers  int
	Now      func() time.Time
}

func NewEngine(db *gorm.DB, loc *time.Location, workers int) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Engine{
		DB:       db,
		Agents:   agent.NewRepository(),
		Clicks:   click.NewRepository(),
		Quotes:   quote.NewRepository(),
		Location: loc,
		Workers:  workers,
		Now:      time.Now,
	}
}

// DayBounds interpreta as datas no fuso do engine: start às 00:00:00.000 e
// end às 23:59:59.999, ambos inclusivos.
func (e *Engine) DayBounds(startDate, endDate string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, e.Location)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("startDate inválida: %q", startDate)
	}
	end, err := time.ParseInLocation(dateLayout, endDate, e.Location)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("endDate inválida: %q", endDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, apperr.Validation("startDate posterior a endDate")
	}
	return start, endOfDay(end), nil
}

func endOfDay(day time.Time) time.Time {
	return day.AddDate(0, 0, 1).Add(-time.Millisecond)
}

// Compute monta o relatório completo do intervalo.
func (e *Engine) Compute(ctx context.Context, startDate, endDate string) (*Report, error) {
	start, end, err := e.DayBounds(startDate, endDate)
	if err != nil {
		return nil, err
	}

	db := e.DB.WithContext(ctx)
	agents, err := e.Agents.ListActive(db)
	if err != nil {
		return nil, apperr.Storage("listar agentes ativos", err)
	}

	stats := e.agentStats(db, agents, start, end, startDate+" ~ "+endDate)

	report := &Report{AgentStats: stats}
	for _, s := range stats {
		report.TotalQuotes += s.Quotes
		report.TotalCommission += s.Commission
	}

	if report.MonthlyStats, err = e.monthly(db); err != nil {
		return nil, err
	}
	if report.DailyStats, err = e.daily(db); err != nil {
		return nil, err
	}
	return report, nil
}

// agentStats distribui os agentes entre no máximo Workers goroutines. A falha
// de um agente zera apenas as estatísticas dele.
func (e *Engine) agentStats(db *gorm.DB, agents []agent.Agent, start, end time.Time, period string) []AgentStats {
	out := make([]AgentStats, len(agents))
	sem := make(chan struct{}, e.Workers)
	var wg sync.WaitGroup

	for i := range agents {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()

			ag := agents[i]
			s, err := e.statsFor(db, ag.ID, start, end)
			if err != nil {
				metrics.AggregationFailures.Inc()
				slog.Warn("falha ao calcular estatísticas do agente", "agent_id", ag.ID, "err", err)
				s = AgentStats{}
			}
			s.AgentID = ag.ID
			s.Name = ag.Name
			s.Period = period
			out[i] = s
		}(i)
	}
	wg.Wait()

	sort.SliceStable(out, func(a, b int) bool {
		if out[a].Quotes != out[b].Quotes {
			return out[a].Quotes > out[b].Quotes
		}
		return out[a].AgentID < out[b].AgentID
	})
	return out
}

func (e *Engine) statsFor(db *gorm.DB, agentID string, start, end time.Time) (AgentStats, error) {
	clicks, err := e.Clicks.CountByAgentBetween(db, agentID, start, end)
	if err != nil {
		return AgentStats{}, err
	}
	quotes, err := e.Quotes.ListByAgentBetween(db, agentID, start, end)
	if err != nil {
		return AgentStats{}, err
	}
	return AgentStats{
		Clicks:         clicks,
		Quotes:         len(quotes),
		Commission:     quote.SumCommission(quotes),
		ConversionRate: ConversionRate(len(quotes), clicks),
	}, nil
}

// ConversionRate devolve quotes/clicks*100 com uma casa decimal; 0 sem cliques.
func ConversionRate(quotes int, clicks int64) float64 {
	if clicks <= 0 {
		return 0
	}
	return math.Round(float64(quotes)/float64(clicks)*1000) / 10
}

// monthly cobre os últimos trailingMonths meses, incluindo o atual.
func (e *Engine) monthly(db *gorm.DB) ([]Bucket, error) {
	now := e.Now().In(e.Location)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, e.Location).AddDate(0, -(trailingMonths - 1), 0)
	end := endOfDay(time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.Location))

	keys := make([]string, 0, trailingMonths)
	for i := 0; i < trailingMonths; i++ {
		keys = append(keys, first.AddDate(0, i, 0).Format(monthLayout))
	}
	return e.buckets(db, first, end, keys, monthLayout)
}

// daily cobre os últimos trailingDays dias, incluindo hoje.
func (e *Engine) daily(db *gorm.DB) ([]Bucket, error) {
	now := e.Now().In(e.Location)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, e.Location)
	first := today.AddDate(0, 0, -(trailingDays - 1))

	keys := make([]string, 0, trailingDays)
	for i := 0; i < trailingDays; i++ {
		keys = append(keys, first.AddDate(0, 0, i).Format(dateLayout))
	}
	return e.buckets(db, first, endOfDay(today), keys, dateLayout)
}

func (e *Engine) buckets(db *gorm.DB, start, end time.Time, keys []string, layout string) ([]Bucket, error) {
	clicks, err := e.Clicks.ListBetween(db, start, end)
	if err != nil {
		return nil, apperr.Storage("listar cliques do período", err)
	}
	quotes, err := e.Quotes.ListBetween(db, start, end)
	if err != nil {
		return nil, apperr.Storage("listar conversões do período", err)
	}

	out := make([]Bucket, len(keys))
	index := make(map[string]int, len(keys))
	for i, k := range keys {
		out[i].Period = k
		index[k] = i
	}
	for _, c := range clicks {
		if i, ok := index[c.CreatedAt.In(e.Location).Format(layout)]; ok {
			out[i].Clicks++
		}
	}
	for _, q := range quotes {
		if i, ok := index[q.CreatedAt.In(e.Location).Format(layout)]; ok {
			out[i].Quotes++
			out[i].Commission += quote.EffectiveCommission(q.CommissionAmount)
		}
	}
	return out, nil
}
