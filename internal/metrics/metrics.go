// Package metrics expõe os contadores Prometheus da API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// result: created, duplicate, rejected, error
	Conversions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "referral_conversions_total",
		Help: "Conversões recebidas pelo beacon, por resultado",
	}, []string{"result"})

	Clicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "referral_clicks_total",
		Help: "Cliques registrados, por resultado",
	}, []string{"result"})

	// op: settle, adjust
	SettlementRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "referral_settlement_rows_total",
		Help: "Linhas de conversão alteradas pelo acerto mensal",
	}, []string{"op"})

	AggregationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "referral_aggregation_agent_failures_total",
		Help: "Agentes cujas estatísticas caíram para zero por falha de consulta",
	})

	NotificationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "referral_notification_failures_total",
		Help: "Falhas ao publicar notificações, por canal",
	}, []string{"sink"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "referral_http_request_duration_seconds",
		Help:    "Tempo de resposta da API",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"route", "code"})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
