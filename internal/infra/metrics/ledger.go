package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		commissionsTotal,
		withdrawalsTotal,
		negativeBalanceClamps,
	)
}

var (
	commissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "affiliate_commissions_total",
			Help: "Commission calculations by outcome (created/duplicate/no_referral).",
		},
		[]string{"outcome"},
	)

	withdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "withdrawals_total",
			Help: "Withdrawal requests and admin transitions by resulting status.",
		},
		[]string{"status"},
	)

	// A computed balance below zero means the ledger disagrees with itself;
	// the value is clamped for callers but the occurrence is worth alerting on.
	negativeBalanceClamps = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_negative_balance_clamps_total",
			Help: "Times a computed balance came out negative and was clamped to zero.",
		},
	)
)

func IncCommission(outcome string) {
	commissionsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncWithdrawal(status string) {
	withdrawalsTotal.WithLabelValues(norm(status)).Inc()
}

func IncNegativeBalanceClamp() {
	negativeBalanceClamps.Inc()
}
