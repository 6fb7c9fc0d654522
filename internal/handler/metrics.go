package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	progressReadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_progress_reads_total",
			Help: "Total number of formatted progress reads by scope.",
		},
		[]string{"scope"},
	)

	progressWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracker_progress_writes_total",
			Help: "Total number of progress mutations by kind.",
		},
		[]string{"kind"},
	)

	tokensIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_api_tokens_issued_total",
		Help: "Total number of issued API tokens.",
	})

	tokensRevokedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_api_tokens_revoked_total",
		Help: "Total number of revoked API tokens.",
	})

	teamsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tracker_teams_created_total",
		Help: "Total number of created teams.",
	})
)
