package game

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	ClicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kush_clicks_total",
			Help: "Total clicks recorded",
		},
	)
	KushEarned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kush_earned_total",
			Help: "Total KUSH credited to players",
		},
		[]string{"source"},
	)
	UpgradesPurchased = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kush_upgrades_purchased_total",
			Help: "Upgrade units bought",
		},
		[]string{"upgrade"},
	)
	AchievementsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kush_achievements_completed_total",
			Help: "Achievements completed by players",
		},
		[]string{"achievement"},
	)
)

func init() {
	prometheus.MustRegister(ClicksTotal)
	prometheus.MustRegister(KushEarned)
	prometheus.MustRegister(UpgradesPurchased)
	prometheus.MustRegister(AchievementsCompleted)
}
