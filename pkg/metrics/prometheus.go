package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	ShiftsOpened     prometheus.Counter
	ShiftsClosed     prometheus.Counter
	ShiftsValidated  prometheus.Counter
	VehicleChanges   prometheus.Counter
	TripsLogged      prometheus.Counter
	ExpensesLogged   prometheus.Counter
	ActiveShifts     prometheus.Gauge
	FleetRevenue     prometheus.Gauge
	RefreshTime      prometheus.Histogram
	EventsDispatched *prometheus.CounterVec
	ErrorsCount      *prometheus.CounterVec
}

// NewMetrics creates the service metrics on reg (prometheus.DefaultRegisterer in production)
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ShiftsOpened: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shifts_opened_total",
			Help:      "The total number of opened shifts",
		}),
		ShiftsClosed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shifts_closed_total",
			Help:      "The total number of closed shifts",
		}),
		ShiftsValidated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "shifts_validated_total",
			Help:      "The total number of validated shifts",
		}),
		VehicleChanges: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vehicle_changes_total",
			Help:      "The total number of vehicle reassignments on open shifts",
		}),
		TripsLogged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trips_logged_total",
			Help:      "The total number of started trips",
		}),
		ExpensesLogged: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expenses_logged_total",
			Help:      "The total number of logged expenses",
		}),
		ActiveShifts: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_shifts",
			Help:      "Number of unvalidated shifts in the oversight projection",
		}),
		FleetRevenue: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fleet_revenue",
			Help:      "Revenue collected across unvalidated shifts",
		}),
		RefreshTime: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "oversight_refresh_seconds",
			Help:      "Time taken to re-fetch the oversight projection",
			Buckets:   prometheus.DefBuckets,
		}),
		EventsDispatched: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_events_total",
			Help:      "The total number of dispatched change events",
		}, []string{"entity", "event_type"}),
		ErrorsCount: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
