// Package metrics exports payroll activity as Prometheus metrics.
//
// Recorder implements payroll.Observer; the API server also counts stateless
// calculation requests through it. All collectors register on the
// Registerer given to New, so tests use a private prometheus.NewRegistry().
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/warp/payroll-engine/payroll"
)

const namespace = "payroll"

type Recorder struct {
	generated    *prometheus.CounterVec
	failed       *prometheus.CounterVec
	duration     prometheus.Histogram
	netPay       *prometheus.HistogramVec
	calculations *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		generated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payslips",
			Name:      "generated_total",
			Help:      "Total payslips generated, by policy.",
		}, []string{"policy"}),
		failed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payslips",
			Name:      "failed_total",
			Help:      "Total failed payslip generations, by reason (duplicate, not_found, invalid, internal).",
		}, []string{"reason"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "payslips",
			Name:      "generation_seconds",
			Help:      "Time to compute and persist one payslip.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		netPay: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "payslips",
			Name:      "net_pay",
			Help:      "Net pay per generated payslip, in major currency units.",
			Buckets:   []float64{0, 10000, 20000, 30000, 50000, 75000, 100000, 200000, 500000},
		}, []string{"currency"}),
		calculations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "calculator",
			Name:      "requests_total",
			Help:      "Total stateless calculation requests, by operation.",
		}, []string{"operation"}),
	}
}

// PayslipGenerated implements payroll.Observer.
func (r *Recorder) PayslipGenerated(p *payroll.Payslip, elapsed time.Duration) {
	r.generated.WithLabelValues(string(p.PolicyID)).Inc()
	r.duration.Observe(elapsed.Seconds())
	net := p.Financials.Net
	r.netPay.WithLabelValues(string(net.Currency)).Observe(net.Amount.InexactFloat64())
}

// PayslipFailed implements payroll.Observer.
func (r *Recorder) PayslipFailed(reason string) {
	r.failed.WithLabelValues(reason).Inc()
}

// Calculation counts one stateless calculation (social_security, prorate, tax, net).
func (r *Recorder) Calculation(operation string) {
	r.calculations.WithLabelValues(operation).Inc()
}

var _ payroll.Observer = (*Recorder)(nil)
