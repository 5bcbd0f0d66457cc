package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas de dominio. Viven en un paquete aparte para que predict, verify
// y session no dependan del paquete http.

var (
	PredictLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "predict_request_duration_seconds",
		Help:    "Latencia de las llamadas al motor de predicción",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	PredictResults = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "predict_results_total",
		Help: "Resultados de predicción por tipo (ok, bad_input, forbidden, unprocessable, remote_failure, malformed)",
	}, []string{"result"})

	VerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "verifications_total",
		Help: "Uploads procesados por status de salida",
	}, []string{"status"})

	RevocationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "session_revocations_total",
		Help: "Tokens revocados (logout / reset)",
	})
)

// RegisterDomain registra las métricas de dominio en reg (o el default si nil).
func RegisterDomain(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{PredictLatency, PredictResults, VerificationsTotal, RevocationsTotal} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
