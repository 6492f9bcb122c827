package metrics

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "marketfox"

var (
	shippingEstimates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shipping_estimates_total",
		Help:      "Shipping groups priced, by where the winning rule came from.",
	}, []string{"source"})

	uploadDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upload_decisions_total",
		Help:      "Subscription upload checks by outcome.",
	}, []string{"allowed"})

	normalizationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_normalization_failures_total",
		Help:      "Product payloads rejected by pricing rules.",
	})
)

// ShippingEstimate counts one priced vendor group. source is vendor, global or default.
func ShippingEstimate(source string) {
	shippingEstimates.WithLabelValues(source).Inc()
}

func UploadDecision(allowed bool) {
	uploadDecisions.WithLabelValues(strconv.FormatBool(allowed)).Inc()
}

func NormalizationFailure() {
	normalizationFailures.Inc()
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
