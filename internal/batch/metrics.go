package batch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	imagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "voucherscan",
		Subsystem: "batch",
		Name:      "images_processed_total",
		Help:      "Number of images processed, by outcome.",
	}, []string{"status"})

	processingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "voucherscan",
		Subsystem: "batch",
		Name:      "processing_duration_seconds",
		Help:      "Wall time spent per image, preprocessing through validation.",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
	})

	parseConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "voucherscan",
		Subsystem: "batch",
		Name:      "parse_confidence",
		Help:      "Parse-confidence score distribution of successfully parsed vouchers.",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})
)
