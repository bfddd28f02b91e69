package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var recognizeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "kakeibo",
	Subsystem: "ocr",
	Name:      "recognize_duration_seconds",
	Help:      "Time spent decoding and recognizing one image, by engine and outcome.",
	Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
}, []string{"engine", "outcome"})
