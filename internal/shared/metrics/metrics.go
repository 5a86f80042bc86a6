// Package metrics registers the Prometheus business metrics. HTTP request
// metrics live in the server middleware; the service layer updates these.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts completed document uploads.
	UploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "documents_uploads_total",
		Help: "Total number of successful document uploads",
	})

	// DownloadsTotal counts document byte downloads (the counted path).
	DownloadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "documents_downloads_total",
		Help: "Total number of successful document downloads",
	})

	// DeletesTotal counts document deletions that removed a record.
	DeletesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "documents_deletes_total",
		Help: "Total number of document deletions",
	})

	// TokensIssued counts signed URLs minted, by kind (access, share, download).
	TokensIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tokens_issued_total",
		Help: "Total number of signed access URLs issued",
	}, []string{"kind"})
)
