package client

import (
	"fmt"
	"io"
	"time"

	"github.com/ValentinKolb/dJSON/rpc/common"
	"github.com/VictoriaMetrics/metrics"
)

// --------------------------------------------------------------------------
// Client Metrics
// --------------------------------------------------------------------------

// observeRequest counts one issued command.
func observeRequest(name common.CommandName) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`djson_client_requests_total{command=%q}`, name)).Inc()
}

// observeError counts one failed command (transport or decode).
func observeError(name common.CommandName) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`djson_client_errors_total{command=%q}`, name)).Inc()
}

// observeDuration records the full round trip of one command including the
// response transform.
func observeDuration(name common.CommandName, start time.Time) {
	metrics.GetOrCreateHistogram(fmt.Sprintf(`djson_client_request_duration_seconds{command=%q}`, name)).UpdateDuration(start)
}

// observeBatch records the size and duration of one flushed batch.
func observeBatch(size int, start time.Time) {
	metrics.GetOrCreateHistogram(`djson_client_batch_size`).Update(float64(size))
	metrics.GetOrCreateHistogram(`djson_client_batch_duration_seconds`).UpdateDuration(start)
}

// WriteMetrics writes all collected client metrics in Prometheus text
// format, including process metrics.
func WriteMetrics(w io.Writer) {
	metrics.WritePrometheus(w, true)
}
