package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/2x3systems/govasc/libvasc/catalog"
	"github.com/2x3systems/govasc/libvasc/formats"
)

// TracerName names the tracer pipeline spans are started on.
const TracerName = "github.com/2x3systems/govasc/libvasc/pipeline"

// Context carries everything a pipeline shares with its host: the log sink, the metrics
// registry, the tracer, the format registry and an optional catalog.
// Nothing in the pipeline reaches for process-wide state beyond what is held here.
type Context struct {
	Log      Logger
	Registry *prometheus.Registry
	Tracer   trace.Tracer
	Formats  *formats.Registry
	Catalog  *catalog.Catalog // nil disables recording and SkipUnchanged

	metrics *metrics
}

// NewContext returns a Context with a fresh metrics registry, the default formats and the
// globally configured otel tracer provider. A nil log selects NopLogger.
func NewContext(log Logger) *Context {
	if log == nil {
		log = NopLogger{}
	}
	reg := prometheus.NewRegistry()
	return &Context{
		Log:      log,
		Registry: reg,
		Tracer:   otel.Tracer(TracerName),
		Formats:  formats.Default(),
		metrics:  newMetrics(reg),
	}
}
