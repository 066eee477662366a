package telemetry

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/corelord/corelord/internal/config"
)

// LogBridge forwards logrus entries to an OTLP log collector. Entries keep
// going to the standard logrus output; the bridge only adds export.
type LogBridge struct {
	provider *sdklog.LoggerProvider
	logger   otellog.Logger
}

// SetupLogBridge creates an OTLP log exporter and attaches a hook to the
// given logrus logger. Returns nil without error when telemetry is disabled
// or no endpoint is configured.
func SetupLogBridge(ctx context.Context, cfg *config.TelemetryConfig, environment string, log *logrus.Logger) (*LogBridge, error) {
	if !cfg.Enabled || cfg.OTLPEndpoint == "" {
		return nil, nil
	}

	exporter, err := otlploghttp.New(ctx,
		otlploghttp.WithEndpoint(cfg.OTLPEndpoint),
		otlploghttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
	}

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = ServiceName
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)

	bridge := &LogBridge{
		provider: provider,
		logger:   provider.Logger(serviceName),
	}
	log.AddHook(bridge)
	return bridge, nil
}

// Levels implements logrus.Hook.
func (b *LogBridge) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook by emitting the entry as an OTLP log record.
func (b *LogBridge) Fire(entry *logrus.Entry) error {
	record := otellog.Record{}
	record.SetTimestamp(entry.Time)
	record.SetSeverity(logrusLevelToSeverity(entry.Level))
	record.SetSeverityText(entry.Level.String())
	record.SetBody(otellog.StringValue(entry.Message))

	attrs := make([]otellog.KeyValue, 0, len(entry.Data))
	for key, value := range entry.Data {
		attrs = append(attrs, logValue(key, value))
	}
	record.AddAttributes(attrs...)

	ctx := entry.Context
	if ctx == nil {
		ctx = context.Background()
	}
	b.logger.Emit(ctx, record)
	return nil
}

// Shutdown flushes buffered log records.
func (b *LogBridge) Shutdown(ctx context.Context) error {
	if b == nil || b.provider == nil {
		return nil
	}
	return b.provider.Shutdown(ctx)
}

func logValue(key string, value interface{}) otellog.KeyValue {
	switch v := value.(type) {
	case string:
		return otellog.String(key, v)
	case bool:
		return otellog.Bool(key, v)
	case int:
		return otellog.Int(key, v)
	case int64:
		return otellog.Int64(key, v)
	case float64:
		return otellog.Float64(key, v)
	case error:
		return otellog.String(key, v.Error())
	default:
		return otellog.String(key, fmt.Sprintf("%v", v))
	}
}

func logrusLevelToSeverity(level logrus.Level) otellog.Severity {
	switch level {
	case logrus.TraceLevel:
		return otellog.SeverityTrace
	case logrus.DebugLevel:
		return otellog.SeverityDebug
	case logrus.InfoLevel:
		return otellog.SeverityInfo
	case logrus.WarnLevel:
		return otellog.SeverityWarn
	case logrus.ErrorLevel:
		return otellog.SeverityError
	case logrus.FatalLevel:
		return otellog.SeverityFatal
	case logrus.PanicLevel:
		return otellog.SeverityFatal2
	default:
		return otellog.SeverityInfo
	}
}
