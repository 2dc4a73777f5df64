package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics exposes application-level instruments.
type Metrics struct {
	registrations       metric.Int64Counter
	payments            metric.Int64Counter
	refunds             metric.Int64Counter
	creditsIssued       metric.Int64Counter
	creditsRedeemed     metric.Int64Counter
	transfers           metric.Int64Counter
	reservationsExpired metric.Int64Counter
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New configures the domain metrics instruments.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "rosterly"
	}
	meter := provider.Meter(name)

	registrations, err := meter.Int64Counter("rosterly_registrations_total")
	if err != nil {
		return nil, err
	}
	payments, err := meter.Int64Counter("rosterly_payments_total")
	if err != nil {
		return nil, err
	}
	refunds, err := meter.Int64Counter("rosterly_refunds_total")
	if err != nil {
		return nil, err
	}
	creditsIssued, err := meter.Int64Counter("rosterly_credits_issued_total")
	if err != nil {
		return nil, err
	}
	creditsRedeemed, err := meter.Int64Counter("rosterly_credits_redeemed_total")
	if err != nil {
		return nil, err
	}
	transfers, err := meter.Int64Counter("rosterly_payment_transfers_total")
	if err != nil {
		return nil, err
	}
	reservationsExpired, err := meter.Int64Counter("rosterly_reservations_expired_total")
	if err != nil {
		return nil, err
	}

	return &Metrics{
		registrations:       registrations,
		payments:            payments,
		refunds:             refunds,
		creditsIssued:       creditsIssued,
		creditsRedeemed:     creditsRedeemed,
		transfers:           transfers,
		reservationsExpired: reservationsExpired,
	}, nil
}

// RecordRegistration increments registration counts per outcome status.
func (m *Metrics) RecordRegistration(ctx context.Context, status string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("status", strings.TrimSpace(status)))
	m.registrations.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordPayment increments payment counts per type and method.
func (m *Metrics) RecordPayment(ctx context.Context, paymentType, method string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(
		attribute.String("payment_type", strings.TrimSpace(paymentType)),
		attribute.String("payment_method", strings.TrimSpace(method)),
	)
	m.payments.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordRefund increments refund counts per method.
func (m *Metrics) RecordRefund(ctx context.Context, method string) {
	if m == nil {
		return
	}
	attrs := FilterAttributes(attribute.String("payment_method", strings.TrimSpace(method)))
	m.refunds.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordCreditIssued increments issued credit counts.
func (m *Metrics) RecordCreditIssued(ctx context.Context) {
	if m == nil {
		return
	}
	m.creditsIssued.Add(ctx, 1)
}

// RecordCreditRedeemed increments redeemed credit counts.
func (m *Metrics) RecordCreditRedeemed(ctx context.Context) {
	if m == nil {
		return
	}
	m.creditsRedeemed.Add(ctx, 1)
}

// RecordTransfer increments payment transfer counts.
func (m *Metrics) RecordTransfer(ctx context.Context) {
	if m == nil {
		return
	}
	m.transfers.Add(ctx, 1)
}

// RecordReservationsExpired adds expired reservation counts from a sweep.
func (m *Metrics) RecordReservationsExpired(ctx context.Context, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.reservationsExpired.Add(ctx, int64(count))
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"status":         {},
	"payment_type":   {},
	"payment_method": {},
	"endpoint":       {},
	"status_code":    {},
	"reason":         {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
