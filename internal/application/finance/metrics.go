package finance

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/retailcore/backend/internal/domain/finance"
)

// Instruments resolve through the global provider, so they are no-ops
// until telemetry is configured.
var movementCounter, _ = otel.Meter("github.com/retailcore/backend/internal/application/finance").
	Int64Counter("money.movements",
		metric.WithDescription("Money ledger entries written"),
		metric.WithUnit("{movement}"))

// CountMoneyMovement records a ledger write metric. The trade flows call it
// for the system-owned entries they create inside their transactions.
func CountMoneyMovement(ctx context.Context, m *finance.MoneyMovement) {
	movementCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", string(m.Type)),
		attribute.String("reference_type", string(m.ReferenceType)),
	))
}
