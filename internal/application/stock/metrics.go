package stock

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/retailcore/backend/internal/domain/inventory"
)

// Instruments resolve through the global provider, so they are no-ops
// until telemetry is configured.
var movementCounter, _ = otel.Meter("github.com/retailcore/backend/internal/application/stock").
	Int64Counter("stock.movements",
		metric.WithDescription("Stock ledger movements written"),
		metric.WithUnit("{movement}"))

func countMovement(ctx context.Context, movementType inventory.MovementType, referenceType inventory.ReferenceType) {
	movementCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("type", string(movementType)),
		attribute.String("reference_type", string(referenceType)),
	))
}
