package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// PlannerTracer creates spans for the planner pipeline.
type PlannerTracer struct {
	tracer trace.Tracer
}

// NewPlannerTracer creates a tracer for planner operations.
func NewPlannerTracer() *PlannerTracer {
	return &PlannerTracer{tracer: GetPlannerTracer()}
}

// TracePlanBuild starts a span covering a full plan build for a user.
func (pt *PlannerTracer) TracePlanBuild(ctx context.Context, userID string, limit int) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "planner.build",
		trace.WithAttributes(
			attribute.String("planner.user_id", userID),
			attribute.Int("planner.limit", limit),
		),
	)
}

// RecordPlanMetrics records the outcome of a plan build on its span.
func (pt *PlannerTracer) RecordPlanMetrics(span trace.Span, sessionsRanked int) {
	span.SetAttributes(attribute.Int("planner.sessions_ranked", sessionsRanked))
}

// TraceForecastFetch starts a span for a single break forecast fetch.
func (pt *PlannerTracer) TraceForecastFetch(ctx context.Context, breakID int) (context.Context, trace.Span) {
	return pt.tracer.Start(ctx, "planner.forecast_fetch",
		trace.WithAttributes(attribute.Int("break.id", breakID)),
	)
}

// RecordFetchResult records a fetch outcome, marking the span failed on error.
func (pt *PlannerTracer) RecordFetchResult(span trace.Span, samples int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "forecast fetch failed")
		return
	}
	span.SetAttributes(attribute.Int("forecast.samples", samples))
}

// FeedTracer creates spans for marine feed operations.
type FeedTracer struct {
	tracer trace.Tracer
}

// NewFeedTracer creates a tracer for marine feed operations.
func NewFeedTracer() *FeedTracer {
	return &FeedTracer{tracer: GetFeedTracer()}
}

// TraceCatalogRefresh starts a span covering a break catalog reload.
func (ft *FeedTracer) TraceCatalogRefresh(ctx context.Context) (context.Context, trace.Span) {
	return ft.tracer.Start(ctx, "marine.catalog_refresh")
}

// RecordCatalogResult records the size of a reloaded catalog.
func (ft *FeedTracer) RecordCatalogResult(span trace.Span, breakCount int, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "catalog refresh failed")
		return
	}
	span.SetAttributes(attribute.Int("catalog.breaks", breakCount))
}
