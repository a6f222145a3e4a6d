package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrThemeName     = "theme.name"
	AttrThemeCount    = "theme.count"
	AttrDefaultTheme  = "theme.default"
	AttrFingerprint   = "build.fingerprint"
	AttrCacheHit      = "build.cache_hit"
	AttrOutputPath    = "build.output_path"
	AttrOutputBytes   = "build.output_bytes"
	AttrPropertyCount = "css.property_count"
	AttrConfigPath    = "config.path"

	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanBuild       = "build"
	SpanLoadConfig  = "build.load_config"
	SpanRegistry    = "build.registry"
	SpanRender      = "build.render"
	SpanExtension   = "build.extension"
	SpanWriteOutput = "build.write_output"
	SpanCheck       = "build.check"
)

// Event names.
const (
	EventCacheHit    = "cache.hit"
	EventCacheMiss   = "cache.miss"
	EventPresetAdded = "preset.added"
)

// Start opens a span on tracer.
func Start(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
