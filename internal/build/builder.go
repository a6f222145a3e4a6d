package build

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/themer/internal/cachemanager"
	"github.com/zjrosen/themer/internal/log"
	"github.com/zjrosen/themer/internal/plugin"
	"github.com/zjrosen/themer/internal/theme"
	"github.com/zjrosen/themer/internal/tracing"
)

// Header starts every generated stylesheet.
const Header = "/* Generated by themer. Do not edit. */\n\n"

const resultTTL = 30 * time.Minute

// Result is the output of one build.
type Result struct {
	Fingerprint string
	CSS         string
	// Extension is the theme.extend object as indented JSON.
	Extension []byte
	Variants  []plugin.Variant
}

// Builder renders registry snapshots. Results are cached by fingerprint,
// so rebuilding an unchanged registry in watch mode is free.
type Builder struct {
	tracer trace.Tracer
	cache  *cachemanager.ReadThroughCache[string, Result, theme.State]
}

// NewBuilder returns a Builder. tracer may be a no-op tracer.
func NewBuilder(tracer trace.Tracer) *Builder {
	b := &Builder{tracer: tracer}
	b.cache = cachemanager.NewReadThroughCache(
		cachemanager.NewInMemoryCacheManager[string, Result]("builds", resultTTL, cachemanager.DefaultCleanupInterval),
		Fingerprint,
		b.render,
		cachemanager.WithTTL(resultTTL),
		cachemanager.WithRefreshOnHit(),
	)
	return b
}

// Build renders state, reusing a cached result when state is unchanged.
func (b *Builder) Build(ctx context.Context, state theme.State) (res Result, err error) {
	ctx, span := tracing.Start(ctx, b.tracer, tracing.SpanBuild, attribute.Int(tracing.AttrThemeCount, len(state.Themes)+1))
	defer func() { tracing.End(span, err) }()

	res, lookup, err := b.cache.Get(ctx, state)
	if err != nil {
		return Result{}, err
	}
	span.SetAttributes(
		attribute.String(tracing.AttrFingerprint, lookup.Key),
		attribute.Bool(tracing.AttrCacheHit, lookup.Hit),
	)
	return res, nil
}

// Invalidate drops every cached result.
func (b *Builder) Invalidate(ctx context.Context) {
	b.cache.Invalidate(ctx)
}

// Renders reports how many times a stylesheet was actually rendered.
// Builds served from the cache, or sharing a concurrent render, do not
// count.
func (b *Builder) Renders() int64 {
	return b.cache.Stats(context.Background()).Loads
}

func (b *Builder) render(ctx context.Context, fp string, state theme.State) (Result, error) {
	trace.SpanFromContext(ctx).AddEvent(tracing.EventCacheMiss)
	opts := plugin.OptionsFromState(state)
	collector := plugin.NewCollector()

	_, renderSpan := tracing.Start(ctx, b.tracer, tracing.SpanRender)
	plugin.Apply(collector, opts)
	sheet := Header + collector.Stylesheet().String()
	renderSpan.SetAttributes(attribute.Int(tracing.AttrOutputBytes, len(sheet)))
	tracing.End(renderSpan, nil)

	_, extSpan := tracing.Start(ctx, b.tracer, tracing.SpanExtension)
	ext, err := json.Marshal(plugin.Extension(collector, opts))
	if err == nil {
		var buf bytes.Buffer
		if err = json.Indent(&buf, ext, "", "  "); err == nil {
			buf.WriteByte('\n')
			ext = buf.Bytes()
		}
	}
	tracing.End(extSpan, err)
	if err != nil {
		return Result{}, fmt.Errorf("encoding extension: %w", err)
	}

	log.Debug(log.CatBuild, "Rendered stylesheet", "fingerprint", fp[:12], "bytes", len(sheet))
	return Result{
		Fingerprint: fp,
		CSS:         sheet,
		Extension:   ext,
		Variants:    collector.Variants(),
	}, nil
}

// Fingerprint identifies the rendered content of state.
func Fingerprint(state theme.State) (string, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("fingerprinting state: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
