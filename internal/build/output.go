package build

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/themer/internal/config"
	"github.com/zjrosen/themer/internal/log"
	"github.com/zjrosen/themer/internal/paths"
	"github.com/zjrosen/themer/internal/tracing"
)

// Output is one generated file.
type Output struct {
	Path    string
	Content []byte
}

// Outputs pairs res with the files named in out. Relative paths resolve
// against the config file's directory.
func Outputs(res Result, out config.OutputConfig, configPath string) []Output {
	return []Output{
		{Path: paths.RelativeTo(configPath, out.CSS), Content: []byte(res.CSS)},
		{Path: paths.RelativeTo(configPath, out.Extension), Content: res.Extension},
	}
}

// Write writes every output whose content changed and returns the paths
// written.
func Write(ctx context.Context, tracer trace.Tracer, outputs []Output) ([]string, error) {
	var written []string
	for _, o := range outputs {
		changed, err := writeOne(ctx, tracer, o)
		if err != nil {
			return written, err
		}
		if changed {
			written = append(written, o.Path)
		}
	}
	return written, nil
}

func writeOne(ctx context.Context, tracer trace.Tracer, o Output) (changed bool, err error) {
	_, span := tracing.Start(ctx, tracer, tracing.SpanWriteOutput,
		attribute.String(tracing.AttrOutputPath, o.Path),
		attribute.Int(tracing.AttrOutputBytes, len(o.Content)))
	defer func() { tracing.End(span, err) }()

	current, err := os.ReadFile(o.Path)
	if err == nil && bytes.Equal(current, o.Content) {
		return false, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("reading %s: %w", o.Path, err)
	}
	if err := os.MkdirAll(filepath.Dir(o.Path), 0o750); err != nil {
		return false, fmt.Errorf("creating output directory: %w", err)
	}
	if err := os.WriteFile(o.Path, o.Content, 0o644); err != nil { //nolint:gosec // generated assets are world-readable
		return false, fmt.Errorf("writing %s: %w", o.Path, err)
	}
	log.Info(log.CatBuild, "Wrote output", "path", o.Path, "bytes", len(o.Content))
	return true, nil
}

// Stale is an output whose file differs from the build.
type Stale struct {
	Path string
	Diff string
}

// Check compares outputs with the files on disk without writing them.
func Check(ctx context.Context, tracer trace.Tracer, outputs []Output) (stale []Stale, err error) {
	_, span := tracing.Start(ctx, tracer, tracing.SpanCheck)
	defer func() { tracing.End(span, err) }()

	for _, o := range outputs {
		current, err := os.ReadFile(o.Path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", o.Path, err)
		}
		if bytes.Equal(current, o.Content) {
			continue
		}
		stale = append(stale, Stale{Path: o.Path, Diff: LineDiff(string(current), string(o.Content))})
	}
	return stale, nil
}

// LineDiff renders a line-oriented diff of old and updated, prefixing
// removed lines with "-", added lines with "+" and unchanged lines with a
// space. Runs of more than two unchanged lines are elided.
func LineDiff(old, updated string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(old, updated)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	for i, d := range diffs {
		if d.Text == "" {
			continue
		}
		body := strings.Split(strings.TrimSuffix(d.Text, "\n"), "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writeLines(&sb, "-", body)
		case diffmatchpatch.DiffInsert:
			writeLines(&sb, "+", body)
		case diffmatchpatch.DiffEqual:
			writeContext(&sb, body, i > 0, i < len(diffs)-1)
		}
	}
	return sb.String()
}

const contextLines = 2

func writeContext(sb *strings.Builder, body []string, after, before bool) {
	if len(body) <= 2*contextLines {
		writeLines(sb, " ", body)
		return
	}
	if after {
		writeLines(sb, " ", body[:contextLines])
	}
	sb.WriteString("@@\n")
	if before {
		writeLines(sb, " ", body[len(body)-contextLines:])
	}
}

func writeLines(sb *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		sb.WriteString(prefix)
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
}
