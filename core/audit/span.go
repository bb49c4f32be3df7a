// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package audit

import (
	"context"
	"encoding/base64"
	"fmt"
	"runtime/trace"
	"strconv"
	"time"

	servertiming "github.com/mitchellh/go-server-timing"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Span represents a unit of work in flight: an incoming HTTP request or an
// operation performed while serving one.
type Span struct {
	// only these fields are set automatically
	task     *trace.Task
	start    time.Time
	duration time.Duration
	metric   *servertiming.Metric

	Kind       SpanKind
	RequestID  string
	Method     string
	URL        string
	Locale     string
	StatusCode int
	Size       int
	Error      error
}

// SpanKind describes what a span measures.
type SpanKind string

const (
	// KindRequest is an incoming HTTP request.
	KindRequest SpanKind = "request"
	// KindLookup is a catalog lookup.
	KindLookup SpanKind = "lookup"
	// KindStore is a write to or read from the miss store.
	KindStore SpanKind = "store"
)

// ServerTimingName returns the metric name used in the Server-Timing header:
// kind, method and the base64 (unpadded) URL joined by '$'.
func (span Span) ServerTimingName() string {
	return string(span.Kind) + "$" + span.Method + "$" + base64.RawURLEncoding.EncodeToString([]byte(span.URL))
}

// Begin starts timing the span and registers a server-timing metric when ctx carries a timing header.
func (span *Span) Begin(ctx context.Context) context.Context {
	span.start = time.Now()

	ctx, span.task = trace.NewTask(ctx, "tscat."+string(span.Kind))
	if timing := servertiming.FromContext(ctx); timing != nil {
		span.metric = timing.NewMetric(span.ServerTimingName())
		span.metric.Extra = make(map[string]string)
		span.metric.Extra["start"] = strconv.FormatFloat(float64(span.start.UnixNano())/float64(time.Millisecond), 'f', -1, 64)
	}

	return ctx
}

// End stops timing the span. Calling it again has no effect.
func (span *Span) End() {
	if span.task != nil {
		span.duration = time.Since(span.start)
		span.task.End()

		if span.metric != nil {
			span.metric.Duration = span.duration
		}

		span.task = nil
	}
}

// Duration returns the time between Begin and End.
func (span Span) Duration() time.Duration {
	return span.duration
}

// Log writes the span at debug level, or at warn level when it carries an error.
func (span Span) Log() {
	var event *zerolog.Event
	if span.Error != nil {
		event = log.Warn()
	} else {
		event = log.Debug()
	}

	event.Str("sys", "http")
	event.Str("kind", string(span.Kind))
	event.Str("method", span.Method)
	event.Str("url", span.URL)
	event.Int("status_code", span.StatusCode)
	event.Str("len", humanizeSize(span.Size))
	event.Dur("dur", span.duration)
	event.Str("request_id", span.RequestID)

	if span.Locale != "" {
		event.Str("locale", span.Locale)
	}

	if span.Error != nil {
		event.Err(span.Error)
	}

	event.Send()
}

const (
	bytesInKB = 1024
	bytesInMB = bytesInKB * bytesInKB
	bytesInGB = bytesInMB * bytesInKB
)

func humanizeSize(x int) string {
	if x < bytesInKB {
		return strconv.Itoa(x)
	}

	if x < bytesInMB {
		return fmt.Sprintf("%.2fK", float64(x)/bytesInKB)
	}

	if x < bytesInGB {
		return fmt.Sprintf("%.2fM", float64(x)/bytesInMB)
	}

	return fmt.Sprintf("%.2fG", float64(x)/bytesInGB)
}
