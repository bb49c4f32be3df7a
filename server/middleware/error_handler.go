// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"errors"
	"maps"
	"net/http"
	"net/http/httptest"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"

	"codeberg.org/pixivfe/tscat/config"
	"codeberg.org/pixivfe/tscat/core/audit"
	"codeberg.org/pixivfe/tscat/i18n"
	"codeberg.org/pixivfe/tscat/server/request_context"
	"codeberg.org/pixivfe/tscat/server/utils"
)

// CatchError wraps HTTP handlers that return an error, providing centralized error handling,
// response buffering, and request logging.
//
// The handler's output is buffered. After it returns:
//   - If it returned an error without writing an error status, the buffer is
//     discarded and a JSON error is written instead. The status comes from a
//     *utils.StatusError in the chain and defaults to 500. The message of an
//     *i18n.UserError is shown as is; 5xx errors show only the status text.
//   - If it wrote a 404 without a body, a JSON 404 error is written.
//   - Otherwise the buffered response is written to the client.
//
// Finally, it logs the completed request via the audit package.
func CatchError(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := request_context.FromRequest(r)

		span := audit.Span{
			Kind:      audit.KindRequest,
			RequestID: ctx.RequestID,
			Method:    r.Method,
			URL:       r.URL.String(),
		}

		if ctx.Locale != language.Und {
			span.Locale = ctx.Locale.String()
		}

		_ = span.Begin(r.Context())

		recorder := httptest.NewRecorder()

		err := handler(recorder, r)

		ctx.RequestError = err

		span.End()

		switch {
		case err != nil && recorder.Code < http.StatusBadRequest:
			ctx.StatusCode = statusOf(err)

			utils.WriteError(w, ctx.StatusCode, messageOf(err, ctx.StatusCode), ctx.RequestID)

		case recorder.Code == http.StatusNotFound && recorder.Body.Len() == 0:
			ctx.StatusCode = http.StatusNotFound

			utils.WriteError(w, ctx.StatusCode, "", ctx.RequestID)

		default:
			ctx.StatusCode = recorder.Code
			span.Size = recorder.Body.Len()

			maps.Copy(w.Header(), recorder.Header())
			w.WriteHeader(recorder.Code)

			if _, err := recorder.Body.WriteTo(w); err != nil {
				log.Err(err).Msg("Failed to write response body")
			}
		}

		span.StatusCode = ctx.StatusCode
		span.Error = logErrorOf(ctx.RequestError)

		if !config.Global.ShouldSkipServerLogging(r.URL.Path) {
			span.Log()
		}
	}
}

func statusOf(err error) int {
	var statusErr *utils.StatusError
	if errors.As(err, &statusErr) && statusErr.Code >= http.StatusBadRequest {
		return statusErr.Code
	}

	return http.StatusInternalServerError
}

func messageOf(err error, status int) string {
	var userErr *i18n.UserError
	if errors.As(err, &userErr) {
		return userErr.Error()
	}

	if status >= http.StatusInternalServerError {
		return http.StatusText(status)
	}

	return err.Error()
}

// logErrorOf returns err with user-facing messages in the source language,
// so that logs don't depend on the locale of the request.
func logErrorOf(err error) error {
	var userErr *i18n.UserError
	if errors.As(err, &userErr) {
		return errors.New(userErr.Untranslated())
	}

	return err
}
