// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var errIncompleteURL = errors.New("a complete http or https URL is required, e.g. http://localhost:8383")

// ParseURL parses raw as the base URL of an HTTP service. what names the URL
// in error messages. The trailing slash and any fragment are removed.
func ParseURL(raw, what string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%s URL: %w", what, err)
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%s URL %q: %w", what, raw, errIncompleteURL)
	}

	u.Path = strings.TrimSuffix(u.Path, "/")
	u.Fragment = ""

	return u, nil
}

// GetQueryParam returns the named query parameter, or the first default when
// it is absent or empty.
func GetQueryParam(r *http.Request, name string, defaultValue ...string) string {
	return orDefault(r.URL.Query().Get(name), defaultValue)
}

// GetQueryInt parses an integer query parameter.
// ok is false when the parameter is absent; err is set when it is malformed.
func GetQueryInt(r *http.Request, name string) (n int, ok bool, err error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, false, nil
	}

	n, err = strconv.Atoi(v)
	if err != nil {
		return 0, true, fmt.Errorf("invalid %s %q: %w", name, v, err)
	}

	return n, true, nil
}

// GetPathVar returns the named wildcard of the matched route pattern.
func GetPathVar(r *http.Request, name string, defaultValue ...string) string {
	return orDefault(r.PathValue(name), defaultValue)
}

func orDefault(v string, defaults []string) string {
	if v == "" && len(defaults) > 0 {
		return defaults[0]
	}

	return v
}
