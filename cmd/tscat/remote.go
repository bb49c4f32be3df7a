// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"codeberg.org/pixivfe/tscat/server/utils"
)

const (
	defaultServer = "http://localhost:8383"
	remoteTimeout = 10 * time.Second
	maxBodySize   = 1 << 20
)

var errRemote = errors.New("server returned an error")

func runRemote(ctx context.Context, e *env, fs *flag.FlagSet, args []string) error {
	server := fs.String("server", defaultServer, "base URL of the tscat server")
	lang := fs.String("lang", "", "locale to translate into (default: the server's choice)")
	n := fs.Int("n", 0, "count for numerus messages")
	verbose := fs.Bool("v", false, "also print the resolved locale and status")

	if err := parse(fs, args, 2, -1); err != nil {
		return err
	}

	base, err := utils.ParseURL(*server, "Server")
	if err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}

	query := url.Values{
		"context": {fs.Arg(0)},
		"source":  {fs.Arg(1)},
	}

	if *lang != "" {
		query.Set("lang", *lang)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "n" {
			query.Set("n", strconv.Itoa(*n))
		}
	})

	for _, a := range fs.Args()[2:] {
		query.Add("arg", a)
	}

	endpoint := base.JoinPath("api", "v1", "translate")
	endpoint.RawQuery = query.Encode()

	body, err := fetch(ctx, endpoint.String())
	if err != nil {
		return err
	}

	result := gjson.ParseBytes(body)

	fmt.Fprintln(e.stdout, result.Get("text").String())

	if *verbose {
		fmt.Fprintf(e.stderr, "lang=%s status=%s translated=%t\n",
			result.Get("lang").String(), result.Get("status").String(), result.Get("translated").Bool())
	}

	return nil
}

// fetch performs a GET request and returns the body of a successful JSON response.
func fetch(ctx context.Context, link string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", link, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid JSON (status %d)", errRemote, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		msg := gjson.GetBytes(body, "error").String()
		if id := gjson.GetBytes(body, "request_id").String(); id != "" {
			msg += " (request " + id + ")"
		}

		return nil, fmt.Errorf("%w: %d: %s", errRemote, resp.StatusCode, msg)
	}

	return body, nil
}
