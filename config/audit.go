// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const logFilePermissions = 0o666

// setupAudit configures the global logger from the Log section.
func (cfg *ServerConfig) setupAudit() {
	zerolog.SetGlobalLevel(cfg.logLevel())

	log.Logger = log.Output(zerolog.MultiLevelWriter(cfg.logWriters()...))
}

func (cfg *ServerConfig) logLevel() zerolog.Level {
	if cfg.Development.InDevelopment {
		return zerolog.DebugLevel
	}

	switch cfg.Log.Level {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func (cfg *ServerConfig) logWriters() []io.Writer {
	if len(cfg.Log.Outputs) == 0 {
		return []io.Writer{cfg.formatWriter(os.Stderr)}
	}

	writers := make([]io.Writer, 0, len(cfg.Log.Outputs))

	for _, output := range cfg.Log.Outputs {
		switch output {
		case "/dev/stdout":
			writers = append(writers, cfg.formatWriter(os.Stdout))
		case "/dev/stderr":
			writers = append(writers, cfg.formatWriter(os.Stderr))
		default:
			file, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermissions) // #nosec:G302,G304
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to open log file %s: %v\n", output, err)

				continue
			}

			writers = append(writers, cfg.formatWriter(file))
		}
	}

	return writers
}

func (cfg *ServerConfig) formatWriter(f *os.File) io.Writer {
	if cfg.Log.Format == FormatJSON {
		return f
	}

	return ConsoleWriter(f)
}

// isTerminal returns true if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ConsoleWriter returns a writer for zerolog that has NoColor:isTerminal(f).
func ConsoleWriter(f *os.File) io.Writer {
	noColor := !isTerminal(f)

	w := zerolog.ConsoleWriter{Out: f, NoColor: noColor, TimeFormat: time.DateTime}

	if !noColor {
		w.FormatPrepare = func(m map[string]any) error {
			// pretty print request logs
			if sys, ok := m["sys"]; ok && sys == "http" {
				m["message"] = fmt.Sprintf("[%s] %s %-5s %s", m["kind"], m["status_code"], m["method"], m["url"])
				delete(m, "sys")
				delete(m, "kind")
				delete(m, "method")
				delete(m, "status_code")
				delete(m, "url")
				delete(m, "request_id")
			}

			return nil
		}
	}

	return w
}
