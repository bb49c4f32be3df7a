// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package i18n serves UI translations from a set of Qt Linguist catalogs,
one per locale, loaded once at startup into a [Bundle].

# Quick start

	bundle, err := i18n.Setup(os.DirFS("."), "i18n", i18n.Options{Domain: "cppcheck"})
	if err != nil {
		// bundle is still usable; broken catalogs fall back to source texts.
		log.Warn().Err(err).Msg("Some catalogs failed to load")
	}

	ctx = i18n.WithTag(ctx, language.Serbian)
	bundle.Tr(ctx, "About", "Version %1", version)
	bundle.TrN(ctx, "ResultsView", "Found %n error(s)", n)

Consumers should accept the [Translator] interface rather than *Bundle.

Use the original English UI text as the source; the context is the name of
the dialog or window the string belongs to.

# Locale selection

[Bundle.FromRequest] picks a locale from the lang query parameter, the
tscat_lang cookie and the Accept-Language header, in that order.
The source language is the default match.

# Missing translations

Missing translations return the source text with arguments substituted.
When StrictMissingKeys is enabled, misses are logged once per locale and key
and the returned text is visibly wrapped as "⟦...⟧". Every miss is also
handed to the configured [MissReporter].

# Templates

[Message] values render directly in templ templates:

	@i18n.Message{Context: "StatsDialog", Source: "Statistics"}.Component(t)
*/
package i18n
