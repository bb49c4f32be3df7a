// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package check validates the translations of a catalog the way Qt Linguist
does before a release.

Each Kind is an independent validator. Run applies them to every entry that
is not obsolete and has translated text, and reports one Issue per failing
translation form.
*/
package check
