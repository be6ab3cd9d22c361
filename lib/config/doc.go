// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides YAML configuration loading for the router
// daemon.
//
// Configuration is loaded from a single file specified by either the
// IMROUTER_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search.
//
// The configuration file supports environment-specific sections
// (development, staging, production) that override base values when
// [Config].Environment matches.
//
// Variable expansion is performed on path fields after loading:
// ${HOME}, ${IMROUTER_ROOT}, and ${VAR:-default} patterns are expanded.
// No other environment variables override config values.
//
// The routing mode (router.multi_user) is read once at startup; the
// daemon never reloads it.
//
// This package depends on no other imrouter packages.
package config
