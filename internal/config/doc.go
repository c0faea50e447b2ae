// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper.
//
// Configuration is loaded from a TOML file in the platform config
// directory, with SWITCHYARD_* environment variables taking precedence.
// All routing tunables live here: the workspace root, the registry tree
// location, supervision timeouts with both long-running keyword lists,
// discovery scan settings, and the failure-notification sink.
package config
