// Package config loads homestead's layered configuration with koanf.
//
// Layers, later wins:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user config file: --config, else the first of
//     $XDG_CONFIG_HOME/homestead/config.{toml,yaml,yml}
//  3. environment variables HOMESTEAD_<SECTION>__<KEY>
//  4. command line flags the user actually set
package config
