// Package file persists configuration under the coursekit config
// directory.
//
// Settings live in config.toml as nested tables ([canvas], [extract],
// [download], [relay]) and are exposed to the core as flat dotted keys.
// A .env file beside it, or in the working directory, can supply
// environment overrides such as COURSEKIT_TOKEN.
package file
