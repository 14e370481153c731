// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage
//
// The package also maps the raw key/value configuration onto typed
// application settings, applying defaults for anything unset.
package file
