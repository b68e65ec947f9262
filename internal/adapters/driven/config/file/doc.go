// Package file provides file-based implementations of driven port interfaces.
//
// ConfigStore keeps application settings in a TOML file, by default
// ~/.cloudcluster/config.toml. Keys are addressed in dot notation
// ("store.uri") and written back as nested tables.
package file
