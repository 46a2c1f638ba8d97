// Package config loads the marketplace server configuration from YAML.
//
// ${VAR} references are expanded from the environment before parsing, so
// secrets such as database passwords can stay out of the file.
package config
