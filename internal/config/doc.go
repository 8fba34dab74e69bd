// Package config loads switchboard configuration from an optional HCL file
// and the APP_CONFIG environment variable.
package config
