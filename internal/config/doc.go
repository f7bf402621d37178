// Package config holds paramscan's crawl configuration, its defaults and
// validation, and the optional .paramscan YAML file with per-host settings.
package config
