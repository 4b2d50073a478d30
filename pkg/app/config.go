package app

import "encoding/json"

// Config points at the daemon's data directory and its user-driven
// configuration files. Live reload applies to the devices file only; plugin
// changes need a restart.
type Config struct {
	DataDir       string `json:"dataDir"`
	DevicesConfig string `json:"devicesConfig"`
	PluginsConfig string `json:"pluginsConfig"`
}

// PluginsFile is the on-disk plugin list (plugins.yml).
type PluginsFile struct {
	Plugins []PluginConfig `json:"plugins"`
}

// PluginConfig selects a registered plugin type and carries its raw
// configuration payload.
type PluginConfig struct {
	Type   string          `json:"type"`
	Config json.RawMessage `json:"config,omitempty"`
}
