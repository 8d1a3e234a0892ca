package state

import (
	"time"
)

// WatchCfg describes one external simulation process whose output the hub
// captures and scans for routing tables.
type WatchCfg struct {
	Name    string   `yaml:"name"`
	Command []string `yaml:"command"`
	Dir     string   `yaml:"dir,omitempty"`
}

// HubCfg is the hub's node-level configuration.
type HubCfg struct {
	Id        string `yaml:"id,omitempty"`         // log prefix, defaults to "hub"
	Listen    string `yaml:"listen"`               // http/websocket bind address
	StaticDir string `yaml:"static_dir,omitempty"` // companion frontend bundle, optional
	LogPath   string `yaml:"log_path,omitempty"`   // if not empty, the hub will also write to this file

	LivenessWindow time.Duration  `yaml:"liveness_window,omitempty"`
	TopoPush       time.Duration  `yaml:"topo_push,omitempty"`
	QueueReapTTL   *time.Duration `yaml:"queue_reap_ttl,omitempty"`

	Watch []WatchCfg `yaml:"watch,omitempty"`
}

func DefaultHubCfg() HubCfg {
	return HubCfg{
		Id:     "hub",
		Listen: DefaultListen,
	}
}

// ExpandHubConfig fills in defaults for fields the operator left unset.
func ExpandHubConfig(cfg *HubCfg) {
	if cfg.Id == "" {
		cfg.Id = "hub"
	}
	if cfg.Listen == "" {
		cfg.Listen = DefaultListen
	}
	if cfg.LivenessWindow <= 0 {
		cfg.LivenessWindow = LivenessWindow
	}
	if cfg.TopoPush <= 0 {
		cfg.TopoPush = TopoPushDelay
	}
	if cfg.QueueReapTTL == nil {
		ttl := QueueReapTTL
		cfg.QueueReapTTL = &ttl
	}
}

func (c *HubCfg) ReapTTL() time.Duration {
	if c.QueueReapTTL == nil {
		return QueueReapTTL
	}
	return *c.QueueReapTTL
}
