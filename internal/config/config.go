package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config captures all tunable settings for the ReforestAI MCP server.
type Config struct {
	Server Server       `yaml:"server"`
	Layers []LayerEntry `yaml:"layers"`
	Output Output       `yaml:"output"`
	Render Render       `yaml:"render"`
	MCP    MCP          `yaml:"mcp"`
}

type Server struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	LogFile string `yaml:"log_file"`
}

// LayerEntry declares one named GeoJSON dataset available to the tools.
type LayerEntry struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Output configures where rendered maps and exported layers are written.
type Output struct {
	Dir string `yaml:"dir"`
}

// Render configures map artifact defaults.
type Render struct {
	// Tile layer preset or template URL for HTML maps (default: OpenStreetMap).
	Tiles string `yaml:"tiles"`
	// Attribution string shown on the map. Required when Tiles is a custom URL.
	Attribution string `yaml:"attribution"`
	// PNG canvas size.
	ImageWidth  int `yaml:"image_width"`
	ImageHeight int `yaml:"image_height"`
	// Zoom used when a map collapses to a single point.
	Zoom int `yaml:"zoom"`
}

type MCP struct {
	// When set, starts an SSE server on this port instead of stdio-only.
	SSEPort int `yaml:"sse_port"`
}

// DefaultConfig provides reasonable defaults for local development.
func DefaultConfig() Config {
	return Config{
		Server: Server{
			Name:    "reforestai-mcp",
			Version: "0.1.0",
			LogFile: "reforestai-mcp.log",
		},
		Layers: []LayerEntry{
			{Name: "fokontany", Path: "map_data/fokontany.geojson"},
			{Name: "grevillea", Path: "map_data/grevillea.geojson"},
			{Name: "reforestation", Path: "map_data/reforestation.geojson"},
		},
		Output: Output{
			Dir: "output",
		},
		Render: Render{
			Tiles:       "OpenStreetMap",
			ImageWidth:  1024,
			ImageHeight: 1024,
			Zoom:        7,
		},
		MCP: MCP{
			SSEPort: 0,
		},
	}
}

// Load reads YAML config from disk and overlays defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, errors.New("config path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}

// Validate ensures required fields exist so the server can start deterministically.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	if len(c.Layers) == 0 {
		return errors.New("at least one layer must be configured")
	}
	seen := make(map[string]bool, len(c.Layers))
	for _, l := range c.Layers {
		if l.Name == "" || l.Path == "" {
			return fmt.Errorf("layer entries need both name and path (got name=%q path=%q)", l.Name, l.Path)
		}
		if seen[l.Name] {
			return fmt.Errorf("duplicate layer name: %s", l.Name)
		}
		seen[l.Name] = true
	}
	return nil
}

// LayerPaths returns the configured name -> path mapping.
func (c *Config) LayerPaths() map[string]string {
	m := make(map[string]string, len(c.Layers))
	for _, l := range c.Layers {
		m[l.Name] = l.Path
	}
	return m
}

// OutputDir returns the artifact directory with a sane default.
func (o Output) OutputDir() string {
	if o.Dir == "" {
		return "output"
	}
	return o.Dir
}

// EnsureOutputDir creates the artifact directory if missing.
func (o Output) EnsureOutputDir() (string, error) {
	dir := o.OutputDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", dir, err)
	}
	return dir, nil
}

// GetImageWidth returns the PNG width with a sane default.
func (r Render) GetImageWidth() int {
	if r.ImageWidth <= 0 {
		return 1024
	}
	return r.ImageWidth
}

// GetImageHeight returns the PNG height with a sane default.
func (r Render) GetImageHeight() int {
	if r.ImageHeight <= 0 {
		return 1024
	}
	return r.ImageHeight
}

// GetTiles returns the tile setting with a sane default.
func (r Render) GetTiles() string {
	if r.Tiles == "" {
		return "OpenStreetMap"
	}
	return r.Tiles
}

// GetZoom returns the fallback zoom with a sane default.
func (r Render) GetZoom() int {
	if r.Zoom <= 0 {
		return 7
	}
	return r.Zoom
}

// ResolvePaths resolves relative layer, output, and log paths against baseDir.
func (c Config) ResolvePaths(baseDir string) Config {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	layers := make([]LayerEntry, len(c.Layers))
	copy(layers, c.Layers)
	for i := range layers {
		layers[i].Path = resolve(layers[i].Path)
	}
	c.Layers = layers
	c.Output.Dir = resolve(c.Output.Dir)
	c.Server.LogFile = resolve(c.Server.LogFile)
	return c
}
