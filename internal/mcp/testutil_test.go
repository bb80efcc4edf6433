package mcp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"reforestai-mcp-server/internal/config"
	"reforestai-mcp-server/internal/layer"
)

func squareFeature(lon, lat, d float64, props geojson.Properties) *geojson.Feature {
	f := geojson.NewFeature(orb.Polygon{orb.Ring{
		{lon - d, lat - d},
		{lon + d, lat - d},
		{lon + d, lat + d},
		{lon - d, lat + d},
		{lon - d, lat - d},
	}})
	f.Properties = props
	return f
}

func writeLayerFile(t *testing.T, dir, name string, features ...*geojson.Feature) string {
	t.Helper()
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.Append(f)
	}
	raw, err := fc.MarshalJSON()
	if err != nil {
		t.Fatalf("encoding fixture layer %s: %v", name, err)
	}
	path := filepath.Join(dir, name+".geojson")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatalf("writing fixture layer %s: %v", name, err)
	}
	return path
}

// newTestServer builds a server over two small Madagascar-like layers:
// fokontany boundaries and grevillea plantations inside the first boundary.
func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dataDir := t.TempDir()

	fokontany := writeLayerFile(t, dataDir, "fokontany",
		squareFeature(47.0, -19.0, 0.05, geojson.Properties{"Commune": "Sandrohy", "Region": "Amoron'i Mania"}),
		squareFeature(47.3, -19.3, 0.05, geojson.Properties{"Commune": "Ambositra", "Region": "Amoron'i Mania"}),
	)
	// One large plantation and one small one, both inside Sandrohy.
	grevillea := writeLayerFile(t, dataDir, "grevillea",
		squareFeature(47.0, -19.0, 0.005, geojson.Properties{"name": "parcel-a"}),
		squareFeature(47.02, -19.02, 0.0005, geojson.Properties{"name": "parcel-b"}),
	)

	cfg := config.DefaultConfig()
	cfg.Layers = []config.LayerEntry{
		{Name: "fokontany", Path: fokontany},
		{Name: "grevillea", Path: grevillea},
	}
	cfg.Output.Dir = filepath.Join(t.TempDir(), "output")

	store := layer.NewStore(cfg.LayerPaths())
	srv, err := NewServer(cfg, store)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return srv, cfg.Output.Dir
}

func asMap(t *testing.T, result interface{}) map[string]interface{} {
	t.Helper()
	m, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map result, got %T", result)
	}
	return m
}
