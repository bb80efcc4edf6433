package mcp

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"reforestai-mcp-server/internal/geoquery"
	"reforestai-mcp-server/internal/layer"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

const maxSummaryIDs = 20

func getStringArg(args map[string]interface{}, key string) string {
	val, ok := args[key]
	if !ok {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// requireStringArg fails with an InvalidArgument error when the key is absent
// or empty.
func requireStringArg(args map[string]interface{}, key string) (string, error) {
	v := getStringArg(args, key)
	if v == "" {
		return "", invalidArgf("%s is required", key)
	}
	return v, nil
}

func getFloatArg(args map[string]interface{}, key string, fallback float64) float64 {
	val, ok := args[key]
	if !ok {
		return fallback
	}
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

func getIntArg(args map[string]interface{}, key string, fallback int) int {
	val, ok := args[key]
	if !ok {
		return fallback
	}
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func getBoolArg(args map[string]interface{}, key string, fallback bool) bool {
	val, ok := args[key]
	if !ok {
		return fallback
	}
	if b, ok := val.(bool); ok {
		return b
	}
	return fallback
}

// getStringSliceArg accepts both []string and the []interface{} shape JSON
// decoding produces.
func getStringSliceArg(args map[string]interface{}, key string) []string {
	val, ok := args[key]
	if !ok {
		return nil
	}
	switch v := val.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprintf("%v", item))
		}
		return out
	default:
		return nil
	}
}

// artifactPath resolves a requested output name inside the artifact directory.
// Only bare file names are accepted; path traversal is rejected.
func artifactPath(outputDir, requested, ext string) (string, error) {
	name := requested
	if name == "" {
		name = uuid.NewString() + ext
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return "", invalidArgf("output name must be a bare file name, got %q", requested)
	}
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return filepath.Join(outputDir, name), nil
}

// writeCollection writes a feature collection artifact and returns its path.
func writeCollection(fc *geojson.FeatureCollection, path string) error {
	raw, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding feature collection: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("writing artifact %s: %w", path, err)
	}
	return nil
}

func collectionsOf(layers []*layer.Layer) []*geojson.FeatureCollection {
	fcs := make([]*geojson.FeatureCollection, 0, len(layers))
	for _, l := range layers {
		fcs = append(fcs, l.Collection)
	}
	return fcs
}

// summarize converts a query result into the small payload returned to the
// agent: a count plus a bounded list of feature identifiers. Full geometry is
// never sent back.
func summarize(fc *geojson.FeatureCollection) map[string]interface{} {
	ids := geoquery.FeatureIDs(fc)
	truncated := false
	if len(ids) > maxSummaryIDs {
		ids = ids[:maxSummaryIDs]
		truncated = true
	}
	return map[string]interface{}{
		"success":       true,
		"count":         len(fc.Features),
		"feature_ids":   ids,
		"ids_truncated": truncated,
	}
}
