package mcp

import (
	"context"

	"reforestai-mcp-server/internal/geoquery"
	"reforestai-mcp-server/internal/layer"
)

type ListLayersTool struct {
	store *layer.Store
}

func (t *ListLayersTool) Name() string { return "list-layers" }
func (t *ListLayersTool) Description() string {
	return `List the GeoJSON layers available to the geospatial tools.

USE THIS FIRST to discover valid layer names before querying or rendering.
Every other tool takes one of these names as its "layer" argument.

Returns: {layers: [{name, features}]} with per-layer feature counts.`
}
func (t *ListLayersTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *ListLayersTool) Execute(_ context.Context, _ map[string]interface{}) (interface{}, error) {
	layers := make([]map[string]interface{}, 0, len(t.store.Names()))
	for _, name := range t.store.Names() {
		l, err := t.store.Get(name)
		if err != nil {
			return nil, err
		}
		layers = append(layers, map[string]interface{}{
			"name":     name,
			"features": l.Count(),
		})
	}
	return map[string]interface{}{
		"success": true,
		"layers":  layers,
	}, nil
}

type DescribeLayerTool struct {
	store *layer.Store
}

func (t *DescribeLayerTool) Name() string { return "describe-layer" }
func (t *DescribeLayerTool) Description() string {
	return `Report the attribute schema of a layer.

WHEN TO USE:
- Before filter-attribute, to learn property names and example values
- To check how many features a layer has

For each property: value types seen, up to 5 example values, and the
non-null count.

Returns: {feature_count, attributes: {name: {types, examples, count_non_null}}}`
}
func (t *DescribeLayerTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"layer": map[string]interface{}{
				"type":        "string",
				"description": "Layer name (see list-layers)",
			},
		},
		"required": []string{"layer"},
	}
}
func (t *DescribeLayerTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	name, err := requireStringArg(args, "layer")
	if err != nil {
		return nil, err
	}

	l, err := t.store.Get(name)
	if err != nil {
		return nil, err
	}

	desc := geoquery.Describe(l.Collection)
	return map[string]interface{}{
		"success":       true,
		"layer":         name,
		"feature_count": desc.FeatureCount,
		"attributes":    desc.Properties,
	}, nil
}
