package mcp

import (
	"context"
	"path/filepath"

	"reforestai-mcp-server/internal/geoquery"
	"reforestai-mcp-server/internal/layer"
)

// FilterAttributeTool selects features whose property compares against a value.
type FilterAttributeTool struct {
	store     *layer.Store
	outputDir string
}

func (t *FilterAttributeTool) Name() string { return "filter-attribute" }
func (t *FilterAttributeTool) Description() string {
	return `Select features of a layer by comparing one property against a value.

Operators: eq, ne, gt, gte, lt, lte. String and numeric values both work;
features missing the property never match. An empty result is a normal
outcome (count 0), not an error.

EXAMPLE: layer=fokontany, property=Commune, op=eq, value=Sandrohy

Set "output" to also export the matching features as a GeoJSON artifact
usable by render-map / render-image.

Returns: {count, feature_ids, artifact_path?} - never raw geometry.`
}
func (t *FilterAttributeTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"layer": map[string]interface{}{
				"type":        "string",
				"description": "Layer name (see list-layers)",
			},
			"property": map[string]interface{}{
				"type":        "string",
				"description": "Property to compare (see describe-layer)",
			},
			"op": map[string]interface{}{
				"type":        "string",
				"description": "Comparison operator (default: eq)",
				"enum":        []string{"eq", "ne", "gt", "gte", "lt", "lte"},
			},
			"value": map[string]interface{}{
				"description": "Value to compare against (string or number)",
			},
			"output": map[string]interface{}{
				"type":        "string",
				"description": "Optional artifact file name to export matches as GeoJSON",
			},
		},
		"required": []string{"layer", "property", "value"},
	}
}
func (t *FilterAttributeTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	name, err := requireStringArg(args, "layer")
	if err != nil {
		return nil, err
	}
	property, err := requireStringArg(args, "property")
	if err != nil {
		return nil, err
	}
	value, ok := args["value"]
	if !ok {
		return nil, invalidArgf("value is required")
	}
	op := getStringArg(args, "op")
	if op == "" {
		op = geoquery.OpEq
	}

	l, err := t.store.Get(name)
	if err != nil {
		return nil, err
	}

	result, err := geoquery.FilterAttribute(l.Collection, property, op, value)
	if err != nil {
		return nil, err
	}

	summary := summarize(result)
	if output := getStringArg(args, "output"); output != "" {
		path, err := artifactPath(t.outputDir, output, ".geojson")
		if err != nil {
			return nil, err
		}
		if err := writeCollection(result, path); err != nil {
			return nil, err
		}
		summary["artifact_path"] = path
	}
	return summary, nil
}

// FilterAreaTool keeps features whose computed area clears a threshold.
type FilterAreaTool struct {
	store     *layer.Store
	outputDir string
}

func (t *FilterAreaTool) Name() string { return "filter-area" }
func (t *FilterAreaTool) Description() string {
	return `Keep features whose geodesic area (square meters) exceeds min_m2 and,
when max_m2 is set, stays below it.

min_m2 of 0 keeps every feature with non-degenerate geometry.

EXAMPLE: layer=grevillea, min_m2=5000 keeps plantations larger than 5000 m2.

Returns: {count, feature_ids, artifact_path?}`
}
func (t *FilterAreaTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"layer": map[string]interface{}{
				"type":        "string",
				"description": "Layer name (see list-layers)",
			},
			"min_m2": map[string]interface{}{
				"type":        "number",
				"description": "Lower area bound in square meters (default: 0)",
			},
			"max_m2": map[string]interface{}{
				"type":        "number",
				"description": "Optional upper area bound in square meters",
			},
			"output": map[string]interface{}{
				"type":        "string",
				"description": "Optional artifact file name to export matches as GeoJSON",
			},
		},
		"required": []string{"layer"},
	}
}
func (t *FilterAreaTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	name, err := requireStringArg(args, "layer")
	if err != nil {
		return nil, err
	}
	minM2 := getFloatArg(args, "min_m2", 0)
	maxM2 := getFloatArg(args, "max_m2", 0)
	if minM2 < 0 || maxM2 < 0 {
		return nil, invalidArgf("area bounds must be non-negative")
	}

	l, err := t.store.Get(name)
	if err != nil {
		return nil, err
	}

	result := geoquery.FilterArea(l.Collection, minM2, maxM2)

	summary := summarize(result)
	if output := getStringArg(args, "output"); output != "" {
		path, err := artifactPath(t.outputDir, output, ".geojson")
		if err != nil {
			return nil, err
		}
		if err := writeCollection(result, path); err != nil {
			return nil, err
		}
		summary["artifact_path"] = path
	}
	return summary, nil
}

// SpatialJoinTool selects source features by spatial relation to a target layer.
type SpatialJoinTool struct {
	store     *layer.Store
	outputDir string
}

func (t *SpatialJoinTool) Name() string { return "spatial-join" }
func (t *SpatialJoinTool) Description() string {
	return `Select features of source_layer that relate spatially to any feature of
target_layer.

Predicates:
- intersects: geometries share any point (default)
- within: source feature lies inside a target feature
- contains: source feature encloses a target feature

carry_fields copies the named properties of the first matching target
feature onto each result, prefixed with "tgt_".

EXAMPLE: source_layer=grevillea, target_layer=fokontany, predicate=within,
carry_fields=["Commune"] tags each plantation with its commune.

Result size never exceeds the source layer size.

Returns: {count, feature_ids, artifact_path?}`
}
func (t *SpatialJoinTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"source_layer": map[string]interface{}{
				"type":        "string",
				"description": "Layer providing the candidate features",
			},
			"target_layer": map[string]interface{}{
				"type":        "string",
				"description": "Layer tested against",
			},
			"predicate": map[string]interface{}{
				"type":        "string",
				"description": "Spatial relation (default: intersects)",
				"enum":        []string{"intersects", "within", "contains"},
			},
			"carry_fields": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Target properties to copy onto matches",
			},
			"output": map[string]interface{}{
				"type":        "string",
				"description": "Optional artifact file name to export matches as GeoJSON",
			},
		},
		"required": []string{"source_layer", "target_layer"},
	}
}
func (t *SpatialJoinTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	srcName, err := requireStringArg(args, "source_layer")
	if err != nil {
		return nil, err
	}
	tgtName, err := requireStringArg(args, "target_layer")
	if err != nil {
		return nil, err
	}
	predicate := getStringArg(args, "predicate")
	if predicate == "" {
		predicate = "intersects"
	}

	src, err := t.store.Get(srcName)
	if err != nil {
		return nil, err
	}
	tgt, err := t.store.Get(tgtName)
	if err != nil {
		return nil, err
	}

	result, err := geoquery.SpatialJoin(src.Collection, tgt.Collection, predicate, getStringSliceArg(args, "carry_fields"))
	if err != nil {
		return nil, err
	}

	summary := summarize(result)
	if output := getStringArg(args, "output"); output != "" {
		path, err := artifactPath(t.outputDir, output, ".geojson")
		if err != nil {
			return nil, err
		}
		if err := writeCollection(result, path); err != nil {
			return nil, err
		}
		summary["artifact_path"] = path
	}
	return summary, nil
}

// EnrichGeometryTool exports a layer with derived geometry attributes added.
type EnrichGeometryTool struct {
	store     *layer.Store
	outputDir string
}

func (t *EnrichGeometryTool) Name() string { return "enrich-geometry" }
func (t *EnrichGeometryTool) Description() string {
	return `Export a copy of a layer with derived attributes added per feature:
area_m2, centroid_lon, centroid_lat.

The stored layer itself is never modified. The enriched GeoJSON is written
to the output directory and the path returned.

Returns: {count, artifact_path}`
}
func (t *EnrichGeometryTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"layer": map[string]interface{}{
				"type":        "string",
				"description": "Layer name (see list-layers)",
			},
			"output": map[string]interface{}{
				"type":        "string",
				"description": "Artifact file name (default: generated)",
			},
		},
		"required": []string{"layer"},
	}
}
func (t *EnrichGeometryTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	name, err := requireStringArg(args, "layer")
	if err != nil {
		return nil, err
	}

	l, err := t.store.Get(name)
	if err != nil {
		return nil, err
	}

	enriched := geoquery.Enrich(l.Collection)

	path, err := artifactPath(t.outputDir, getStringArg(args, "output"), ".geojson")
	if err != nil {
		return nil, err
	}
	if err := writeCollection(enriched, path); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":       true,
		"count":         len(enriched.Features),
		"artifact_path": path,
	}, nil
}

// CombineLayersTool merges several layers into one GeoJSON artifact.
type CombineLayersTool struct {
	store     *layer.Store
	outputDir string
}

func (t *CombineLayersTool) Name() string { return "combine-layers" }
func (t *CombineLayersTool) Description() string {
	return `Merge the features of several layers into a single FeatureCollection
artifact, preserving feature order per layer.

WHEN TO USE:
- Preparing one file that holds boundaries plus plantations for export
- Feeding a multi-layer dataset to an external viewer

Returns: {count, artifact_path}`
}
func (t *CombineLayersTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"layers": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Layer names to merge, in order",
			},
			"output": map[string]interface{}{
				"type":        "string",
				"description": "Artifact file name (default: generated)",
			},
		},
		"required": []string{"layers"},
	}
}
func (t *CombineLayersTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	names := getStringSliceArg(args, "layers")
	if len(names) == 0 {
		return nil, invalidArgf("layers must list at least one layer name")
	}

	collections := make([]*layer.Layer, 0, len(names))
	for _, name := range names {
		l, err := t.store.Get(name)
		if err != nil {
			return nil, err
		}
		collections = append(collections, l)
	}

	merged := geoquery.Merge(collectionsOf(collections)...)

	path, err := artifactPath(t.outputDir, getStringArg(args, "output"), ".geojson")
	if err != nil {
		return nil, err
	}
	if err := writeCollection(merged, path); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":       true,
		"count":         len(merged.Features),
		"artifact_path": path,
		"artifact_name": filepath.Base(path),
	}, nil
}
