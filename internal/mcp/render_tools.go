package mcp

import (
	"context"
	"fmt"

	"reforestai-mcp-server/internal/config"
	"reforestai-mcp-server/internal/layer"
	"reforestai-mcp-server/internal/render"
)

// styleSchema is shared by both render tools.
func styleSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": "Per-layer styling, matched to layers by position",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"color":        map[string]interface{}{"type": "string", "description": "Stroke color, hex (default: #3388ff)"},
				"fill_color":   map[string]interface{}{"type": "string", "description": "Fill color, hex (default: stroke color)"},
				"fill_opacity": map[string]interface{}{"type": "number", "description": "0-1 (default: 0.4)"},
				"weight":       map[string]interface{}{"type": "number", "description": "Stroke width in pixels (default: 2)"},
			},
		},
	}
}

// overlaysFromArgs resolves layer names and positional styles/tooltips into
// render overlays.
func overlaysFromArgs(store *layer.Store, args map[string]interface{}) ([]render.Overlay, error) {
	names := getStringSliceArg(args, "layers")
	if len(names) == 0 {
		return nil, invalidArgf("layers must list at least one layer name")
	}

	styles, _ := args["styles"].([]interface{})
	tooltips, _ := args["tooltip_fields"].([]interface{})

	overlays := make([]render.Overlay, 0, len(names))
	for i, name := range names {
		l, err := store.Get(name)
		if err != nil {
			return nil, err
		}

		ov := render.Overlay{Name: name, Collection: l.Collection}
		if i < len(styles) {
			if m, ok := styles[i].(map[string]interface{}); ok {
				ov.Style = render.Style{
					Color:       getStringArg(m, "color"),
					FillColor:   getStringArg(m, "fill_color"),
					FillOpacity: getFloatArg(m, "fill_opacity", 0),
					Weight:      getFloatArg(m, "weight", 0),
				}
			}
		}
		if i < len(tooltips) {
			if fields, ok := tooltips[i].([]interface{}); ok {
				for _, f := range fields {
					ov.TooltipFields = append(ov.TooltipFields, fmt.Sprintf("%v", f))
				}
			}
		}
		overlays = append(overlays, ov)
	}
	return overlays, nil
}

func renderOptions(cfg config.Render, args map[string]interface{}) render.Options {
	tiles := getStringArg(args, "tiles")
	if tiles == "" {
		tiles = cfg.GetTiles()
	}
	attribution := getStringArg(args, "attribution")
	if attribution == "" {
		attribution = cfg.Attribution
	}
	return render.Options{
		Tiles:       tiles,
		Attribution: attribution,
		Zoom:        getIntArg(args, "zoom", cfg.GetZoom()),
		Width:       getIntArg(args, "width", cfg.GetImageWidth()),
		Height:      getIntArg(args, "height", cfg.GetImageHeight()),
	}
}

// RenderMapTool writes an interactive HTML map artifact.
type RenderMapTool struct {
	store     *layer.Store
	render    config.Render
	outputDir string
}

func (t *RenderMapTool) Name() string { return "render-map" }
func (t *RenderMapTool) Description() string {
	return `Render one or more layers to an interactive HTML map (Leaflet).

The map fits its view to the combined layer bounds and includes a layer
control plus optional per-feature tooltips.

BASEMAP: "tiles" accepts a preset name (OpenStreetMap, CartoDB positron) or
a custom {z}/{x}/{y} template URL. A custom URL REQUIRES "attribution";
omitting it is a configuration error and nothing is written.

Returns: {artifact_path} - open the file in a browser.`
}
func (t *RenderMapTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"layers": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Layer names to draw, bottom to top",
			},
			"styles": styleSchema(),
			"tooltip_fields": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
				"description": "Per-layer property names shown as tooltips, matched by position",
			},
			"tiles": map[string]interface{}{
				"type":        "string",
				"description": "Basemap preset or tile template URL",
			},
			"attribution": map[string]interface{}{
				"type":        "string",
				"description": "Attribution text, required for custom tile URLs",
			},
			"zoom": map[string]interface{}{
				"type":        "integer",
				"description": "Zoom used when the map collapses to a point",
			},
			"output": map[string]interface{}{
				"type":        "string",
				"description": "Artifact file name (default: generated)",
			},
		},
		"required": []string{"layers"},
	}
}
func (t *RenderMapTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	overlays, err := overlaysFromArgs(t.store, args)
	if err != nil {
		return nil, err
	}

	path, err := artifactPath(t.outputDir, getStringArg(args, "output"), ".html")
	if err != nil {
		return nil, err
	}

	if err := render.WriteHTML(path, overlays, renderOptions(t.render, args)); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":       true,
		"artifact_path": path,
		"layers":        getStringSliceArg(args, "layers"),
	}, nil
}

// RenderImageTool writes a static PNG map artifact.
type RenderImageTool struct {
	store     *layer.Store
	render    config.Render
	outputDir string
}

func (t *RenderImageTool) Name() string { return "render-image" }
func (t *RenderImageTool) Description() string {
	return `Render one or more layers to a static PNG image.

Geometry is projected to Web Mercator and scaled to fit the canvas. Use
this when the chat UI needs an inline image rather than an HTML map.

Returns: {artifact_path}`
}
func (t *RenderImageTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"layers": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Layer names to draw, bottom to top",
			},
			"styles": styleSchema(),
			"width": map[string]interface{}{
				"type":        "integer",
				"description": "Canvas width in pixels (default: configured)",
			},
			"height": map[string]interface{}{
				"type":        "integer",
				"description": "Canvas height in pixels (default: configured)",
			},
			"output": map[string]interface{}{
				"type":        "string",
				"description": "Artifact file name (default: generated)",
			},
		},
		"required": []string{"layers"},
	}
}
func (t *RenderImageTool) Execute(_ context.Context, args map[string]interface{}) (interface{}, error) {
	overlays, err := overlaysFromArgs(t.store, args)
	if err != nil {
		return nil, err
	}

	path, err := artifactPath(t.outputDir, getStringArg(args, "output"), ".png")
	if err != nil {
		return nil, err
	}

	if err := render.WritePNG(path, overlays, renderOptions(t.render, args)); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"success":       true,
		"artifact_path": path,
		"layers":        getStringSliceArg(args, "layers"),
	}, nil
}
