package render

import (
	"fmt"
	"html/template"
	"os"
)

// htmlTemplate is a self-contained Leaflet page. Layer data is inlined so the
// artifact opens without a server.
const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map('map');
L.tileLayer({{.TileURL}}, {attribution: {{.Attribution}}}).addTo(map);
var overlays = {};
{{range .Layers}}
(function() {
	var layer = L.geoJSON({{.Data}}, {
		style: function() {
			return {
				color: {{.Style.Color}},
				fillColor: {{.Style.FillColor}},
				fillOpacity: {{.Style.FillOpacity}},
				weight: {{.Style.Weight}}
			};
		},
		onEachFeature: function(feature, l) {
			var fields = {{.TooltipFields}};
			if (!fields || fields.length === 0) { return; }
			var parts = [];
			for (var i = 0; i < fields.length; i++) {
				var v = feature.properties ? feature.properties[fields[i]] : null;
				if (v !== null && v !== undefined) {
					parts.push(fields[i] + ': ' + v);
				}
			}
			if (parts.length > 0) { l.bindTooltip(parts.join('<br>'), {sticky: true}); }
		}
	}).addTo(map);
	overlays[{{.Name}}] = layer;
})();
{{end}}
L.control.layers(null, overlays).addTo(map);
{{if .HasBounds}}
map.fitBounds([[{{.MinLat}}, {{.MinLon}}], [{{.MaxLat}}, {{.MaxLon}}]], {maxZoom: 14});
{{else}}
map.setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
{{end}}
</script>
</body>
</html>
`

type htmlLayer struct {
	Name          string
	Data          template.JS
	Style         Style
	TooltipFields []string
}

type htmlPage struct {
	Title       string
	TileURL     string
	Attribution string
	Layers      []htmlLayer
	HasBounds   bool
	MinLat      float64
	MinLon      float64
	MaxLat      float64
	MaxLon      float64
	CenterLat   float64
	CenterLon   float64
	Zoom        int
}

var pageTemplate = template.Must(template.New("map").Parse(htmlTemplate))

// WriteHTML renders the overlays to an interactive Leaflet map at path.
func WriteHTML(path string, overlays []Overlay, opts Options) error {
	tileURL, attribution, err := opts.tileLayer()
	if err != nil {
		return err
	}

	page := htmlPage{
		Title:       "ReforestAI map",
		TileURL:     tileURL,
		Attribution: attribution,
		CenterLat:   fallbackCenter[1],
		CenterLon:   fallbackCenter[0],
		Zoom:        opts.Zoom,
	}
	if page.Zoom <= 0 {
		page.Zoom = 7
	}

	for _, ov := range overlays {
		if ov.Collection == nil {
			continue
		}
		raw, err := ov.Collection.MarshalJSON()
		if err != nil {
			return fmt.Errorf("encoding layer %s: %w", ov.Name, err)
		}
		page.Layers = append(page.Layers, htmlLayer{
			Name:          ov.Name,
			Data:          template.JS(raw),
			Style:         ov.Style.withDefaults(),
			TooltipFields: ov.TooltipFields,
		})
	}

	if bound, ok := combinedBound(overlays); ok {
		if bound.Min == bound.Max {
			page.CenterLon = bound.Min[0]
			page.CenterLat = bound.Min[1]
		} else {
			page.HasBounds = true
			page.MinLon = bound.Min[0]
			page.MinLat = bound.Min[1]
			page.MaxLon = bound.Max[0]
			page.MaxLat = bound.Max[1]
		}
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating map artifact %s: %w", path, err)
	}
	defer out.Close()

	if err := pageTemplate.Execute(out, page); err != nil {
		return fmt.Errorf("rendering map artifact %s: %w", path, err)
	}
	return nil
}
