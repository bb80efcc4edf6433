// Package render produces map artifacts (interactive HTML, static PNG) from
// GeoJSON feature collections. Each call writes exactly one file under the
// caller-chosen path and never touches other files.
package render

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrAttributionRequired is returned when a custom tile URL is supplied
// without an attribution string.
var ErrAttributionRequired = errors.New("custom tile URL requires an attribution string")

// ErrUnknownTiles is returned when the tile setting is neither a known preset
// nor a template URL.
var ErrUnknownTiles = errors.New("unknown tile preset")

// Style controls how one overlay is drawn.
type Style struct {
	Color       string  `json:"color"`
	FillColor   string  `json:"fill_color"`
	FillOpacity float64 `json:"fill_opacity"`
	Weight      float64 `json:"weight"`
}

func (s Style) withDefaults() Style {
	if s.Color == "" {
		s.Color = "#3388ff"
	}
	if s.FillColor == "" {
		s.FillColor = s.Color
	}
	if s.FillOpacity <= 0 {
		s.FillOpacity = 0.4
	}
	if s.Weight <= 0 {
		s.Weight = 2
	}
	return s
}

// Overlay is one named collection plus its styling.
type Overlay struct {
	Name          string
	Collection    *geojson.FeatureCollection
	Style         Style
	TooltipFields []string
}

// Options selects the basemap and canvas parameters.
type Options struct {
	Tiles       string
	Attribution string
	Zoom        int
	Width       int
	Height      int
}

type tilePreset struct {
	url         string
	attribution string
}

var tilePresets = map[string]tilePreset{
	"OpenStreetMap": {
		url:         "https://tile.openstreetmap.org/{z}/{x}/{y}.png",
		attribution: "&copy; OpenStreetMap contributors",
	},
	"CartoDB positron": {
		url:         "https://basemaps.cartocdn.com/light_all/{z}/{x}/{y}.png",
		attribution: "&copy; OpenStreetMap contributors &copy; CARTO",
	},
}

// tileLayer resolves the tile setting to a URL template and attribution.
// Presets carry their own attribution; custom URLs must bring one.
func (o Options) tileLayer() (string, string, error) {
	tiles := o.Tiles
	if tiles == "" {
		tiles = "OpenStreetMap"
	}

	if preset, ok := tilePresets[tiles]; ok {
		attribution := preset.attribution
		if o.Attribution != "" {
			attribution = o.Attribution
		}
		return preset.url, attribution, nil
	}

	if strings.HasPrefix(tiles, "http://") || strings.HasPrefix(tiles, "https://") {
		if o.Attribution == "" {
			return "", "", ErrAttributionRequired
		}
		return tiles, o.Attribution, nil
	}

	return "", "", fmt.Errorf("%w: %s", ErrUnknownTiles, tiles)
}

// Madagascar, matching the demo datasets.
var fallbackCenter = orb.Point{47.0, -19.0}

// combinedBound unions the bounds of all overlay features. ok is false when no
// overlay has a feature with geometry.
func combinedBound(overlays []Overlay) (orb.Bound, bool) {
	var bound orb.Bound
	found := false
	for _, ov := range overlays {
		if ov.Collection == nil {
			continue
		}
		for _, f := range ov.Collection.Features {
			if f.Geometry == nil {
				continue
			}
			b := f.Geometry.Bound()
			if !found {
				bound = b
				found = true
			} else {
				bound = bound.Union(b)
			}
		}
	}
	return bound, found
}
