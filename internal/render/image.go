package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// WritePNG rasterizes the overlays to a static PNG at path. Geometry is
// projected to Web Mercator and scaled to fit the canvas with a small margin.
func WritePNG(path string, overlays []Overlay, opts Options) error {
	// Tile settings do not affect the raster output, but a misconfigured
	// basemap fails here too so both renderers behave alike.
	if _, _, err := opts.tileLayer(); err != nil {
		return err
	}

	width := opts.Width
	if width <= 0 {
		width = 1024
	}
	height := opts.Height
	if height <= 0 {
		height = 1024
	}

	bound, ok := combinedBound(overlays)
	if !ok {
		bound = fallbackCenter.Bound()
	}

	tr := newTransform(bound, width, height)

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	for _, ov := range overlays {
		if ov.Collection == nil {
			continue
		}
		style := ov.Style.withDefaults()
		for _, f := range ov.Collection.Features {
			if f.Geometry == nil {
				continue
			}
			drawGeometry(dc, project.Geometry(orb.Clone(f.Geometry), project.WGS84.ToMercator), tr, style)
		}
	}

	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("writing image artifact %s: %w", path, err)
	}
	return nil
}

// transform maps Mercator coordinates onto the canvas, preserving aspect
// ratio and flipping the y axis.
type transform struct {
	scale      float64
	minX, maxY float64
	padX, padY float64
}

func newTransform(geoBound orb.Bound, width, height int) transform {
	b := project.Bound(geoBound, project.WGS84.ToMercator)

	dx := b.Max[0] - b.Min[0]
	dy := b.Max[1] - b.Min[1]
	// Degenerate extents (single point) get a fixed margin so something
	// visible is still drawn.
	if dx <= 0 {
		dx = 1000
		b.Min[0] -= dx / 2
		b.Max[0] += dx / 2
	}
	if dy <= 0 {
		dy = 1000
		b.Min[1] -= dy / 2
		b.Max[1] += dy / 2
	}

	margin := 0.05
	usableW := float64(width) * (1 - 2*margin)
	usableH := float64(height) * (1 - 2*margin)
	scale := usableW / dx
	if s := usableH / dy; s < scale {
		scale = s
	}

	return transform{
		scale: scale,
		minX:  b.Min[0],
		maxY:  b.Max[1],
		padX:  (float64(width) - dx*scale) / 2,
		padY:  (float64(height) - dy*scale) / 2,
	}
}

func (t transform) apply(p orb.Point) (float64, float64) {
	x := (p[0]-t.minX)*t.scale + t.padX
	y := (t.maxY-p[1])*t.scale + t.padY
	return x, y
}

func drawGeometry(dc *gg.Context, g orb.Geometry, tr transform, style Style) {
	switch geom := g.(type) {
	case orb.Point:
		x, y := tr.apply(geom)
		dc.DrawCircle(x, y, 4)
		fr, fg, fb := hexRGB(style.FillColor)
		dc.SetRGBA(fr, fg, fb, clampOpacity(style.FillOpacity))
		dc.FillPreserve()
		sr, sg, sb := hexRGB(style.Color)
		dc.SetRGB(sr, sg, sb)
		dc.SetLineWidth(style.Weight)
		dc.Stroke()
	case orb.MultiPoint:
		for _, p := range geom {
			drawGeometry(dc, p, tr, style)
		}
	case orb.LineString:
		tracePath(dc, geom, tr, false)
		sr, sg, sb := hexRGB(style.Color)
		dc.SetRGB(sr, sg, sb)
		dc.SetLineWidth(style.Weight)
		dc.Stroke()
	case orb.MultiLineString:
		for _, ls := range geom {
			drawGeometry(dc, ls, tr, style)
		}
	case orb.Polygon:
		for _, ring := range geom {
			tracePath(dc, orb.LineString(ring), tr, true)
		}
		fr, fg, fb := hexRGB(style.FillColor)
		dc.SetRGBA(fr, fg, fb, clampOpacity(style.FillOpacity))
		dc.FillPreserve()
		sr, sg, sb := hexRGB(style.Color)
		dc.SetRGB(sr, sg, sb)
		dc.SetLineWidth(style.Weight)
		dc.Stroke()
	case orb.MultiPolygon:
		for _, poly := range geom {
			drawGeometry(dc, poly, tr, style)
		}
	case orb.Collection:
		for _, sub := range geom {
			drawGeometry(dc, sub, tr, style)
		}
	}
}

func tracePath(dc *gg.Context, ls orb.LineString, tr transform, closed bool) {
	for i, p := range ls {
		x, y := tr.apply(p)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	if closed {
		dc.ClosePath()
	}
}

func clampOpacity(o float64) float64 {
	if o < 0 {
		return 0
	}
	if o > 1 {
		return 1
	}
	return o
}

// hexRGB parses #RGB and #RRGGBB colors, falling back to Leaflet blue.
func hexRGB(s string) (float64, float64, float64) {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return hexRGB("#3388ff")
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return hexRGB("#3388ff")
	}
	r := float64((v>>16)&0xff) / 255
	g := float64((v>>8)&0xff) / 255
	b := float64(v&0xff) / 255
	return r, g, b
}
