package geoquery

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

type segment [2]orb.Point

// geometriesIntersect reports whether two geometries share any point. Bound
// overlap is checked first, then vertex containment in both directions, then
// edge crossings (catches overlapping polygons with no contained vertices).
func geometriesIntersect(a, b orb.Geometry) bool {
	if a == nil || b == nil {
		return false
	}
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}

	for _, p := range vertices(a) {
		if containsPoint(b, p) {
			return true
		}
	}
	for _, p := range vertices(b) {
		if containsPoint(a, p) {
			return true
		}
	}

	for _, s := range edges(a) {
		for _, t := range edges(b) {
			if segmentsCross(s, t) {
				return true
			}
		}
	}
	return false
}

// geometryWithin reports whether every vertex of a lies inside b.
func geometryWithin(a, b orb.Geometry) bool {
	if a == nil || b == nil {
		return false
	}
	bound := b.Bound()
	if !bound.Contains(a.Bound().Min) || !bound.Contains(a.Bound().Max) {
		return false
	}

	pts := vertices(a)
	if len(pts) == 0 {
		return false
	}
	for _, p := range pts {
		if !containsPoint(b, p) {
			return false
		}
	}
	return true
}

// containsPoint tests point membership per geometry type. Lines have no
// interior, so only points and areal geometries can contain.
func containsPoint(g orb.Geometry, p orb.Point) bool {
	switch geom := g.(type) {
	case orb.Point:
		return geom.Equal(p)
	case orb.MultiPoint:
		for _, q := range geom {
			if q.Equal(p) {
				return true
			}
		}
		return false
	case orb.Polygon:
		return planar.PolygonContains(geom, p)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, p)
	case orb.Bound:
		return geom.Contains(p)
	case orb.Collection:
		for _, sub := range geom {
			if containsPoint(sub, p) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func vertices(g orb.Geometry) []orb.Point {
	switch geom := g.(type) {
	case orb.Point:
		return []orb.Point{geom}
	case orb.MultiPoint:
		return []orb.Point(geom)
	case orb.LineString:
		return []orb.Point(geom)
	case orb.MultiLineString:
		var pts []orb.Point
		for _, ls := range geom {
			pts = append(pts, ls...)
		}
		return pts
	case orb.Ring:
		return []orb.Point(geom)
	case orb.Polygon:
		var pts []orb.Point
		for _, r := range geom {
			pts = append(pts, r...)
		}
		return pts
	case orb.MultiPolygon:
		var pts []orb.Point
		for _, poly := range geom {
			pts = append(pts, vertices(poly)...)
		}
		return pts
	case orb.Collection:
		var pts []orb.Point
		for _, sub := range geom {
			pts = append(pts, vertices(sub)...)
		}
		return pts
	case orb.Bound:
		return vertices(geom.ToRing())
	default:
		return nil
	}
}

func edges(g orb.Geometry) []segment {
	switch geom := g.(type) {
	case orb.LineString:
		return lineEdges(geom)
	case orb.MultiLineString:
		var segs []segment
		for _, ls := range geom {
			segs = append(segs, lineEdges(orb.LineString(ls))...)
		}
		return segs
	case orb.Ring:
		return lineEdges(orb.LineString(geom))
	case orb.Polygon:
		var segs []segment
		for _, r := range geom {
			segs = append(segs, lineEdges(orb.LineString(r))...)
		}
		return segs
	case orb.MultiPolygon:
		var segs []segment
		for _, poly := range geom {
			segs = append(segs, edges(poly)...)
		}
		return segs
	case orb.Collection:
		var segs []segment
		for _, sub := range geom {
			segs = append(segs, edges(sub)...)
		}
		return segs
	case orb.Bound:
		return edges(geom.ToRing())
	default:
		return nil
	}
}

func lineEdges(ls orb.LineString) []segment {
	if len(ls) < 2 {
		return nil
	}
	segs := make([]segment, 0, len(ls)-1)
	for i := 0; i < len(ls)-1; i++ {
		segs = append(segs, segment{ls[i], ls[i+1]})
	}
	return segs
}

// segmentsCross uses the orientation test, with collinear endpoints handled
// via on-segment checks.
func segmentsCross(s, t segment) bool {
	d1 := orientation(t[0], t[1], s[0])
	d2 := orientation(t[0], t[1], s[1])
	d3 := orientation(s[0], s[1], t[0])
	d4 := orientation(s[0], s[1], t[1])

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	if d1 == 0 && onSegment(t[0], t[1], s[0]) {
		return true
	}
	if d2 == 0 && onSegment(t[0], t[1], s[1]) {
		return true
	}
	if d3 == 0 && onSegment(s[0], s[1], t[0]) {
		return true
	}
	if d4 == 0 && onSegment(s[0], s[1], t[1]) {
		return true
	}
	return false
}

func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

func onSegment(a, b, p orb.Point) bool {
	return min(a[0], b[0]) <= p[0] && p[0] <= max(a[0], b[0]) &&
		min(a[1], b[1]) <= p[1] && p[1] <= max(a[1], b[1])
}
