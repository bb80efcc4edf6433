// Package geoquery implements pure spatial and attribute queries over GeoJSON
// feature collections. Every function returns a new collection; source layers
// are never mutated.
package geoquery

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Comparison operators accepted by FilterAttribute.
const (
	OpEq  = "eq"
	OpNe  = "ne"
	OpGt  = "gt"
	OpGte = "gte"
	OpLt  = "lt"
	OpLte = "lte"
)

// ErrBadOperator is returned for an operator outside the accepted set.
var ErrBadOperator = errors.New("unsupported comparison operator")

// ErrBadPredicate is returned for a spatial predicate outside the accepted set.
var ErrBadPredicate = errors.New("unsupported spatial predicate")

// FilterAttribute selects features whose named property compares against value
// using op. Features missing the property never match.
func FilterAttribute(fc *geojson.FeatureCollection, property, op string, value interface{}) (*geojson.FeatureCollection, error) {
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte:
	default:
		return nil, fmt.Errorf("%w: %s", ErrBadOperator, op)
	}

	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		got, ok := f.Properties[property]
		if !ok || got == nil {
			continue
		}
		if compare(got, op, value) {
			out.Append(cloneFeature(f))
		}
	}
	return out, nil
}

// FilterArea retains features whose geodesic area in square meters strictly
// exceeds minM2 and, when maxM2 > 0, stays below maxM2. A min of 0 keeps every
// feature with non-degenerate geometry.
func FilterArea(fc *geojson.FeatureCollection, minM2, maxM2 float64) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		area := math.Abs(geo.Area(f.Geometry))
		if area <= minM2 {
			continue
		}
		if maxM2 > 0 && area >= maxM2 {
			continue
		}
		out.Append(cloneFeature(f))
	}
	return out
}

// SpatialJoin returns features of src satisfying the predicate against any
// feature of tgt. Supported predicates: intersects, within, contains. When
// carryFields is non-empty, the named properties of the first matching target
// feature are copied onto each result with a "tgt_" prefix.
func SpatialJoin(src, tgt *geojson.FeatureCollection, predicate string, carryFields []string) (*geojson.FeatureCollection, error) {
	var match func(a, b orb.Geometry) bool
	switch predicate {
	case "intersects":
		match = geometriesIntersect
	case "within":
		match = geometryWithin
	case "contains":
		match = func(a, b orb.Geometry) bool { return geometryWithin(b, a) }
	default:
		return nil, fmt.Errorf("%w: %s", ErrBadPredicate, predicate)
	}

	out := geojson.NewFeatureCollection()
	for _, f := range src.Features {
		if f.Geometry == nil {
			continue
		}
		for _, g := range tgt.Features {
			if g.Geometry == nil || !match(f.Geometry, g.Geometry) {
				continue
			}
			nf := cloneFeature(f)
			for _, field := range carryFields {
				if v, ok := g.Properties[field]; ok {
					nf.Properties["tgt_"+field] = v
				}
			}
			out.Append(nf)
			break
		}
	}
	return out, nil
}

// Enrich copies the collection and adds derived attributes to each feature:
// area_m2 and the centroid as centroid_lon / centroid_lat.
func Enrich(fc *geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, f := range fc.Features {
		nf := cloneFeature(f)
		if f.Geometry != nil {
			nf.Properties["area_m2"] = math.Abs(geo.Area(f.Geometry))
			centroid, _ := planar.CentroidArea(f.Geometry)
			nf.Properties["centroid_lon"] = centroid[0]
			nf.Properties["centroid_lat"] = centroid[1]
		}
		out.Append(nf)
	}
	return out
}

// PropertySummary describes one attribute across a collection.
type PropertySummary struct {
	Types    []string      `json:"types"`
	Examples []interface{} `json:"examples"`
	NonNull  int           `json:"count_non_null"`
}

// Description summarizes the attribute schema of a collection.
type Description struct {
	FeatureCount int                        `json:"feature_count"`
	Properties   map[string]PropertySummary `json:"attributes"`
}

// Describe reports per-property types, example values, and non-null counts.
func Describe(fc *geojson.FeatureCollection) Description {
	type acc struct {
		types    map[string]bool
		examples []interface{}
		nonNull  int
	}
	accs := make(map[string]*acc)

	for _, f := range fc.Features {
		for k, v := range f.Properties {
			a, ok := accs[k]
			if !ok {
				a = &acc{types: make(map[string]bool)}
				accs[k] = a
			}
			if v == nil {
				a.types["null"] = true
				continue
			}
			a.types[typeName(v)] = true
			a.nonNull++
			if len(a.examples) < 5 && !containsValue(a.examples, v) {
				a.examples = append(a.examples, v)
			}
		}
	}

	props := make(map[string]PropertySummary, len(accs))
	for k, a := range accs {
		types := make([]string, 0, len(a.types))
		for t := range a.types {
			types = append(types, t)
		}
		sort.Strings(types)
		props[k] = PropertySummary{Types: types, Examples: a.examples, NonNull: a.nonNull}
	}

	return Description{FeatureCount: len(fc.Features), Properties: props}
}

// Merge concatenates the features of several collections into one.
func Merge(fcs ...*geojson.FeatureCollection) *geojson.FeatureCollection {
	out := geojson.NewFeatureCollection()
	for _, fc := range fcs {
		for _, f := range fc.Features {
			out.Append(cloneFeature(f))
		}
	}
	return out
}

// FeatureIDs returns string identifiers for the features of a collection,
// preferring the GeoJSON id, then a handful of common name properties, then
// the positional index.
func FeatureIDs(fc *geojson.FeatureCollection) []string {
	ids := make([]string, 0, len(fc.Features))
	for i, f := range fc.Features {
		ids = append(ids, featureID(f, i))
	}
	return ids
}

func featureID(f *geojson.Feature, index int) string {
	if f.ID != nil {
		return fmt.Sprintf("%v", f.ID)
	}
	for _, key := range []string{"id", "ID", "name", "Name", "NAME"} {
		if v, ok := f.Properties[key]; ok && v != nil {
			return fmt.Sprintf("%v", v)
		}
	}
	return fmt.Sprintf("#%d", index)
}

func cloneFeature(f *geojson.Feature) *geojson.Feature {
	nf := geojson.NewFeature(cloneGeometry(f.Geometry))
	nf.ID = f.ID
	nf.Properties = f.Properties.Clone()
	return nf
}

func cloneGeometry(g orb.Geometry) orb.Geometry {
	if g == nil {
		return nil
	}
	return orb.Clone(g)
}

func compare(got interface{}, op string, want interface{}) bool {
	gf, gok := toFloat(got)
	wf, wok := toFloat(want)
	if gok && wok {
		switch op {
		case OpEq:
			return gf == wf
		case OpNe:
			return gf != wf
		case OpGt:
			return gf > wf
		case OpGte:
			return gf >= wf
		case OpLt:
			return gf < wf
		case OpLte:
			return gf <= wf
		}
		return false
	}

	gs := fmt.Sprintf("%v", got)
	ws := fmt.Sprintf("%v", want)
	switch op {
	case OpEq:
		return gs == ws
	case OpNe:
		return gs != ws
	case OpGt:
		return gs > ws
	case OpGte:
		return gs >= ws
	case OpLt:
		return gs < ws
	case OpLte:
		return gs <= ws
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func typeName(v interface{}) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, float32, int, int32, int64, uint:
		return "number"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func containsValue(list []interface{}, v interface{}) bool {
	for _, x := range list {
		if fmt.Sprintf("%v", x) == fmt.Sprintf("%v", v) {
			return true
		}
	}
	return false
}
