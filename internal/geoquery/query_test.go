package geoquery

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// squareFeature builds a square polygon centered at (lon, lat) with half-side
// d degrees. Around Madagascar d=0.0005 is roughly 11,700 m2.
func squareFeature(lon, lat, d float64, props geojson.Properties) *geojson.Feature {
	ring := orb.Ring{
		{lon - d, lat - d},
		{lon + d, lat - d},
		{lon + d, lat + d},
		{lon - d, lat + d},
		{lon - d, lat - d},
	}
	f := geojson.NewFeature(orb.Polygon{ring})
	if props != nil {
		f.Properties = props
	}
	return f
}

func pointFeature(lon, lat float64, props geojson.Properties) *geojson.Feature {
	f := geojson.NewFeature(orb.Point{lon, lat})
	if props != nil {
		f.Properties = props
	}
	return f
}

func fokontanyFixture() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(squareFeature(47.0, -19.0, 0.01, geojson.Properties{"Commune": "Sandrohy", "Region": "Amoron'i Mania"}))
	fc.Append(squareFeature(47.1, -19.1, 0.01, geojson.Properties{"Commune": "Ambositra", "Region": "Amoron'i Mania"}))
	fc.Append(squareFeature(47.2, -19.2, 0.01, geojson.Properties{"Commune": "Sandrohy", "Region": "Amoron'i Mania"}))
	return fc
}

func TestFilterAttribute(t *testing.T) {
	fc := fokontanyFixture()

	t.Run("equality match", func(t *testing.T) {
		got, err := FilterAttribute(fc, "Commune", OpEq, "Sandrohy")
		if err != nil {
			t.Fatalf("FilterAttribute failed: %v", err)
		}
		if len(got.Features) != 2 {
			t.Fatalf("expected 2 matches, got %d", len(got.Features))
		}
		for _, f := range got.Features {
			if f.Properties.MustString("Commune") != "Sandrohy" {
				t.Errorf("non-matching feature leaked through: %v", f.Properties["Commune"])
			}
		}
	})

	t.Run("no match returns empty collection", func(t *testing.T) {
		got, err := FilterAttribute(fc, "Commune", OpEq, "Nowhere")
		if err != nil {
			t.Fatalf("FilterAttribute failed: %v", err)
		}
		if len(got.Features) != 0 {
			t.Errorf("expected empty result, got %d features", len(got.Features))
		}
	})

	t.Run("idempotent under re-application", func(t *testing.T) {
		once, err := FilterAttribute(fc, "Commune", OpEq, "Sandrohy")
		if err != nil {
			t.Fatalf("first filter failed: %v", err)
		}
		twice, err := FilterAttribute(once, "Commune", OpEq, "Sandrohy")
		if err != nil {
			t.Fatalf("second filter failed: %v", err)
		}
		if len(once.Features) != len(twice.Features) {
			t.Errorf("filter not idempotent: %d then %d features", len(once.Features), len(twice.Features))
		}
	})

	t.Run("missing property never matches", func(t *testing.T) {
		got, err := FilterAttribute(fc, "Population", OpGt, 0)
		if err != nil {
			t.Fatalf("FilterAttribute failed: %v", err)
		}
		if len(got.Features) != 0 {
			t.Errorf("expected no matches on missing property, got %d", len(got.Features))
		}
	})

	t.Run("numeric comparison", func(t *testing.T) {
		nc := geojson.NewFeatureCollection()
		nc.Append(pointFeature(47, -19, geojson.Properties{"trees": float64(120)}))
		nc.Append(pointFeature(47, -19, geojson.Properties{"trees": float64(30)}))

		got, err := FilterAttribute(nc, "trees", OpGt, float64(50))
		if err != nil {
			t.Fatalf("FilterAttribute failed: %v", err)
		}
		if len(got.Features) != 1 {
			t.Fatalf("expected 1 match, got %d", len(got.Features))
		}
	})

	t.Run("bad operator rejected", func(t *testing.T) {
		if _, err := FilterAttribute(fc, "Commune", "like", "S%"); err == nil {
			t.Error("expected error for unsupported operator")
		}
	})

	t.Run("source collection untouched", func(t *testing.T) {
		before := len(fc.Features)
		got, _ := FilterAttribute(fc, "Commune", OpEq, "Sandrohy")
		got.Features[0].Properties["Commune"] = "Mutated"
		if len(fc.Features) != before {
			t.Errorf("source feature count changed")
		}
		if fc.Features[0].Properties.MustString("Commune") != "Sandrohy" {
			t.Errorf("source properties mutated through result")
		}
	})
}

func TestFilterArea(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	// ~11,700 m2
	fc.Append(squareFeature(47.0, -19.0, 0.0005, geojson.Properties{"name": "big"}))
	// ~470 m2
	fc.Append(squareFeature(47.1, -19.1, 0.0001, geojson.Properties{"name": "small"}))
	// degenerate: a point has zero area
	fc.Append(pointFeature(47.2, -19.2, geojson.Properties{"name": "point"}))

	t.Run("threshold zero keeps non-degenerate geometry", func(t *testing.T) {
		got := FilterArea(fc, 0, 0)
		if len(got.Features) != 2 {
			t.Fatalf("expected 2 features with positive area, got %d", len(got.Features))
		}
	})

	t.Run("threshold separates by computed area", func(t *testing.T) {
		got := FilterArea(fc, 5000, 0)
		if len(got.Features) != 1 {
			t.Fatalf("expected 1 feature above 5000 m2, got %d", len(got.Features))
		}
		if got.Features[0].Properties.MustString("name") != "big" {
			t.Errorf("wrong feature kept: %v", got.Features[0].Properties["name"])
		}
	})

	t.Run("upper bound excludes large features", func(t *testing.T) {
		got := FilterArea(fc, 0, 5000)
		if len(got.Features) != 1 {
			t.Fatalf("expected 1 feature below 5000 m2, got %d", len(got.Features))
		}
		if got.Features[0].Properties.MustString("name") != "small" {
			t.Errorf("wrong feature kept: %v", got.Features[0].Properties["name"])
		}
	})
}

func TestSpatialJoin(t *testing.T) {
	boundaries := geojson.NewFeatureCollection()
	boundaries.Append(squareFeature(47.0, -19.0, 0.05, geojson.Properties{"Commune": "Sandrohy"}))
	boundaries.Append(squareFeature(48.0, -20.0, 0.05, geojson.Properties{"Commune": "Ambositra"}))

	plots := geojson.NewFeatureCollection()
	plots.Append(squareFeature(47.0, -19.0, 0.001, geojson.Properties{"plot": "inside"}))
	plots.Append(squareFeature(45.0, -22.0, 0.001, geojson.Properties{"plot": "outside"}))

	t.Run("within keeps enclosed features", func(t *testing.T) {
		got, err := SpatialJoin(plots, boundaries, "within", nil)
		if err != nil {
			t.Fatalf("SpatialJoin failed: %v", err)
		}
		if len(got.Features) != 1 {
			t.Fatalf("expected 1 enclosed plot, got %d", len(got.Features))
		}
		if got.Features[0].Properties.MustString("plot") != "inside" {
			t.Errorf("wrong plot joined: %v", got.Features[0].Properties["plot"])
		}
	})

	t.Run("intersects with overlapping polygons", func(t *testing.T) {
		overlapping := geojson.NewFeatureCollection()
		overlapping.Append(squareFeature(47.04, -19.0, 0.02, geojson.Properties{"plot": "edge"}))

		got, err := SpatialJoin(overlapping, boundaries, "intersects", nil)
		if err != nil {
			t.Fatalf("SpatialJoin failed: %v", err)
		}
		if len(got.Features) != 1 {
			t.Errorf("expected overlap to intersect, got %d features", len(got.Features))
		}
	})

	t.Run("result never exceeds source size", func(t *testing.T) {
		got, err := SpatialJoin(plots, boundaries, "intersects", nil)
		if err != nil {
			t.Fatalf("SpatialJoin failed: %v", err)
		}
		if len(got.Features) > len(plots.Features) {
			t.Errorf("join result %d larger than source %d", len(got.Features), len(plots.Features))
		}
	})

	t.Run("carry fields copies target properties", func(t *testing.T) {
		got, err := SpatialJoin(plots, boundaries, "within", []string{"Commune"})
		if err != nil {
			t.Fatalf("SpatialJoin failed: %v", err)
		}
		if len(got.Features) != 1 {
			t.Fatalf("expected 1 match, got %d", len(got.Features))
		}
		if got.Features[0].Properties.MustString("tgt_Commune") != "Sandrohy" {
			t.Errorf("carry field missing: %v", got.Features[0].Properties)
		}
	})

	t.Run("contains is the inverse of within", func(t *testing.T) {
		got, err := SpatialJoin(boundaries, plots, "contains", nil)
		if err != nil {
			t.Fatalf("SpatialJoin failed: %v", err)
		}
		if len(got.Features) != 1 {
			t.Fatalf("expected 1 boundary containing a plot, got %d", len(got.Features))
		}
		if got.Features[0].Properties.MustString("Commune") != "Sandrohy" {
			t.Errorf("wrong boundary: %v", got.Features[0].Properties["Commune"])
		}
	})

	t.Run("bad predicate rejected", func(t *testing.T) {
		if _, err := SpatialJoin(plots, boundaries, "touches", nil); err == nil {
			t.Error("expected error for unsupported predicate")
		}
	})
}

func TestEnrich(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(squareFeature(47.0, -19.0, 0.0005, geojson.Properties{"name": "plot"}))

	got := Enrich(fc)
	if len(got.Features) != 1 {
		t.Fatalf("expected 1 feature, got %d", len(got.Features))
	}

	props := got.Features[0].Properties
	area, ok := props["area_m2"].(float64)
	if !ok || area <= 0 {
		t.Errorf("expected positive area_m2, got %v", props["area_m2"])
	}
	// ~11,700 m2 for a 0.001 degree square at this latitude
	if area < 8000 || area > 16000 {
		t.Errorf("area out of expected range: %v", area)
	}

	lon, _ := props["centroid_lon"].(float64)
	lat, _ := props["centroid_lat"].(float64)
	if lon < 46.99 || lon > 47.01 || lat < -19.01 || lat > -18.99 {
		t.Errorf("centroid off: (%v, %v)", lon, lat)
	}

	// Source must stay untouched.
	if _, exists := fc.Features[0].Properties["area_m2"]; exists {
		t.Error("enrichment mutated the source collection")
	}
}

func TestDescribe(t *testing.T) {
	fc := fokontanyFixture()
	fc.Append(pointFeature(47.3, -19.3, geojson.Properties{"Commune": nil, "trees": float64(12)}))

	desc := Describe(fc)
	if desc.FeatureCount != 4 {
		t.Fatalf("expected 4 features, got %d", desc.FeatureCount)
	}

	commune, ok := desc.Properties["Commune"]
	if !ok {
		t.Fatal("Commune attribute missing from description")
	}
	if commune.NonNull != 3 {
		t.Errorf("expected 3 non-null Commune values, got %d", commune.NonNull)
	}
	if len(commune.Examples) == 0 || len(commune.Examples) > 5 {
		t.Errorf("unexpected example count: %d", len(commune.Examples))
	}

	trees, ok := desc.Properties["trees"]
	if !ok {
		t.Fatal("trees attribute missing from description")
	}
	if len(trees.Types) != 1 || trees.Types[0] != "number" {
		t.Errorf("expected number type, got %v", trees.Types)
	}
}

func TestMerge(t *testing.T) {
	a := fokontanyFixture()
	b := geojson.NewFeatureCollection()
	b.Append(pointFeature(47, -19, geojson.Properties{"name": "p"}))

	merged := Merge(a, b)
	if len(merged.Features) != len(a.Features)+len(b.Features) {
		t.Errorf("expected %d features, got %d", len(a.Features)+len(b.Features), len(merged.Features))
	}
}

func TestFeatureIDs(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	withID := pointFeature(47, -19, nil)
	withID.ID = "f-1"
	fc.Append(withID)
	fc.Append(pointFeature(47, -19, geojson.Properties{"name": "named"}))
	fc.Append(pointFeature(47, -19, geojson.Properties{}))

	ids := FeatureIDs(fc)
	if len(ids) != 3 {
		t.Fatalf("expected 3 ids, got %d", len(ids))
	}
	if ids[0] != "f-1" {
		t.Errorf("expected GeoJSON id first, got %q", ids[0])
	}
	if ids[1] != "named" {
		t.Errorf("expected name property, got %q", ids[1])
	}
	if ids[2] != "#2" {
		t.Errorf("expected positional fallback, got %q", ids[2])
	}
}
