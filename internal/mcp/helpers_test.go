package mcp

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestArgGetters(t *testing.T) {
	args := map[string]interface{}{
		"str":      "value",
		"num":      3.5,
		"intish":   float64(7),
		"flag":     true,
		"list":     []interface{}{"a", "b"},
		"typed":    []string{"x", "y"},
		"stringed": 42,
	}

	if got := getStringArg(args, "str"); got != "value" {
		t.Errorf("getStringArg = %q", got)
	}
	if got := getStringArg(args, "stringed"); got != "42" {
		t.Errorf("non-string values should stringify, got %q", got)
	}
	if got := getStringArg(args, "absent"); got != "" {
		t.Errorf("absent key should yield empty string, got %q", got)
	}

	if got := getFloatArg(args, "num", 0); got != 3.5 {
		t.Errorf("getFloatArg = %v", got)
	}
	if got := getFloatArg(args, "absent", 1.5); got != 1.5 {
		t.Errorf("fallback not used, got %v", got)
	}

	if got := getIntArg(args, "intish", 0); got != 7 {
		t.Errorf("getIntArg = %v", got)
	}

	if !getBoolArg(args, "flag", false) {
		t.Error("getBoolArg should read true")
	}
	if getBoolArg(args, "absent", false) {
		t.Error("getBoolArg fallback not used")
	}

	if got := getStringSliceArg(args, "list"); len(got) != 2 || got[0] != "a" {
		t.Errorf("getStringSliceArg on []interface{} = %v", got)
	}
	if got := getStringSliceArg(args, "typed"); len(got) != 2 || got[1] != "y" {
		t.Errorf("getStringSliceArg on []string = %v", got)
	}
	if got := getStringSliceArg(args, "str"); got != nil {
		t.Errorf("non-slice should yield nil, got %v", got)
	}
}

func TestRequireStringArg(t *testing.T) {
	if _, err := requireStringArg(map[string]interface{}{}, "layer"); !errors.Is(err, errInvalidArgument) {
		t.Errorf("missing arg should be an invalid argument, got %v", err)
	}
	v, err := requireStringArg(map[string]interface{}{"layer": "fokontany"}, "layer")
	if err != nil || v != "fokontany" {
		t.Errorf("requireStringArg = %q, %v", v, err)
	}
}

func TestArtifactPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("generated name", func(t *testing.T) {
		path, err := artifactPath(dir, "", ".geojson")
		if err != nil {
			t.Fatalf("artifactPath failed: %v", err)
		}
		if filepath.Dir(path) != dir {
			t.Errorf("artifact escaped the output directory: %q", path)
		}
		if !strings.HasSuffix(path, ".geojson") {
			t.Errorf("missing extension: %q", path)
		}
	})

	t.Run("extension appended", func(t *testing.T) {
		path, err := artifactPath(dir, "result", ".html")
		if err != nil {
			t.Fatalf("artifactPath failed: %v", err)
		}
		if filepath.Base(path) != "result.html" {
			t.Errorf("unexpected name %q", path)
		}
	})

	t.Run("extension preserved", func(t *testing.T) {
		path, err := artifactPath(dir, "result.html", ".html")
		if err != nil {
			t.Fatalf("artifactPath failed: %v", err)
		}
		if filepath.Base(path) != "result.html" {
			t.Errorf("extension duplicated: %q", path)
		}
	})

	t.Run("traversal rejected", func(t *testing.T) {
		for _, bad := range []string{"../evil", "a/b", `a\b`, "/etc/passwd"} {
			if _, err := artifactPath(dir, bad, ".geojson"); !errors.Is(err, errInvalidArgument) {
				t.Errorf("name %q should be rejected, got %v", bad, err)
			}
		}
	})
}

func TestSummarize(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	for i := 0; i < maxSummaryIDs+5; i++ {
		f := geojson.NewFeature(orb.Point{47.0, -19.0})
		f.Properties = geojson.Properties{"name": fmt.Sprintf("f-%d", i)}
		fc.Append(f)
	}

	summary := summarize(fc)
	if summary["count"] != maxSummaryIDs+5 {
		t.Errorf("count = %v", summary["count"])
	}
	ids, ok := summary["feature_ids"].([]string)
	if !ok || len(ids) != maxSummaryIDs {
		t.Fatalf("feature_ids not truncated: %v", summary["feature_ids"])
	}
	if summary["ids_truncated"] != true {
		t.Error("ids_truncated should be set")
	}

	empty := summarize(geojson.NewFeatureCollection())
	if empty["count"] != 0 || empty["success"] != true {
		t.Errorf("empty collection should still be a success: %v", empty)
	}
}
