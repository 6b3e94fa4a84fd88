package pattern

import (
	"regexp"
	"strings"
	"testing"
)

func testConfig() Config {
	return Config{Family: FamilyIslamic, PrimaryColor: "#1a6b3c", Opacity: 0.3}
}

func TestRenderDeterministic(t *testing.T) {
	first, err := Render(testConfig())
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	second, err := Render(testConfig())
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	if first != second {
		t.Fatalf("identical configurations must render byte-identical output")
	}
}

func TestRenderAllFamilies(t *testing.T) {
	for _, family := range Families() {
		cfg := testConfig()
		cfg.Family = family

		svg, err := Render(cfg)
		if err != nil {
			t.Fatalf("render error for %s: %v", family, err)
		}
		if !strings.Contains(svg, `<pattern id="watermark"`) {
			t.Fatalf("family %s missing tile pattern", family)
		}
		if got := strings.Count(svg, "<circle"); got < 12 {
			t.Fatalf("family %s expected at least 12 corner circles, got %d", family, got)
		}
	}
}

var opacityAttr = regexp.MustCompile(`(fill|stroke)-opacity="[^"]*"`)

func TestOpacityOnlyRescalesLayers(t *testing.T) {
	base := testConfig()
	faded := testConfig()
	faded.Opacity = 0.15

	a, err := Render(base)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	b, err := Render(faded)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	if a == b {
		t.Fatalf("changing opacity must change the rendered output")
	}

	// With opacity attributes stripped the geometry must be untouched.
	if opacityAttr.ReplaceAllString(a, "") != opacityAttr.ReplaceAllString(b, "") {
		t.Fatalf("changing opacity must not move any shape")
	}
}

func TestFamilyChangeKeepsCornerOrnaments(t *testing.T) {
	dots := testConfig()
	dots.Family = FamilyDots
	lines := testConfig()
	lines.Family = FamilyLines

	a, err := Render(dots)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	b, err := Render(lines)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	// The tile differs, the corner ornament section does not.
	cornersA := a[strings.Index(a, "</defs>"):]
	cornersB := b[strings.Index(b, "</defs>"):]
	if cornersA != cornersB {
		t.Fatalf("corner ornaments must not depend on the pattern family")
	}

	tileA, _ := RenderTile(dots)
	tileB, _ := RenderTile(lines)
	if tileA == tileB {
		t.Fatalf("different families must produce different tiles")
	}
}

func TestLayerOpacityRatios(t *testing.T) {
	cfg := testConfig()
	cfg.Family = FamilyDiamonds
	cfg.Opacity = 0.5

	tile, err := RenderTile(cfg)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}

	// Three nested diamonds at ratios 1.0, 0.8, 0.6 of the base.
	for _, want := range []string{`fill-opacity="0.5"`, `fill-opacity="0.4"`, `fill-opacity="0.3"`} {
		if !strings.Contains(tile, want) {
			t.Fatalf("tile missing %s:\n%s", want, tile)
		}
	}
}

func TestValidate(t *testing.T) {
	bad := testConfig()
	bad.Family = "plaid"
	if _, err := Render(bad); err == nil {
		t.Fatalf("expected error for unknown family")
	}

	bad = testConfig()
	bad.Opacity = 1.5
	if _, err := Render(bad); err == nil {
		t.Fatalf("expected error for out-of-range opacity")
	}

	bad = testConfig()
	bad.PrimaryColor = ""
	if _, err := Render(bad); err == nil {
		t.Fatalf("expected error for missing color")
	}
}
