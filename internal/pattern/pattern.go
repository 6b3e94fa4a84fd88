// Package pattern renders the tamper-evident watermark layer drawn
// beneath certificate content. Rendering is fully deterministic: the
// same configuration always produces byte-identical output, so a
// rendered certificate can be cross-checked against the configuration
// on file. There is no randomness and no hashing here.
package pattern

import (
	"fmt"
	"sort"
)

// Pattern family names
const (
	FamilyDiamonds  = "diamonds"
	FamilyGeometric = "geometric"
	FamilyIslamic   = "islamic"
	FamilyWaves     = "waves"
	FamilyDots      = "dots"
	FamilyLines     = "lines"
)

// Config selects a watermark rendering. PrimaryColor is any SVG color
// literal; Opacity is the base opacity every layer scales from.
type Config struct {
	Family       string  `json:"family"`
	PrimaryColor string  `json:"primary_color"`
	Opacity      float64 `json:"opacity"`
}

// Successive layers within a family scale the base opacity by these
// fixed ratios.
var layerRatios = [3]float64{1.0, 0.8, 0.6}

// Corner ornament rings scale the base opacity by these fixed steps,
// outermost ring first.
var cornerSteps = [3]float64{0.15, 0.25, 0.35}

var families = map[string]func() []Shape{
	FamilyDiamonds:  diamondsTile,
	FamilyGeometric: geometricTile,
	FamilyIslamic:   islamicTile,
	FamilyWaves:     wavesTile,
	FamilyDots:      dotsTile,
	FamilyLines:     linesTile,
}

// Families returns the valid family names in stable order
func Families() []string {
	names := make([]string, 0, len(families))
	for name := range families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidFamily reports whether name is a known pattern family
func ValidFamily(name string) bool {
	_, ok := families[name]
	return ok
}

// Validate checks a pattern configuration
func (c Config) Validate() error {
	if !ValidFamily(c.Family) {
		return fmt.Errorf("unknown pattern family %q", c.Family)
	}
	if c.PrimaryColor == "" {
		return fmt.Errorf("primary color is required")
	}
	if c.Opacity < 0 || c.Opacity > 1 {
		return fmt.Errorf("opacity %g outside [0,1]", c.Opacity)
	}
	return nil
}

// Shape kinds
const (
	KindPolygon  = "polygon"
	KindPolyline = "polyline"
	KindCircle   = "circle"
	KindLine     = "line"
)

// Point is a coordinate inside the tile unit cell
type Point struct {
	X, Y float64
}

// Shape is one drawable element of the tile unit cell. Which fields
// apply depends on Kind. OpacityRatio scales the configured base
// opacity for this layer.
type Shape struct {
	Kind         string
	Points       []Point // polygon, polyline
	CX, CY, R    float64 // circle
	X1, Y1       float64 // line
	X2, Y2       float64 // line
	StrokeWidth  float64 // line, polyline
	OpacityRatio float64
}

// TileSize is the side length of the repeating unit cell
const TileSize = 80.0

// Tile returns the unit cell shapes for the configured family, in
// fixed drawing order.
func (c Config) Tile() ([]Shape, error) {
	build, ok := families[c.Family]
	if !ok {
		return nil, fmt.Errorf("unknown pattern family %q", c.Family)
	}
	return build(), nil
}

// diamond returns a rotated square centered at (cx, cy)
func diamond(cx, cy, half, ratio float64) Shape {
	return Shape{
		Kind: KindPolygon,
		Points: []Point{
			{cx, cy - half},
			{cx + half, cy},
			{cx, cy + half},
			{cx - half, cy},
		},
		OpacityRatio: ratio,
	}
}

func diamondsTile() []Shape {
	const mid = TileSize / 2
	return []Shape{
		diamond(mid, mid, 32, layerRatios[0]),
		diamond(mid, mid, 22, layerRatios[1]),
		diamond(mid, mid, 12, layerRatios[2]),
	}
}

func geometricTile() []Shape {
	const mid = TileSize / 2
	// Octagon, inner square, center circle.
	octagon := Shape{
		Kind: KindPolygon,
		Points: []Point{
			{mid - 12, mid - 28}, {mid + 12, mid - 28},
			{mid + 28, mid - 12}, {mid + 28, mid + 12},
			{mid + 12, mid + 28}, {mid - 12, mid + 28},
			{mid - 28, mid + 12}, {mid - 28, mid - 12},
		},
		OpacityRatio: layerRatios[0],
	}
	square := Shape{
		Kind: KindPolygon,
		Points: []Point{
			{mid - 16, mid - 16}, {mid + 16, mid - 16},
			{mid + 16, mid + 16}, {mid - 16, mid + 16},
		},
		OpacityRatio: layerRatios[1],
	}
	center := Shape{Kind: KindCircle, CX: mid, CY: mid, R: 7, OpacityRatio: layerRatios[2]}

	return []Shape{octagon, square, center}
}

func islamicTile() []Shape {
	const mid = TileSize / 2
	// Eight-pointed star: two overlaid rotated squares, then a center
	// circle, the classic girih motif.
	upright := Shape{
		Kind: KindPolygon,
		Points: []Point{
			{mid - 24, mid - 24}, {mid + 24, mid - 24},
			{mid + 24, mid + 24}, {mid - 24, mid + 24},
		},
		OpacityRatio: layerRatios[0],
	}
	rotated := diamond(mid, mid, 34, layerRatios[1])
	center := Shape{Kind: KindCircle, CX: mid, CY: mid, R: 9, OpacityRatio: layerRatios[2]}

	return []Shape{upright, rotated, center}
}

func wavesTile() []Shape {
	// Three zigzag bands at fixed vertical offsets.
	band := func(y, ratio float64) Shape {
		return Shape{
			Kind: KindPolyline,
			Points: []Point{
				{0, y}, {10, y - 6}, {20, y}, {30, y - 6},
				{40, y}, {50, y - 6}, {60, y}, {70, y - 6}, {80, y},
			},
			StrokeWidth:  2,
			OpacityRatio: ratio,
		}
	}
	return []Shape{
		band(20, layerRatios[0]),
		band(44, layerRatios[1]),
		band(68, layerRatios[2]),
	}
}

func dotsTile() []Shape {
	// 3x3 grid, alternating dot sizes. Layer assignment cycles through
	// the fixed opacity ratios.
	var shapes []Shape
	radii := [3]float64{5, 3.5, 2}
	idx := 0
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			layer := idx % 3
			shapes = append(shapes, Shape{
				Kind:         KindCircle,
				CX:           float64(col)*26 + 14,
				CY:           float64(row)*26 + 14,
				R:            radii[layer],
				OpacityRatio: layerRatios[layer],
			})
			idx++
		}
	}
	return shapes
}

func linesTile() []Shape {
	// Diagonal strokes at three offsets.
	stroke := func(offset, ratio float64) Shape {
		return Shape{
			Kind:         KindLine,
			X1:           offset,
			Y1:           TileSize,
			X2:           offset + TileSize,
			Y2:           0,
			StrokeWidth:  2,
			OpacityRatio: ratio,
		}
	}
	return []Shape{
		stroke(-TileSize/2, layerRatios[0]),
		stroke(0, layerRatios[1]),
		stroke(TileSize/2, layerRatios[2]),
	}
}
