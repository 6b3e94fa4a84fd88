package pattern

import (
	"fmt"
	"strconv"
	"strings"
)

// Default document size for a rendered certificate page, A4 landscape
// at 96dpi.
const (
	DocWidth  = 1123.0
	DocHeight = 794.0
)

// Corner ornament geometry: three concentric rings per corner, radii
// outermost first, matching cornerSteps.
var cornerRadii = [3]float64{120, 84, 48}

// Render produces the complete watermark layer as an SVG document:
// the repeating tile as a pattern fill plus the four corner
// ornaments. Output is byte-identical for identical configurations.
func Render(cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	tile, err := RenderTile(cfg)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(DocWidth), num(DocHeight), num(DocWidth), num(DocHeight))
	b.WriteString("\n<defs>\n")
	b.WriteString(tile)
	b.WriteString("</defs>\n")
	fmt.Fprintf(&b, `<rect width="%s" height="%s" fill="url(#watermark)"/>`, num(DocWidth), num(DocHeight))
	b.WriteString("\n")
	writeCorners(&b, cfg)
	b.WriteString("</svg>\n")

	return b.String(), nil
}

// RenderTile produces the repeating unit cell as an SVG <pattern>
// definition with id "watermark".
func RenderTile(cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	shapes, err := cfg.Tile()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<pattern id="watermark" width="%s" height="%s" patternUnits="userSpaceOnUse">`,
		num(TileSize), num(TileSize))
	b.WriteString("\n")

	for _, shape := range shapes {
		writeShape(&b, shape, cfg)
	}

	b.WriteString("</pattern>\n")

	return b.String(), nil
}

func writeShape(b *strings.Builder, shape Shape, cfg Config) {
	opacity := num(cfg.Opacity * shape.OpacityRatio)

	switch shape.Kind {
	case KindPolygon:
		fmt.Fprintf(b, `<polygon points="%s" fill="%s" fill-opacity="%s"/>`,
			points(shape.Points), cfg.PrimaryColor, opacity)
	case KindPolyline:
		fmt.Fprintf(b, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%s" stroke-opacity="%s"/>`,
			points(shape.Points), cfg.PrimaryColor, num(shape.StrokeWidth), opacity)
	case KindCircle:
		fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="%s" fill-opacity="%s"/>`,
			num(shape.CX), num(shape.CY), num(shape.R), cfg.PrimaryColor, opacity)
	case KindLine:
		fmt.Fprintf(b, `<line x1="%s" y1="%s" x2="%s" y2="%s" stroke="%s" stroke-width="%s" stroke-opacity="%s"/>`,
			num(shape.X1), num(shape.Y1), num(shape.X2), num(shape.Y2),
			cfg.PrimaryColor, num(shape.StrokeWidth), opacity)
	}
	b.WriteString("\n")
}

// writeCorners draws the ring ornament at each of the four corners.
// Ring opacities follow the fixed cornerSteps scaled by the base
// opacity, outermost ring first.
func writeCorners(b *strings.Builder, cfg Config) {
	corners := [4]Point{
		{0, 0},
		{DocWidth, 0},
		{0, DocHeight},
		{DocWidth, DocHeight},
	}

	for _, corner := range corners {
		for i := range cornerRadii {
			fmt.Fprintf(b, `<circle cx="%s" cy="%s" r="%s" fill="%s" fill-opacity="%s"/>`,
				num(corner.X), num(corner.Y), num(cornerRadii[i]),
				cfg.PrimaryColor, num(cfg.Opacity*cornerSteps[i]))
			b.WriteString("\n")
		}
	}
}

func points(pts []Point) string {
	parts := make([]string, len(pts))
	for i, p := range pts {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

// num formats a coordinate or opacity with a stable, minimal decimal
// representation so output stays byte-identical across runs.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
