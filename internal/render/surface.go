// Package render draws the engine's Surface primitives onto an ebiten image.
package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"
)

var hudFace = text.NewGoXFace(basicfont.Face7x13)

// Surface implements game.Surface on an ebiten image. Transforms compose
// canvas-style: each Translate or Rotate applies before the existing ones.
type Surface struct {
	dst   *ebiten.Image
	geo   ebiten.GeoM
	stack []ebiten.GeoM
}

// NewSurface wraps dst with an identity transform.
func NewSurface(dst *ebiten.Image) *Surface {
	return &Surface{dst: dst}
}

func (s *Surface) Clear(c color.Color) {
	s.dst.Fill(c)
}

// FillRect fills the rectangle under the current transform. Rotated
// rectangles are filled as a path.
func (s *Surface) FillRect(x, y, w, h float64, c color.Color) {
	if s.geo.IsInvertible() && isTranslation(s.geo) {
		tx, ty := s.geo.Apply(x, y)
		vector.FillRect(s.dst, float32(tx), float32(ty), float32(w), float32(h), c, false)
		return
	}

	var path vector.Path
	corners := [4][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i, p := range corners {
		dx, dy := s.geo.Apply(p[0], p[1])
		if i == 0 {
			path.MoveTo(float32(dx), float32(dy))
			continue
		}
		path.LineTo(float32(dx), float32(dy))
	}
	path.Close()

	op := &vector.DrawPathOptions{AntiAlias: true}
	op.ColorScale.ScaleWithColor(c)
	vector.FillPath(s.dst, &path, &vector.FillOptions{}, op)
}

// FillCircle fills a circle whose centre is mapped by the current
// transform. Transforms are rigid, so the radius is unchanged.
func (s *Surface) FillCircle(cx, cy, r float64, c color.Color) {
	x, y := s.geo.Apply(cx, cy)
	vector.FillCircle(s.dst, float32(x), float32(y), float32(r), c, true)
}

func (s *Surface) Save() {
	s.stack = append(s.stack, s.geo)
}

func (s *Surface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.geo = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *Surface) Translate(x, y float64) {
	var t ebiten.GeoM
	t.Translate(x, y)
	s.prepend(t)
}

func (s *Surface) Rotate(rad float64) {
	var t ebiten.GeoM
	t.Rotate(rad)
	s.prepend(t)
}

// prepend makes t apply to points before the current transform.
func (s *Surface) prepend(t ebiten.GeoM) {
	t.Concat(s.geo)
	s.geo = t
}

func isTranslation(g ebiten.GeoM) bool {
	return g.Element(0, 0) == 1 && g.Element(0, 1) == 0 &&
		g.Element(1, 0) == 0 && g.Element(1, 1) == 1
}

// Text draws a HUD string with its top-left corner at (x, y).
func Text(dst *ebiten.Image, s string, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(dst, s, hudFace, op)
}

// TextWidth returns the advance width of s in the HUD font.
func TextWidth(s string) float64 {
	w, _ := text.Measure(s, hudFace, 0)
	return w
}
