package game

import "image/color"

// Surface is the drawing target the engine renders through. Transforms
// follow canvas semantics: Translate and Rotate apply to subsequent
// primitives, and Save/Restore push and pop the current transform.
type Surface interface {
	Clear(c color.Color)
	FillRect(x, y, w, h float64, c color.Color)
	FillCircle(cx, cy, r float64, c color.Color)
	Save()
	Restore()
	Translate(x, y float64)
	Rotate(rad float64)
}
