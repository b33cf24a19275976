package game

// Key is an engine-level key identifier. Platform shells map their own key
// codes onto these.
type Key int

const (
	KeyW Key = iota
	KeyA
	KeyS
	KeyD
	KeyJ
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	Key1
	keyCount
)

var keyNames = [keyCount]string{
	KeyW: "W", KeyA: "A", KeyS: "S", KeyD: "D", KeyJ: "J",
	KeyUp: "Up", KeyDown: "Down", KeyLeft: "Left", KeyRight: "Right", Key1: "1",
}

func (k Key) String() string {
	if k < 0 || k >= keyCount {
		return "?"
	}
	return keyNames[k]
}

// InputState is the latched key map the engine reads once per tick.
type InputState struct {
	down     [keyCount]bool
	prevDown [keyCount]bool
}

// Press marks k as held.
func (s *InputState) Press(k Key) {
	if k >= 0 && k < keyCount {
		s.down[k] = true
	}
}

// Release marks k as no longer held.
func (s *InputState) Release(k Key) {
	if k >= 0 && k < keyCount {
		s.down[k] = false
	}
}

// Set sets k to the given held state.
func (s *InputState) Set(k Key, held bool) {
	if held {
		s.Press(k)
		return
	}
	s.Release(k)
}

// Pressed reports whether k is currently held.
func (s *InputState) Pressed(k Key) bool {
	return k >= 0 && k < keyCount && s.down[k]
}

// justPressed reports whether k went down since the last latch.
func (s *InputState) justPressed(k Key) bool {
	return s.Pressed(k) && !s.prevDown[k]
}

// latch records the current key map as the previous tick's.
func (s *InputState) latch() {
	s.prevDown = s.down
}

// InputSource feeds key events into the engine's input state. Poll is called
// once at the start of every running tick.
type InputSource interface {
	Poll(state *InputState)
}

// InputFunc adapts a function to InputSource.
type InputFunc func(state *InputState)

func (f InputFunc) Poll(state *InputState) { f(state) }

// Bindings maps the four driving intents and the fire key for one seat.
type Bindings struct {
	Forward, Backward, Left, Right, Fire Key
}

var (
	// PrimaryBindings drive the local player: WASD to move, J to fire.
	PrimaryBindings = Bindings{Forward: KeyW, Backward: KeyS, Left: KeyA, Right: KeyD, Fire: KeyJ}
	// SecondaryBindings drive the second seat in hot-seat play.
	SecondaryBindings = Bindings{Forward: KeyUp, Backward: KeyDown, Left: KeyLeft, Right: KeyRight, Fire: Key1}
)

// intent is what one seat asked for in a tick.
type intent struct {
	forward, backward bool
	rotate            float64
	fire              bool
}

func (b Bindings) read(s *InputState) intent {
	var in intent
	in.forward = s.Pressed(b.Forward)
	in.backward = s.Pressed(b.Backward)
	if s.Pressed(b.Left) {
		in.rotate -= RotationStep
	}
	if s.Pressed(b.Right) {
		in.rotate += RotationStep
	}
	in.fire = s.justPressed(b.Fire)
	return in
}
