package game

import "image/color"

var (
	// HostColor is used for the slot 0 tank.
	HostColor = color.RGBA{R: 0x2e, G: 0xb8, B: 0x4b, A: 0xff}
	// GuestColor is used for the slot 1 tank.
	GuestColor = color.RGBA{R: 0xd6, G: 0x3a, B: 0x3a, A: 0xff}
)

// Player pairs a display name with the tank they drive.
type Player struct {
	Name  string
	Score int
	Slot  int
	Tank  *Tank
}

// slotColor returns the tank colour for a slot.
func slotColor(slot int) color.RGBA {
	if slot == 0 {
		return HostColor
	}
	return GuestColor
}
