package driver

import "github.com/hoshinonyaruko/snake-in-browser/structs"

// Key names follow KeyboardEvent.key in the browser.
var keyDirections = map[string]structs.Direction{
	"ArrowUp":    structs.Up,
	"ArrowDown":  structs.Down,
	"ArrowLeft":  structs.Left,
	"ArrowRight": structs.Right,
}

// HandleKey applies the action bound to key and reports whether the key
// is bound at all.
func (d *Driver) HandleKey(key string) bool {
	if dir, ok := keyDirections[key]; ok {
		d.ChangeDirection(dir)
		return true
	}
	switch key {
	case " ", "Space", "Spacebar":
		d.TogglePause()
		return true
	case "r", "R":
		d.Reset()
		return true
	}
	return false
}
