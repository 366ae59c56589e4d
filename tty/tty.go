// Package tty plays the game in a terminal. Each grid cell is drawn two
// columns wide so the board keeps its proportions.
package tty

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/hoshinonyaruko/snake-in-browser/driver"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

const (
	runeHead = '@'
	runeBody = 'o'
	runeFood = '*'
	runeWall = '#'
)

var (
	styleBoard = tcell.StyleDefault
	styleWall  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHead  = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleBody  = tcell.StyleDefault.Foreground(tcell.ColorLime)
	styleFood  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleText  = tcell.StyleDefault.Foreground(tcell.ColorYellow)
)

// keyName maps a terminal key onto the browser key names driver.HandleKey
// understands. Unbound keys return "".
func keyName(ev *tcell.EventKey) string {
	switch ev.Key() {
	case tcell.KeyUp:
		return "ArrowUp"
	case tcell.KeyDown:
		return "ArrowDown"
	case tcell.KeyLeft:
		return "ArrowLeft"
	case tcell.KeyRight:
		return "ArrowRight"
	case tcell.KeyRune:
		switch r := ev.Rune(); r {
		case ' ', 'r', 'R':
			return string(r)
		}
	}
	return ""
}

func isQuit(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' || ev.Rune() == 'Q'
	}
	return false
}

// Run draws every snapshot on screen and forwards keys to d until the
// player quits, ctx is done or the driver stops publishing. screen must
// already be initialised; Run does not call Fini.
func Run(ctx context.Context, screen tcell.Screen, d *driver.Driver) error {
	screen.HideCursor()
	updates, cancel := d.Subscribe(8)
	defer cancel()

	Draw(screen, d.Snapshot())

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go screen.ChannelEvents(events, quit)

	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				return nil
			}
			Draw(screen, snap)
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if isQuit(ev) {
					return nil
				}
				if name := keyName(ev); name != "" {
					d.HandleKey(name)
				}
			case *tcell.EventResize:
				screen.Sync()
				Draw(screen, d.Snapshot())
			}
		}
	}
}

// Draw paints one snapshot: a border, the board, and a status line below.
func Draw(screen tcell.Screen, snap structs.Snapshot) {
	screen.Clear()
	w, h := snap.Width, snap.Height

	for x := 0; x < w*2+2; x++ {
		screen.SetContent(x, 0, runeWall, nil, styleWall)
		screen.SetContent(x, h+1, runeWall, nil, styleWall)
	}
	for y := 1; y <= h; y++ {
		screen.SetContent(0, y, runeWall, nil, styleWall)
		screen.SetContent(w*2+1, y, runeWall, nil, styleWall)
		for x := 0; x < w; x++ {
			putCell(screen, x, y-1, ' ', styleBoard)
		}
	}

	putCell(screen, snap.State.Food.X, snap.State.Food.Y, runeFood, styleFood)
	for i := len(snap.State.Snake) - 1; i >= 0; i-- {
		c := snap.State.Snake[i]
		if i == 0 {
			putCell(screen, c.X, c.Y, runeHead, styleHead)
		} else {
			putCell(screen, c.X, c.Y, runeBody, styleBody)
		}
	}

	status := fmt.Sprintf("Score: %d", snap.State.Score)
	switch {
	case snap.State.GameOver:
		status += "  GAME OVER - r to restart"
	case snap.State.IsPaused:
		status += "  PAUSED"
	}
	putString(screen, 0, h+2, status, styleText)
	putString(screen, 0, h+3, "arrows move, space pause, r reset, q quit", styleWall)
	screen.Show()
}

// putCell fills the two terminal columns of grid cell (x, y).
func putCell(screen tcell.Screen, x, y int, r rune, style tcell.Style) {
	col := 1 + x*2
	screen.SetContent(col, y+1, r, nil, style)
	screen.SetContent(col+1, y+1, ' ', nil, style)
}

func putString(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		screen.SetContent(x+i, y, r, nil, style)
	}
}
