// Package memimg keeps the board sprites in memory, scaled to the cell
// size, and reloads them when the files change.
package memimg

import (
	"context"
	"image"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fsnotify/fsnotify"
)

// Sprite names the renderer looks up.
const (
	SpriteHead = "head"
	SpriteBody = "body"
	SpriteFood = "food"
)

var (
	sprites      = make(map[string]image.Image)
	spritesMutex sync.RWMutex
)

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

// spriteName strips directory and extension: "./sprites/head.png" -> "head".
func spriteName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// SpriteSize is the drawn size of a sprite inside a cell of cellSize pixels.
func SpriteSize(cellSize int) int {
	if cellSize <= 2 {
		return 1
	}
	return cellSize - 2
}

// LoadSprites replaces the cache with every image in directory. A missing
// directory leaves the cache empty.
func LoadSprites(directory string, cellSize int) error {
	loaded := make(map[string]image.Image)
	err := filepath.WalkDir(directory, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isImage(path) {
			return nil
		}
		img, err := loadScaled(path, cellSize)
		if err != nil {
			log.Printf("memimg: skip %s: %v", path, err)
			return nil
		}
		loaded[spriteName(path)] = img
		return nil
	})
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	spritesMutex.Lock()
	sprites = loaded
	spritesMutex.Unlock()
	return nil
}

func loadScaled(path string, cellSize int) (image.Image, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, err
	}
	size := SpriteSize(cellSize)
	return imaging.Resize(img, size, size, imaging.Lanczos), nil
}

// WatchSprites reloads sprites in directory as they are written and drops
// them when removed. It blocks until ctx is done.
func WatchSprites(ctx context.Context, directory string, cellSize int) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(directory); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(event, cellSize)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("memimg: watch error: %v", err)
		}
	}
}

func handleEvent(event fsnotify.Event, cellSize int) {
	if !isImage(event.Name) {
		return
	}
	name := spriteName(event.Name)
	switch {
	case event.Has(fsnotify.Write) || event.Has(fsnotify.Create):
		img, err := loadScaled(event.Name, cellSize)
		if err != nil {
			// partially written files fail to decode; the next write retries
			return
		}
		spritesMutex.Lock()
		sprites[name] = img
		spritesMutex.Unlock()
		log.Printf("memimg: reloaded %s", name)
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		spritesMutex.Lock()
		delete(sprites, name)
		spritesMutex.Unlock()
	}
}

// GetSprite returns the cached sprite called name.
func GetSprite(name string) (image.Image, bool) {
	spritesMutex.RLock()
	img, exists := sprites[name]
	spritesMutex.RUnlock()
	return img, exists
}

// Sprites adapts the package cache to render.Sprites.
type Sprites struct{}

func (Sprites) Sprite(name string) (image.Image, bool) {
	return GetSprite(name)
}
