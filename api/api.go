package api

import (
	"bytes"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snake-in-browser/config"
	"github.com/hoshinonyaruko/snake-in-browser/driver"
	"github.com/hoshinonyaruko/snake-in-browser/memimg"
	"github.com/hoshinonyaruko/snake-in-browser/render"
	"github.com/hoshinonyaruko/snake-in-browser/structs"
)

// NewRouter wires every handler onto a gin engine.
func NewRouter(d *driver.Driver, cfg *config.AppConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// 读取当前状态
	router.GET("/state", StateHandler(d))
	// 改变方向
	router.GET("/update-direction", UpdateDirection(d))
	router.POST("/update-direction", UpdateDirection(d))
	// 暂停与重置
	router.POST("/toggle-pause", TogglePauseHandler(d))
	router.POST("/reset", ResetHandler(d))
	// 浏览器按键
	router.POST("/key", KeyHandler(d))
	// 渲染
	router.GET("/geometry", GeometryHandler(d))
	router.GET("/render-map", RenderMapHandler(d, memimg.Sprites{}))
	// 实时推送
	router.GET("/ws", WebSocketHandler(d))

	if cfg != nil && cfg.StaticDir != "" {
		router.Static("/static", cfg.StaticDir)
		router.StaticFile("/", filepath.Join(cfg.StaticDir, "index.html"))
	}
	return router
}

func StateHandler(d *driver.Driver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, d.Snapshot())
	}
}

func UpdateDirection(d *driver.Driver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.Query("direction")
		if raw == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required query parameter: direction"})
			return
		}
		dir, err := structs.ParseDirection(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		d.ChangeDirection(dir)
		c.JSON(http.StatusOK, d.Snapshot())
	}
}

func TogglePauseHandler(d *driver.Driver) gin.HandlerFunc {
	return func(c *gin.Context) {
		d.TogglePause()
		c.JSON(http.StatusOK, d.Snapshot())
	}
}

func ResetHandler(d *driver.Driver) gin.HandlerFunc {
	return func(c *gin.Context) {
		d.Reset()
		c.JSON(http.StatusOK, d.Snapshot())
	}
}

func KeyHandler(d *driver.Driver) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Query("key")
		if !d.HandleKey(key) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unbound key: " + key})
			return
		}
		c.JSON(http.StatusOK, d.Snapshot())
	}
}

func GeometryHandler(d *driver.Driver) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, render.Geometry(d.Snapshot()))
	}
}

// RenderMapHandler answers with the current board as a PNG.
func RenderMapHandler(d *driver.Driver, sprites render.Sprites) gin.HandlerFunc {
	return func(c *gin.Context) {
		var buf bytes.Buffer
		if err := render.EncodePNG(&buf, d.Snapshot(), sprites); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to render map"})
			return
		}
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	}
}
