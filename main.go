package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gin-gonic/gin"
	"github.com/hoshinonyaruko/snake-in-browser/api"
	"github.com/hoshinonyaruko/snake-in-browser/config"
	"github.com/hoshinonyaruko/snake-in-browser/driver"
	"github.com/hoshinonyaruko/snake-in-browser/memimg"
	"github.com/hoshinonyaruko/snake-in-browser/snake"
	"github.com/hoshinonyaruko/snake-in-browser/tty"
	"golang.org/x/exp/rand"
)

func main() {
	configPath := flag.String("config", "./config.json", "config file (.json, .yaml or .yml)")
	terminal := flag.Bool("tty", false, "play in this terminal instead of serving the browser page")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", *configPath, err)
	}
	interval, err := cfg.TickInterval()
	if err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	var rng snake.Rand
	if cfg.Seed != 0 {
		rng = rand.New(rand.NewSource(uint64(cfg.Seed)))
	}
	engine, err := snake.NewEngine(config.GridWidth, config.GridHeight, rng)
	if err != nil {
		log.Fatalf("Failed to build game: %v", err)
	}
	blockSize := config.GetConfigValue("blocksize").(int)
	d := driver.New(engine, interval, driver.WithCellSize(blockSize))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if *terminal {
		// log output would tear the screen
		log.SetOutput(io.Discard)
	}
	go d.Run(ctx)

	if *terminal {
		if err := runTerminal(ctx, d); err != nil {
			log.SetOutput(os.Stderr)
			log.Fatalf("Terminal: %v", err)
		}
		return
	}

	EnsureFoldersExist(cfg.StaticDir, cfg.SpritesDir)
	// 载入贴图到内存
	if err := memimg.LoadSprites(cfg.SpritesDir, blockSize); err != nil {
		log.Printf("Failed to load sprites from %s: %v", cfg.SpritesDir, err)
	}
	// 检测并热更新到内存
	go func() {
		if err := memimg.WatchSprites(ctx, cfg.SpritesDir, blockSize); err != nil {
			log.Printf("Sprite watcher stopped: %v", err)
		}
	}()

	if cfg.Release {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:    ":" + config.GetConfigValue("port").(string),
		Handler: api.NewRouter(d, cfg),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("Serving the game on http://%s/", config.GetConfigValue("selfpath").(string))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server: %v", err)
	}
}

func runTerminal(ctx context.Context, d *driver.Driver) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	return tty.Run(ctx, screen, d)
}

// EnsureFoldersExist 检查并创建必需的文件夹
func EnsureFoldersExist(folders ...string) {
	for _, folder := range folders {
		// 未配置的目录直接跳过
		if folder == "" {
			continue
		}
		if _, err := os.Stat(folder); os.IsNotExist(err) {
			// 文件夹不存在，尝试创建它
			if err := os.MkdirAll(folder, 0755); err != nil {
				log.Fatalf("Failed to create %s directory: %s", folder, err)
			}
			log.Printf("Created %s directory", folder)
		}
	}
}
