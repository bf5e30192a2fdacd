package main

import (
	"context"
	"flag"
	"log"
	"runtime"
	"time"

	"github.com/go-gl/gl/v4.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/mogaika/crane/config"
	"github.com/mogaika/crane/crane"
	"github.com/mogaika/crane/r3d/glbackend"
	"github.com/mogaika/crane/telemetry"
	"github.com/mogaika/crane/utils"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var configPath, assets, telemetryAddr string
	var debug, dump bool
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.StringVar(&assets, "assets", "", "Assets directory override")
	flag.StringVar(&telemetryAddr, "telemetry", "", "Address of telemetry server, empty to disable")
	flag.BoolVar(&debug, "debug", false, "Start with physics debug overlay")
	flag.BoolVar(&dump, "dump", false, "Dump crane state after construction and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if assets != "" {
		cfg.Assets.Dir = assets
	}
	if telemetryAddr != "" {
		cfg.Telemetry = telemetryAddr
	}
	cfg.Debug = cfg.Debug || debug

	scene, err := crane.NewScene(cfg)
	if err != nil {
		log.Fatalf("[crane] Failed to build scene: %v", err)
	}
	defer scene.Destroy()

	if dump {
		utils.LogDump(scene.Crane.Snapshot())
		return
	}

	var server *telemetry.Server
	if cfg.Telemetry != "" {
		server = telemetry.NewServer()
		if err := server.Start(cfg.Telemetry); err != nil {
			log.Fatal(err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			server.Shutdown(ctx)
		}()
	}

	if err := glfw.Init(); err != nil {
		log.Fatalf("Failed to init glfw: %v", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title, nil, nil)
	if err != nil {
		log.Fatalf("Failed to create window: %v", err)
	}
	defer window.Destroy()
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	if err := gl.Init(); err != nil {
		log.Fatalf("Failed to init gl: %v", err)
	}
	log.Printf("Version: %q", gl.GoStr(gl.GetString(gl.VERSION)))

	resources := glbackend.NewManager(cfg.Assets.Dir)
	defer resources.Destroy()

	a := newApp(cfg, scene, resources, window, server)
	a.run()
}
