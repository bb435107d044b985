package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/vehicle-vendor/internal/config"
	"github.com/jwebster45206/vehicle-vendor/internal/logger"
	"github.com/jwebster45206/vehicle-vendor/internal/services"
	"github.com/jwebster45206/vehicle-vendor/internal/services/events"
	"github.com/jwebster45206/vehicle-vendor/internal/sim"
	"github.com/jwebster45206/vehicle-vendor/pkg/host"
	"github.com/jwebster45206/vehicle-vendor/pkg/settings"
)

const (
	logFile      = "vendor-console.log"
	startScrap   = 1000
	startCoins   = 500
	startRewards = 100
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns stdout, so logs go to a file.
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", logFile, err)
		os.Exit(1)
	}
	defer func() {
		_ = f.Close()
	}()
	log := logger.SetupTo(cfg, f)

	graphName, err := selectGraph(cfg.VendorGraph)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	graph, err := sim.LoadGraph(graphName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load vendor graph: %v\n", err)
		os.Exit(1)
	}

	client, cleanup, err := connectRedis(cfg.RedisURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to Redis: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broadcaster := events.NewBroadcaster(client, log, events.DefaultBufferSize)
	go broadcaster.Run(ctx)

	world := sim.NewWorld(time.Now(), host.VendorID(graph.ShortName), graph, log)
	economy := sim.LoadEconomy(world, client, log)
	store := settings.NewStore(settings.Load(cfg.SettingsPath, log))
	plugin := sim.Boot(world, store, broadcaster, log)

	player := host.PlayerID(cfg.PlayerID)
	world.Connect(player)
	world.SetItemAmount(player, host.ScrapItem, startScrap)
	if err := economy.Fund(ctx, "economics", player, startCoins); err != nil {
		log.Warn("Failed to fund economics balance", "error", err)
	}
	if err := economy.Fund(ctx, "serverrewards", player, startRewards); err != nil {
		log.Warn("Failed to fund reward points", "error", err)
	}

	session := &Session{
		World:        world,
		Economy:      economy,
		Plugin:       plugin,
		Player:       player,
		SettingsPath: cfg.SettingsPath,
		Logger:       log,
	}

	p := tea.NewProgram(NewConsoleUI(session),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// selectGraph prompts for a bundled vendor graph. An empty answer picks the configured default.
func selectGraph(def string) (string, error) {
	names := sim.GraphNames()
	fmt.Println("Available Vendors:")
	for i, name := range names {
		marker := ""
		if name == def {
			marker = " (default)"
		}
		fmt.Printf("  %d - %s%s\n", i+1, name, marker)
	}
	fmt.Print("\nSelect a vendor by number: ")

	var choice int
	if n, _ := fmt.Scanln(&choice); n == 0 {
		return def, nil
	}
	if choice < 1 || choice > len(names) {
		return "", fmt.Errorf("invalid selection")
	}
	return names[choice-1], nil
}

// connectRedis dials REDIS_URL, or starts an embedded server when it is unset.
func connectRedis(url string, log *slog.Logger) (*redis.Client, func(), error) {
	if url == "" {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start embedded redis: %w", err)
		}
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		log.Info("Using embedded Redis", "addr", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	svc, err := services.NewRedisService(url, log)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.WaitForConnection(ctx, 5, time.Second); err != nil {
		_ = svc.Close()
		return nil, nil, err
	}
	return svc.GetClient(), func() { _ = svc.Close() }, nil
}
