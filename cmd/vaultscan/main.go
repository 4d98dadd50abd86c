package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vaultscan/vaultscan-client-go/cmd/vaultscan/config"
	"github.com/vaultscan/vaultscan-client-go/scanner"
)

func main() {
	// create the log handler
	rootLogHandler := slog.NewJSONHandler(os.Stderr, nil)
	rootLogger := slog.New(rootLogHandler)
	fail := func() {
		os.Exit(1)
	}

	// .env is optional; explicit environment always wins
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		rootLogger.Error("Failed to load configuration", "error", err)
		fail()
	}

	// Create a context that cancels when the OS sends an interrupt (Ctrl+C) or termination signal.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		rootLogger.Error("Failed to dial RPC endpoint", "error", err)
		fail()
	}
	defer client.Close()

	opts := []scanner.Option{
		scanner.WithBatchProgress(func(done, total int) {
			rootLogger.Info("Scan progress", "done", done, "total", total)
		}),
	}
	if cfg.BatchSize > 0 {
		opts = append(opts, scanner.WithBatchSize(cfg.BatchSize))
	}
	if d := cfg.BatchDelay(); d > 0 {
		opts = append(opts, scanner.WithBatchDelay(d))
	}
	if d := cfg.CallTimeout(); d > 0 {
		opts = append(opts, scanner.WithCallTimeout(d))
	}

	scan, err := scanner.New(
		client,
		cfg.ChainID,
		rootLogger.With("component", "scanner"),
		prometheus.DefaultRegisterer,
		opts...,
	)
	if err != nil {
		rootLogger.Error("Failed to initialize scanner", "chain_id", cfg.ChainID, "error", err)
		fail()
	}

	records := scan.BatchGetVaultPerformance(ctx, cfg.VaultAddresses())

	out := make(map[string]any, len(records))
	for addr, rec := range records {
		out[addr.Hex()] = rec
	}
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		rootLogger.Error("Failed to encode results", "error", err)
		fail()
	}
}

func loadConfig() (*config.ClientConfig, error) {
	configPath := flag.String("config", "config.yaml", "Path to the configuration file.")
	flag.Parse()
	log.Printf("Loading configuration from: %s", *configPath)
	return config.LoadConfig(*configPath)
}
