package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/shoptag/backend/internal/infrastructure/config"
	"github.com/shoptag/backend/internal/infrastructure/logger"
	"github.com/shoptag/backend/internal/infrastructure/shopify"
)

// shopcheck verifies that the configured Shopify credentials work by
// fetching the shop name over the Admin API.
func main() {
	log, err := logger.New(&logger.Config{
		Level:  "info",
		Format: "console",
		Output: "stdout",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	shopifyConfig := shopify.NewConfig(cfg.Shopify.ShopDomain, cfg.Shopify.AccessToken)
	shopifyConfig.APIVersion = cfg.Shopify.APIVersion
	shopifyConfig.Timeout = cfg.Shopify.Timeout
	shopifyConfig.MaxRetries = cfg.Shopify.MaxRetries

	client, err := shopify.NewClient(shopifyConfig, log)
	if err != nil {
		log.Fatal("Failed to create Shopify client", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	name, err := client.ShopName(ctx)
	if err != nil {
		log.Fatal("Connection check failed",
			zap.String("shop_domain", cfg.Shopify.ShopDomain),
			zap.Error(err))
	}

	log.Info("Connection check succeeded",
		zap.String("shop_domain", cfg.Shopify.ShopDomain),
		zap.String("shop_name", name))
}
