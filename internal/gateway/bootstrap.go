package gateway

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/arclight-ai/arclight/internal/cli"
	"github.com/arclight-ai/arclight/internal/imagegen"
	"github.com/arclight-ai/arclight/internal/llm"
	"github.com/arclight-ai/arclight/internal/settings"
)

// BootstrapProviders initializes and registers all enabled chat providers
// from configuration. Misconfigured entries are skipped, not fatal.
func BootstrapProviders(service Service, providers []llm.ProviderConfig, store settings.Store, log *zap.Logger) int {
	registeredCount := 0
	validate := validator.New()

	for _, pCfg := range providers {
		if !pCfg.Enabled {
			continue
		}

		// Validate provider configuration individually
		if err := validate.Struct(&pCfg); err != nil {
			log.Warn(fmt.Sprintf("%s %s %s",
				cli.WarningSign(),
				cli.Stylize(fmt.Sprintf("%s\t", pCfg.ID), cli.Cyan),
				cli.Stylize("Skipping provider due to invalid configuration", cli.Yellow),
			))
			continue
		}

		factoryFunc, err := llm.Get(pCfg.Type)
		if err != nil {
			log.Error("Unknown provider type", zap.String("type", pCfg.Type))
			continue
		}

		providerInstance, err := factoryFunc(pCfg, store)
		if err != nil {
			log.Error("Failed to initialize provider",
				zap.String("id", pCfg.ID),
				zap.Error(err),
			)
			continue
		}

		if err := service.RegisterProvider(providerInstance, pCfg.Models); err != nil {
			log.Error("Failed to register provider", zap.String("id", pCfg.ID), zap.Error(err))
			continue
		}

		registeredCount++
	}

	if registeredCount == 0 {
		log.Warn("No providers were registered. API will not function correctly.")
	}

	return registeredCount
}

// BootstrapImageClients initializes and registers all enabled image-generation
// clients from configuration.
func BootstrapImageClients(service Service, providers []llm.ProviderConfig, store settings.Store, log *zap.Logger) int {
	registeredCount := 0

	for _, pCfg := range providers {
		if !pCfg.Enabled {
			continue
		}

		var client imagegen.Client
		switch pCfg.Type {
		case "volcengine":
			client = imagegen.NewVolcengine(pCfg, store)
		default:
			log.Error("Unknown image provider type", zap.String("type", pCfg.Type))
			continue
		}

		if err := service.RegisterImageClient(client, pCfg.Models); err != nil {
			log.Error("Failed to register image client", zap.String("id", pCfg.ID), zap.Error(err))
			continue
		}

		registeredCount++
	}

	return registeredCount
}
