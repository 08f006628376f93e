package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/selfhydro/selfhydro-api/internal/config"
	"github.com/selfhydro/selfhydro-api/internal/domain"
	"github.com/selfhydro/selfhydro-api/internal/service"
	"github.com/selfhydro/selfhydro-api/internal/storage"
	"github.com/selfhydro/selfhydro-api/pkg/logger"
	"github.com/urfave/cli/v2"
)

type servicesKey struct{}

type services struct {
	store   storage.ObjectStore
	sensors *service.SensorService
	images  *service.ImageService
}

// loadConfig is replaced in tests.
var loadConfig = config.Load

func newLimitFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "limit",
		Usage: fmt.Sprintf("Number of records to return (%d-%d)", service.MinLimit, service.MaxLimit),
		Value: service.DefaultLimit,
	}
}

func initServices(c *cli.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.SetLevel(cfg.App.LogLevel)

	store, err := storage.New(c.Context, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open object store: %w", err)
	}

	opts := service.Options{StoreTimeout: cfg.Storage.StoreTimeout()}
	signer := service.NewSigner(store, cfg.Images.SignedURLExpiry, cfg.Images.SignMaxWorkers, nil)
	svc := &services{
		store:   store,
		sensors: service.NewSensorService(store, opts),
		images: service.NewImageService(store, signer, service.ImageOptions{
			Delivery: cfg.Images.Delivery,
			BaseURL:  cfg.App.BaseURL,
		}, opts),
	}

	// Store the services in the context
	c.Context = context.WithValue(c.Context, servicesKey{}, svc)
	return nil
}

func closeServices(c *cli.Context) error {
	if svc, ok := c.Context.Value(servicesKey{}).(*services); ok && svc != nil {
		return svc.store.Close()
	}
	return nil
}

func fromContext(c *cli.Context) *services {
	svc, _ := c.Context.Value(servicesKey{}).(*services)
	return svc
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "hydroctl",
		Usage: "Inspect sensor readings and camera captures in the selfhydro bucket",
		Commands: []*cli.Command{
			{
				Name:   "latest",
				Usage:  "Print the most recent sensor reading",
				Before: initServices,
				After:  closeServices,
				Action: runLatest,
			},
			{
				Name:   "history",
				Usage:  "Print recent sensor readings, newest first",
				Flags:  []cli.Flag{newLimitFlag()},
				Before: initServices,
				After:  closeServices,
				Action: runHistory,
			},
			{
				Name:   "images",
				Usage:  "List recent captures with their delivery URLs",
				Flags:  []cli.Flag{newLimitFlag()},
				Before: initServices,
				After:  closeServices,
				Action: runImages,
			},
			{
				Name:      "urls",
				Usage:     "Print the signed URL of every size preset for one capture",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "width", Usage: "Custom width (1-2048)"},
					&cli.IntFlag{Name: "height", Usage: "Custom height (1-2048)"},
					&cli.IntFlag{Name: "quality", Usage: "Custom quality (1-100)"},
				},
				Before: initServices,
				After:  closeServices,
				Action: runURLs,
			},
			{
				Name:      "fetch",
				Usage:     "Download one capture",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Destination file, - for stdout",
						Value:   "-",
					},
				},
				Before: initServices,
				After:  closeServices,
				Action: runFetch,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("hydroctl failed")
	}
}

func runLatest(c *cli.Context) error {
	reading, err := fromContext(c).sensors.Latest(c.Context)
	if err != nil {
		return fmt.Errorf("failed to fetch sensor data: %w", err)
	}
	return printJSON(c, reading)
}

func runHistory(c *cli.Context) error {
	readings, err := fromContext(c).sensors.History(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to fetch sensor history: %w", err)
	}
	return printJSON(c, readings)
}

func runImages(c *cli.Context) error {
	images, err := fromContext(c).images.List(c.Context, c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list images: %w", err)
	}
	return printJSON(c, images)
}

func runURLs(c *cli.Context) error {
	name, err := imageName(c)
	if err != nil {
		return err
	}

	custom := domain.Transform{
		Width:   c.Int("width"),
		Height:  c.Int("height"),
		Quality: c.Int("quality"),
	}
	urls, err := fromContext(c).images.URLs(c.Context, name, custom)
	if err != nil {
		return fmt.Errorf("failed to generate image URLs: %w", err)
	}
	return printJSON(c, urls)
}

func runFetch(c *cli.Context) error {
	name, err := imageName(c)
	if err != nil {
		return err
	}

	body, err := fromContext(c).images.Stream(c.Context, name)
	if err != nil {
		return fmt.Errorf("failed to fetch image: %w", err)
	}

	out := c.String("out")
	if out == "-" {
		_, err = c.App.Writer.Write(body)
		return err
	}
	if err := os.WriteFile(out, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	logger.Log.Info().Str("image", name).Str("path", out).Int("bytes", len(body)).Msg("Image saved")
	return nil
}

func imageName(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one image name, got %d arguments", c.NArg())
	}
	return c.Args().First(), nil
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
