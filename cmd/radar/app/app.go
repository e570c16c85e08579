package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/span-lab/uwb-radar/internal/capture"
	"github.com/span-lab/uwb-radar/internal/dw1000"
	"github.com/span-lab/uwb-radar/internal/storage"
)

// Run wires the device, receiver, index and session together and runs the
// capture loop until it completes or the context is cancelled.
func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	dev, err := dw1000.Open(config.Device.Driver, config.Device.Radio)
	if err != nil {
		return fmt.Errorf("opening device: %w", err)
	}
	defer dev.Close()

	if err = os.MkdirAll(config.Capture.OutputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	var rxOptions []func(*capture.Receiver)
	rxOptions = append(rxOptions, capture.WithReceiverLogger(logger))
	if config.Capture.PollTimeout > 0 {
		rxOptions = append(rxOptions, capture.WithPollTimeout(config.Capture.PollTimeoutDuration()))
	}
	rx := capture.NewReceiver(dev, config.Device.Radio, rxOptions...)

	options := []func(*capture.Session){
		capture.WithSessionLogger(logger),
		capture.WithOutputDir(config.Capture.OutputDir),
		capture.WithMaxFrames(config.Capture.MaxFrames),
	}

	if config.Storage.Index {
		store, err := createStorage(&config.Storage)
		if err != nil {
			return fmt.Errorf("creating capture index: %w", err)
		}
		defer store.Close()

		options = append(options, capture.WithIndex(store, config.Device.Radio))
	}

	logger.Info("starting capture",
		slog.String("driver", config.Device.Driver),
		slog.Int("channel", config.Device.Radio.Channel),
		slog.Int("prf", int(config.Device.Radio.PRF)),
		slog.Int("cirSamples", config.Device.Radio.PRF.CIRSamples()))

	session := capture.NewSession(rx, config.Capture.Experiment, options...)
	return session.Run(ctx)
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, error) {
	dir := config.DataDirectory
	if dir == "" {
		dir = "data"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	dbPath := filepath.Join(dir, fmt.Sprintf("uwb_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.NewSqliteStore(dbPath), nil
}
