package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/span-lab/uwb-radar/internal/capture"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	records := make([]*capture.Record, 0, len(config.RecordFiles))
	for _, path := range config.RecordFiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		rec, err := capture.ReadRecordFile(path)
		if err != nil {
			return fmt.Errorf("loading record: %w", err)
		}
		records = append(records, rec)
	}

	data := NewCIRData(records)

	logger.Info("loaded capture records",
		slog.Int("frames", data.Height),
		slog.Int("taps", data.Width),
		slog.String("magnitude", fmt.Sprintf("%0.1fdB - %0.1fdB", data.Bounds.Min, data.Bounds.Max)))

	renderer := NewCIRRenderer(RenderConfig{
		ColorTheme: config.Theme,
		FontFile:   fontFileFor(config),
		MinDB:      config.MinDB,
		MaxDB:      config.MaxDB,
	})

	logger.Info("rendering CIR heatmap",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", data.Width),
			slog.Int("height", data.Height),
		))

	img, err := renderer.Render(data)
	if err != nil {
		return fmt.Errorf("rendering CIR heatmap: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(out, img)
	}
	if err != nil {
		return fmt.Errorf("encoding image: %w", err)
	}

	logger.Info("done", slog.String("file", config.OutputFile))
	return nil
}

func fontFileFor(config *Config) string {
	if config.NoAnnotations {
		return ""
	}
	return config.FontFile
}
