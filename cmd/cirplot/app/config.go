package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

// Config is the cirplot CLI configuration. Record files are given as
// positional arguments and rendered as rows of the heatmap, ordered by the
// frame index stored in each file.
type Config struct {
	RecordFiles   []string
	OutputFile    string
	Format        ImageFormat
	Theme         ColorTheme
	FontFile      string
	MinDB         *float64
	MaxDB         *float64
	NoAnnotations bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format: ImagePNG,
		Theme:  ThermalTheme,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, theme string
	var minDB, maxDB float64
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&theme, "theme", string(ThermalTheme), "Color theme. [classic, grayscale, thermal]")
	flag.StringVar(&c.FontFile, "font", "", "TrueType font file for annotations (annotations are skipped without it)")
	flag.Float64Var(&minDB, "min-db", 0, "Define a manual magnitude floor in dB (format nn.n)")
	flag.Float64Var(&maxDB, "max-db", 0, "Define a manual magnitude ceiling in dB (format nn.n)")
	flag.BoolVar(&c.NoAnnotations, "no-annotations", false, "Disable annotations such as tap and frame scales")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "min-db" {
			c.MinDB = &minDB
		}
		if f.Name == "max-db" {
			c.MaxDB = &maxDB
		}
	})

	var err error
	if flag.NArg() == 0 {
		err = errors.New("at least one record file is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if _, ok := validColorThemes[ColorTheme(theme)]; !ok {
		err = fmt.Errorf("invalid color theme: %s", theme)
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.RecordFiles = flag.Args()
	c.Format = ImageFormat(imageFormat)
	c.Theme = ColorTheme(theme)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
