package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

const (
	dpi            = 120.0
	fontSize       = 12.0
	tickMarkHeight = 5

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 40
	defaultRightBorder  = 40

	tapLabelStep   = 128 // taps between x-axis labels
	frameLabelStep = 50  // rows between y-axis labels
)

// BorderConfig defines the sizes of white space around the heatmap.
type BorderConfig struct {
	Top    int // Space for the tap scale
	Left   int // Space for the frame scale
	Bottom int // Space for the information bar
	Right  int // Right padding
}

// RenderConfig holds the options for CIR visualization.
type RenderConfig struct {
	ColorTheme ColorTheme
	FontFile   string // empty skips annotations
	Borders    BorderConfig

	// Manual bounds override the observed dB range when set.
	MinDB *float64
	MaxDB *float64
}

// CIRRenderer draws a frame-by-tap CIR magnitude heatmap.
type CIRRenderer struct {
	colorMap *ColorMapper
	config   RenderConfig
}

// NewCIRRenderer creates a renderer with the given configuration.
func NewCIRRenderer(config RenderConfig) *CIRRenderer {
	if config.Borders.Top == 0 {
		config.Borders.Top = defaultTopBorder
	}
	if config.Borders.Left == 0 {
		config.Borders.Left = defaultLeftBorder
	}
	if config.Borders.Bottom == 0 {
		config.Borders.Bottom = defaultBottomBorder
	}
	if config.Borders.Right == 0 {
		config.Borders.Right = defaultRightBorder
	}
	return &CIRRenderer{config: config}
}

// Render creates the annotated heatmap image for the CIR matrix.
func (r *CIRRenderer) Render(data *CIRData) (*image.RGBA, error) {
	fullWidth := data.Width + r.config.Borders.Left + r.config.Borders.Right
	fullHeight := data.Height + r.config.Borders.Top + r.config.Borders.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	area := image.Rect(
		r.config.Borders.Left,
		r.config.Borders.Top,
		r.config.Borders.Left+data.Width,
		r.config.Borders.Top+data.Height,
	)

	bounds := data.Bounds
	if r.config.MinDB != nil {
		bounds.Min = *r.config.MinDB
	}
	if r.config.MaxDB != nil {
		bounds.Max = *r.config.MaxDB
	}
	if r.colorMap == nil {
		r.colorMap = NewColorMapper(r.config.ColorTheme, bounds)
	} else {
		r.colorMap.UpdateBounds(bounds)
	}

	if r.config.FontFile != "" {
		ann, err := newAnnotator(annotatorConfig{
			FontFile: r.config.FontFile,
			Borders:  r.config.Borders,
		})
		if err != nil {
			return nil, fmt.Errorf("creating annotator: %w", err)
		}
		defer ann.Close()

		if err = ann.annotate(img, data, bounds); err != nil {
			return nil, fmt.Errorf("drawing annotations: %w", err)
		}
	}

	r.renderCIR(img, area, data)

	return img, nil
}

// renderCIR draws the magnitude matrix using the color map, one pixel per
// tap per frame.
func (r *CIRRenderer) renderCIR(img *image.RGBA, area image.Rectangle, data *CIRData) {
	for y, row := range data.Rows {
		imgY := area.Min.Y + y
		for x, db := range row {
			img.Set(area.Min.X+x, imgY, r.colorMap.GetColor(db))
		}
	}
}

type annotatorConfig struct {
	FontFile string
	Borders  BorderConfig
}

type annotator struct {
	context  *freetype.Context
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	fontBytes, err := os.ReadFile(config.FontFile)
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}
	parsedFont, err := freetype.ParseFont(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}

	ctx := freetype.NewContext()
	ctx.SetDPI(dpi)
	ctx.SetFont(parsedFont)
	ctx.SetFontSize(fontSize)
	ctx.SetHinting(font.HintingNone)
	ctx.SetSrc(image.Black)

	return &annotator{
		context: ctx,
		config:  config,
		fontFace: truetype.NewFace(parsedFont, &truetype.Options{
			Size:    fontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		}),
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) annotate(img *image.RGBA, data *CIRData, bounds MagnitudeBounds) error {
	a.context.SetClip(img.Bounds())
	a.context.SetDst(img)

	if err := a.drawTapScale(img, data); err != nil {
		return fmt.Errorf("drawing tap scale: %w", err)
	}
	if err := a.drawFrameScale(img, data); err != nil {
		return fmt.Errorf("drawing frame scale: %w", err)
	}
	if err := a.drawInfoBar(img, data, bounds); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}

	return nil
}

// drawTapScale labels the x axis with accumulator tap indexes.
func (a *annotator) drawTapScale(img *image.RGBA, data *CIRData) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := a.config.Borders.Top - fontHeight/2

	for tap := 0; tap <= data.Width; tap += tapLabelStep {
		x := a.config.Borders.Left + tap

		for y := a.config.Borders.Top - tickMarkHeight; y < a.config.Borders.Top; y++ {
			img.Set(x, y, color.Black)
		}

		label := humanize.Comma(int64(tap))
		width := font.MeasureString(a.fontFace, label)
		pt := freetype.Pt(x-(width.Round()/2), textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing tap label: %w", err)
		}
	}
	return nil
}

// drawFrameScale labels the y axis with the frame index of every
// frameLabelStep-th row.
func (a *annotator) drawFrameScale(img *image.RGBA, data *CIRData) error {
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for row := 0; row < data.Height; row += frameLabelStep {
		imgY := row + a.config.Borders.Top

		for x := a.config.Borders.Left - tickMarkHeight; x < a.config.Borders.Left; x++ {
			img.Set(x, imgY, color.Black)
		}

		textY := imgY + fontHeight/2 - metrics.Descent.Round()
		label := humanize.Comma(int64(data.FrameIndexes[row]))
		pt := freetype.Pt(10, textY)
		if _, err := a.context.DrawString(label, pt); err != nil {
			return fmt.Errorf("drawing frame label: %w", err)
		}
	}
	return nil
}

func (a *annotator) drawInfoBar(img *image.RGBA, data *CIRData, bounds MagnitudeBounds) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Frames: %s; Taps: %d", humanize.Comma(int64(data.Height)), data.Width))
	sb.WriteString(fmt.Sprintf("; Magnitude: %0.1f dB - %0.1f dB", bounds.Min, bounds.Max))

	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - a.config.Borders.Bottom + fontHeight

	pt := freetype.Pt(a.config.Borders.Left, textY)
	if _, err := a.context.DrawString(sb.String(), pt); err != nil {
		return fmt.Errorf("drawing info bar: %w", err)
	}
	return nil
}
