package wallet

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// Wallet image slots with their point sizes. Every slot is emitted at 1x and
// 2x; missing or unloadable sources fall back to a solid placeholder so pass
// generation never fails on artwork.
var imageSlots = []struct {
	name   string
	width  int
	height int
}{
	{"icon", 29, 29},
	{"logo", 160, 50},
	{"strip", 375, 123},
}

const squircleExponent = 3.8

var httpClient = &http.Client{Timeout: 15 * time.Second}

// loadImage reads an image from a local path or an http(s) URL. SVG sources
// are rasterized at the requested pixel size; raster sources ignore it and
// are resized later.
func loadImage(source string, width, height int) (image.Image, error) {
	var data []byte
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := httpClient.Get(source)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", source, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch %s: status %d", source, resp.StatusCode)
		}
		buf := new(bytes.Buffer)
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			return nil, err
		}
		data = buf.Bytes()
	} else {
		var err error
		data, err = os.ReadFile(source)
		if err != nil {
			return nil, err
		}
	}

	if strings.HasSuffix(strings.ToLower(source), ".svg") || bytes.HasPrefix(bytes.TrimSpace(data), []byte("<")) {
		return rasterizeSVG(data, width, height)
	}
	return imaging.Decode(bytes.NewReader(data))
}

func rasterizeSVG(data []byte, width, height int) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse SVG: %w", err)
	}

	icon.SetTarget(0, 0, float64(width), float64(height))
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(width, height, scanner), 1.0)
	return img, nil
}

// fitSlot scales an image into a slot. The icon and logo are fit inside the
// box on a transparent canvas; the strip is cover-cropped to fill it. Small
// sources are first upscaled past the target so the final Lanczos pass always
// downsamples, which keeps edges clean.
func fitSlot(img image.Image, slot string, width, height int) image.Image {
	bounds := img.Bounds()
	if bounds.Dx() < width*2 && bounds.Dy() < height*2 {
		img = imaging.Resize(img, bounds.Dx()*4, 0, imaging.NearestNeighbor)
	}

	if slot == "strip" {
		out := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)
		return imaging.Sharpen(out, 0.3)
	}

	fitted := imaging.Fit(img, width, height, imaging.Lanczos)
	canvas := imaging.New(width, height, color.NRGBA{})
	return imaging.PasteCenter(canvas, imaging.Sharpen(fitted, 0.3))
}

// squircleMask clips the icon to a superellipse, the rounded-square shape the
// wallet uses for app icons.
func squircleMask(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewNRGBA(image.Rect(0, 0, w, h))

	a := float64(w) / 2
	b := float64(h) / 2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := math.Abs(float64(x) + 0.5 - a)
			dy := math.Abs(float64(y) + 0.5 - b)
			inside := math.Pow(dx/a, squircleExponent)+math.Pow(dy/b, squircleExponent) <= 1
			if inside {
				out.Set(x, y, img.At(bounds.Min.X+x, bounds.Min.Y+y))
			}
		}
	}
	return out
}

// placeholder is a solid block in the pass background color, used when a
// configured artwork source cannot be loaded.
func (g *Generator) placeholder(width, height int) image.Image {
	return imaging.New(width, height, parseRGB(g.cfg.BackgroundColor))
}

// parseRGB reads the "rgb(r, g, b)" notation pass.json uses for colors.
func parseRGB(s string) color.NRGBA {
	var r, g, b int
	if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
		return color.NRGBA{R: 40, G: 40, B: 40, A: 255}
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}
}

// buildImages renders every image slot at 1x and 2x into PNG bytes keyed by
// archive filename.
func (g *Generator) buildImages() (map[string][]byte, error) {
	sources := map[string]string{
		"icon":  g.cfg.IconSource,
		"logo":  g.cfg.LogoSource,
		"strip": g.cfg.StripSource,
	}

	images := make(map[string][]byte)
	for _, slot := range imageSlots {
		for scale, suffix := range map[int]string{1: "", 2: "@2x"} {
			w, h := slot.width*scale, slot.height*scale

			var img image.Image
			if src := sources[slot.name]; src != "" {
				loaded, err := loadImage(src, w, h)
				if err != nil {
					logrus.WithError(err).WithField("slot", slot.name).
						Warn("Falling back to placeholder artwork")
					img = g.placeholder(w, h)
				} else {
					img = fitSlot(loaded, slot.name, w, h)
				}
			} else {
				img = g.placeholder(w, h)
			}

			if slot.name == "icon" {
				img = squircleMask(img)
			}

			var buf bytes.Buffer
			if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
				return nil, fmt.Errorf("failed to encode %s%s: %w", slot.name, suffix, err)
			}
			images[fmt.Sprintf("%s%s.png", slot.name, suffix)] = buf.Bytes()
		}
	}
	return images, nil
}
