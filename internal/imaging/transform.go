package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/chai2010/webp"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/oloynet/tinals-player/internal/profiles"
	"github.com/oloynet/tinals-player/internal/services"
)

// Overrides replace profile values for a whole run. Zero means no override.
type Overrides struct {
	MaxWidth int
	Quality  int
}

// Transformer renders a derivative from a master image file.
type Transformer interface {
	Transform(masterPath string, profile profiles.SizeProfile, overrides Overrides) ([]byte, error)
}

// Pipeline is the default Transformer.
type Pipeline struct{}

// Transform implements Transformer.
func (Pipeline) Transform(masterPath string, profile profiles.SizeProfile, overrides Overrides) ([]byte, error) {
	return Transform(masterPath, profile, overrides)
}

// Transform decodes the master, applies the profile geometry, and encodes the
// result. The output depends only on the inputs.
func Transform(masterPath string, profile profiles.SizeProfile, overrides Overrides) ([]byte, error) {
	f, err := os.Open(masterPath)
	if err != nil {
		return nil, services.Wrap(services.ErrTransform, "images", "open master", masterPath, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, services.Wrap(services.ErrTransform, "images", "decode master", masterPath, err)
	}

	out := Apply(src, profile, overrides)

	var buf bytes.Buffer
	if err := Encode(&buf, out, profile.Format, Quality(profile, overrides)); err != nil {
		return nil, services.Wrap(services.ErrTransform, "images", "encode", profile.ID, err)
	}
	return buf.Bytes(), nil
}

// Quality resolves the encoder quality for a profile.
func Quality(profile profiles.SizeProfile, overrides Overrides) int {
	if overrides.Quality > 0 {
		return overrides.Quality
	}
	if profile.Quality > 0 {
		return profile.Quality
	}
	return profiles.DefaultQuality
}

// Apply runs the resize and crop steps of a profile on a decoded image.
func Apply(src image.Image, profile profiles.SizeProfile, overrides Overrides) image.Image {
	img := src
	crop := profile.Has(profiles.ActionCrop) && profile.Width > 0 && profile.Height > 0

	if profile.Has(profiles.ActionResize) {
		b := img.Bounds()
		if profile.Has(profiles.ActionCrop) {
			if crop {
				w, h := CoverSize(b.Dx(), b.Dy(), profile.Width, profile.Height)
				img = scale(img, w, h)
			}
		} else {
			maxWidth := profile.MaxWidth
			if overrides.MaxWidth > 0 {
				maxWidth = overrides.MaxWidth
			}
			if w, h, ok := ContainSize(b.Dx(), b.Dy(), maxWidth, profile.Width); ok {
				img = scale(img, w, h)
			}
		}
	}

	if crop {
		img = cropCenter(img, profile.Width, profile.Height)
	}
	return img
}

func scale(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

func cropCenter(src image.Image, w, h int) image.Image {
	b := src.Bounds()
	box := CropRect(b.Dx(), b.Dy(), w, h)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, b.Min.Add(box.Min), draw.Src)
	return dst
}

// Encode writes img in the requested format at the given quality.
func Encode(w io.Writer, img image.Image, format profiles.Format, quality int) error {
	switch format {
	case profiles.FormatWebP, "":
		return webp.Encode(w, img, &webp.Options{Quality: float32(quality)})
	case profiles.FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	case profiles.FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
