package services

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"golang.org/x/image/draw"
)

// thumbnailMaxSide caps the longer edge of generated thumbnails.
const thumbnailMaxSide = 400

// processImage extracts pixel dimensions from an uploaded image and,
// when the image exceeds thumbnailMaxSide, stores a scaled-down copy
// under a thumbnails/ key. Everything here is best-effort: a file we
// cannot decode is kept as-is with no dimensions, and a failed
// thumbnail upload still returns the dimensions.
func (s *AssetService) processImage(ctx context.Context, key string, data []byte) (width, height *int, thumbnailURL *string) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		s.logger.Debug(ctx, "image decode failed, skipping dimensions", "key", key, "error", err)
		return nil, nil, nil
	}
	w, h := cfg.Width, cfg.Height
	width, height = &w, &h

	if w <= thumbnailMaxSide && h <= thumbnailMaxSide {
		return width, height, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return width, height, nil
	}

	thumb := scaleDown(img, thumbnailMaxSide)

	// JPEG for photos, PNG for formats that may carry transparency.
	var buf bytes.Buffer
	mimeType, ext := "image/jpeg", ".jpg"
	if format == "png" || format == "gif" {
		mimeType, ext = "image/png", ".png"
		err = png.Encode(&buf, thumb)
	} else {
		err = jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return width, height, nil
	}

	thumbKey := thumbnailKey(key, ext)
	if err := s.store.Put(ctx, thumbKey, &buf, int64(buf.Len()), mimeType); err != nil {
		s.logger.Warn(ctx, "thumbnail upload failed", "key", thumbKey, "error", err)
		return width, height, nil
	}

	u := s.store.PublicURL(thumbKey)
	return width, height, &u
}

// scaleDown resizes src so its longer edge equals maxSide, preserving
// the aspect ratio.
func scaleDown(src image.Image, maxSide int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	tw, th := maxSide, maxSide
	if w >= h {
		th = h * maxSide / w
	} else {
		tw = w * maxSide / h
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// thumbnailKey mirrors an original key into the thumbnails/ prefix,
// swapping the extension for the one the thumbnail was encoded with.
func thumbnailKey(key, ext string) string {
	k := strings.TrimPrefix(key, "assets/")
	if i := strings.LastIndexByte(k, '.'); i >= 0 {
		k = k[:i]
	}
	return "thumbnails/" + k + ext
}
