// Package imaging is the image transform pipeline: it turns one master
// image into a derivative described by a size profile.
//
// Contain resizing (resize without crop) caps the width and never upscales.
// Cover resizing (resize with crop) scales the master to cover the target box
// and may upscale; the centered crop then yields exactly width x height.
// Resampling uses Catmull-Rom from golang.org/x/image/draw; WebP output uses
// libwebp through github.com/chai2010/webp.
package imaging
