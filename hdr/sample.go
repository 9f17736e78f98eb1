package hdr

import "math"

// Downsample returns a copy of the image box-filtered down to the width given, keeping the aspect ratio. Images that
// are already narrow enough are returned as-is.
func (img *Image) Downsample(width int) *Image {

	if width <= 0 || img.Width <= width {
		return img
	}

	height := max(1, img.Height*width/img.Width)

	out := NewImage(width, height)

	for y := 0; y < height; y++ {

		y0 := y * img.Height / height
		y1 := max(y0+1, (y+1)*img.Height/height)

		for x := 0; x < width; x++ {

			x0 := x * img.Width / width
			x1 := max(x0+1, (x+1)*img.Width/width)

			var r, g, b float32
			for sy := y0; sy < y1; sy++ {
				for sx := x0; sx < x1; sx++ {
					pr, pg, pb := img.RGB(sx, sy)
					r += pr
					g += pg
					b += pb
				}
			}

			n := float32((x1 - x0) * (y1 - y0))
			out.SetRGB(x, y, r/n, g/n, b/n)

		}

	}

	return out

}

// Bilinear samples the image at the normalized coordinates u and v with bilinear filtering. U wraps around (as
// it does across the seam of a panorama), while V is clamped to the top and bottom rows.
func (img *Image) Bilinear(u, v float32) (r, g, b float32) {

	if img.Width == 0 || img.Height == 0 {
		return 0, 0, 0
	}

	fx := float64(u)*float64(img.Width) - 0.5
	fy := float64(v)*float64(img.Height) - 0.5

	fx -= math.Floor(fx/float64(img.Width)) * float64(img.Width)
	fy = math.Max(0, math.Min(fy, float64(img.Height-1)))

	x0 := int(fx)
	y0 := int(fy)
	tx := float32(fx - float64(x0))
	ty := float32(fy - float64(y0))

	x1 := (x0 + 1) % img.Width
	y1 := min(y0+1, img.Height-1)
	x0 %= img.Width

	r00, g00, b00 := img.RGB(x0, y0)
	r10, g10, b10 := img.RGB(x1, y0)
	r01, g01, b01 := img.RGB(x0, y1)
	r11, g11, b11 := img.RGB(x1, y1)

	lerp := func(a, b, c, d float32) float32 {
		top := a + (b-a)*tx
		bottom := c + (d-c)*tx
		return top + (bottom-top)*ty
	}

	return lerp(r00, r10, r01, r11), lerp(g00, g10, g01, g11), lerp(b00, b10, b01, b11)

}
