package imaging

import (
	"image"
	"image/color"
)

// createInMemoryImage creates a solid-colour image for testing.
func createInMemoryImage(width, height int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createEdgeTestImage draws a black rectangle over the centre half of a
// white image, producing four straight edges.
func createEdgeTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	for y := height / 4; y < 3*height/4; y++ {
		for x := width / 4; x < 3*width/4; x++ {
			img.Set(x, y, color.Black)
		}
	}
	return img
}

func countEdges(g *image.Gray) int {
	n := 0
	for _, v := range g.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// createQuadImage fills the convex polygon corners with a light card colour
// on a dark background.
func createQuadImage(width, height int, corners [][2]float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBA{30, 30, 35, 255}
			var pos, neg bool
			for i, a := range corners {
				b := corners[(i+1)%len(corners)]
				v := (b[0]-a[0])*(float64(y)-a[1]) - (b[1]-a[1])*(float64(x)-a[0])
				pos = pos || v > 0
				neg = neg || v < 0
			}
			if !(pos && neg) {
				c = color.NRGBA{225, 205, 180, 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
