package renderer

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
)

// FrameStats contains statistics about a rendered frame
type FrameStats struct {
	Frame     uint64        // Frame number, starting at 1
	Nodes     int           // Nodes visited
	Lights    int           // Lights applied
	Triangles int           // Triangles submitted
	Drawn     int           // Triangles rasterized
	Culled    int           // Triangles rejected (back-facing, degenerate, clipped)
	Duration  time.Duration // Wall time spent rendering
}

// WriteStatsTable writes one row per frame
func WriteStatsTable(w io.Writer, frames []FrameStats) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Frame", "Nodes", "Lights", "Triangles", "Drawn", "Culled", "Render time"})

	var total time.Duration
	for _, f := range frames {
		table.Append([]string{
			fmt.Sprintf("%d", f.Frame),
			fmt.Sprintf("%d", f.Nodes),
			fmt.Sprintf("%d", f.Lights),
			fmt.Sprintf("%d", f.Triangles),
			fmt.Sprintf("%d", f.Drawn),
			fmt.Sprintf("%d", f.Culled),
			f.Duration.String(),
		})
		total += f.Duration
	}
	table.SetFooter([]string{"", "", "", "", "", "TOTAL", total.String()})
	table.Render()
}

// AverageLuminance returns the mean Rec. 709 luminance of an image in [0,1]
func AverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixels := bounds.Dx() * bounds.Dy()
	if pixels == 0 {
		return 0
	}

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			sum += 0.2126*float64(r)/0xffff + 0.7152*float64(g)/0xffff + 0.0722*float64(b)/0xffff
		}
	}
	return sum / float64(pixels)
}
