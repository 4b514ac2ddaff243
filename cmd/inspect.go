package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/df07/go-scene-viewer/pkg/app"
	"github.com/df07/go-scene-viewer/pkg/loaders"
	"github.com/df07/go-scene-viewer/pkg/scene"
)

// assetReport summarizes one loaded asset
type assetReport struct {
	Asset     string
	Nodes     int
	Meshes    int
	Triangles int
	Min, Max  mgl32.Vec3
	Elapsed   time.Duration
	Err       error
}

// Inspect loads each asset synchronously and prints a summary table.
func Inspect(ctx *cli.Context) error {
	setupLogging(ctx)

	cfg, err := configFromContext(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := signalContext()
	defer stop()

	reports := inspectAssets(runCtx, newLoader(cfg), cfg)

	var buf bytes.Buffer
	writeAssetTable(&buf, reports)
	logger.Noticef("asset summary\n%s", buf.String())

	failed := 0
	for _, r := range reports {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d assets failed to load", failed, len(reports))
	}
	return nil
}

func inspectAssets(ctx context.Context, source loaders.Source, cfg app.Config) []assetReport {
	reports := make([]assetReport, 0, len(cfg.Assets))
	for _, name := range cfg.Assets {
		start := time.Now()
		root, err := source.Load(ctx, name)
		report := assetReport{Asset: name, Elapsed: time.Since(start), Err: err}
		if err == nil {
			summarize(root, &report)
		}
		reports = append(reports, report)
	}
	return reports
}

// summarize fills in node counts and world-space bounds
func summarize(root *scene.Node, report *assetReport) {
	first := true
	root.Walk(mgl32.Ident4(), func(n *scene.Node, world mgl32.Mat4) bool {
		report.Nodes++
		if n.Mesh == nil {
			return true
		}
		report.Meshes++
		report.Triangles += n.Mesh.TriangleCount()
		for _, p := range n.Mesh.Positions {
			w := world.Mul4x1(p.Vec4(1)).Vec3()
			if first {
				report.Min, report.Max = w, w
				first = false
				continue
			}
			for i := 0; i < 3; i++ {
				report.Min[i] = min(report.Min[i], w[i])
				report.Max[i] = max(report.Max[i], w[i])
			}
		}
		return true
	})
}

func writeAssetTable(w io.Writer, reports []assetReport) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Asset", "Nodes", "Meshes", "Triangles", "Bounds", "Load time", "Error"})

	triangles := 0
	for _, r := range reports {
		if r.Err != nil {
			table.Append([]string{r.Asset, "-", "-", "-", "-", r.Elapsed.Round(time.Microsecond).String(), r.Err.Error()})
			continue
		}
		triangles += r.Triangles
		table.Append([]string{
			r.Asset,
			fmt.Sprintf("%d", r.Nodes),
			fmt.Sprintf("%d", r.Meshes),
			fmt.Sprintf("%d", r.Triangles),
			fmt.Sprintf("(%.2f, %.2f, %.2f) - (%.2f, %.2f, %.2f)", r.Min[0], r.Min[1], r.Min[2], r.Max[0], r.Max[1], r.Max[2]),
			r.Elapsed.Round(time.Microsecond).String(),
			"",
		})
	}
	table.SetFooter([]string{"", "", "TOTAL", fmt.Sprintf("%d", triangles), "", "", ""})
	table.Render()
}
