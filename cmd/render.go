package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/aaalloc/sviet/renderer"
	"github.com/aaalloc/sviet/scene"
	"github.com/aaalloc/sviet/tracer/wgpu"
)

// Render a still frame of a built-in scene and save it as a png.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return errors.New("missing scene name argument")
	}
	build, err := sceneByName(ctx.Args().First())
	if err != nil {
		return err
	}

	opts := renderer.Options{
		FrameW:             uint32(ctx.Int("width")),
		FrameH:             uint32(ctx.Int("height")),
		SamplesPerPixel:    uint32(ctx.Int("spp")),
		SamplesMaxPerPixel: uint32(ctx.Int("max-spp")),
		MaxDepth:           uint32(ctx.Int("max-depth")),
		MaxFrames:          uint32(ctx.Int("max-frames")),
	}

	sc := build(scene.RenderParam{}, scene.FrameData{})

	tr, err := wgpu.NewTracer()
	if err != nil {
		return err
	}
	logger.Noticef(`using tracer for adapter "%s"`, tr.Id())

	r, err := renderer.NewDefault(sc, tr, opts)
	if err != nil {
		tr.Close()
		return err
	}
	defer r.Close()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			logger.Warning("interrupt received; stopping render")
			r.Interrupt()
		}
	}()

	if err = r.Render(); err != nil && err != renderer.ErrInterrupted {
		return err
	}

	frame, err := r.Frame()
	if err != nil {
		return err
	}

	imgFile := ctx.String("out")
	f, err := os.Create(imgFile)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	if err = png.Encode(f, frame); err != nil {
		return err
	}
	logger.Noticef("wrote frame to %s in %d ms", imgFile, time.Since(start).Nanoseconds()/1000000)

	displayFrameStats(tr.Id(), r.Stats())
	return nil
}

func displayFrameStats(id string, stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Device", "Frames", "Samples/pixel", "Last frame", "Render time"})
	table.Append([]string{
		id,
		fmt.Sprintf("%d", stats.FrameCount),
		fmt.Sprintf("%d", stats.TotalSamples),
		fmt.Sprintf("%s", stats.FrameTime),
		fmt.Sprintf("%s", stats.RenderTime),
	})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
