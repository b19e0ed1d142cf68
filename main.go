package main

import (
	"os"

	"github.com/urfave/cli"

	"github.com/aaalloc/sviet/cmd"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "sviet"
	app.Usage = "render scenes using gpu path tracing"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "list-adapters",
			Usage:  "list available gpu adapters",
			Action: cmd.ListAdapters,
		},
		{
			Name:   "scenes",
			Usage:  "list built-in scenes",
			Action: cmd.ListScenes,
		},
		{
			Name:      "info",
			Usage:     "show primitive and acceleration structure stats for a scene",
			ArgsUsage: "scene_name",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:  "render",
			Usage: "render scene",
			Subcommands: []cli.Command{
				{
					Name:  "frame",
					Usage: "render single frame",
					Description: `
Render a built-in scene by accumulating samples across frames until every
pixel reaches the sample target, then save the result as a png image.`,
					ArgsUsage: "scene_name",
					Flags: []cli.Flag{
						cli.IntFlag{
							Name:  "width",
							Value: 512,
							Usage: "frame width",
						},
						cli.IntFlag{
							Name:  "height",
							Value: 512,
							Usage: "frame height",
						},
						cli.IntFlag{
							Name:  "spp",
							Value: 4,
							Usage: "samples per pixel added each frame",
						},
						cli.IntFlag{
							Name:  "max-spp",
							Value: 1000,
							Usage: "total samples per pixel to accumulate",
						},
						cli.IntFlag{
							Name:  "max-depth",
							Value: 50,
							Usage: "max ray bounces",
						},
						cli.IntFlag{
							Name:  "max-frames",
							Value: 0,
							Usage: "hard frame limit (0 renders until convergence)",
						},
						cli.StringFlag{
							Name:  "out, o",
							Value: "frame.png",
							Usage: "image filename for the rendered frame",
						},
					},
					Action: cmd.RenderFrame,
				},
			},
		},
	}

	app.Run(os.Args)
}
