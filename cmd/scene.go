package cmd

import (
	"bytes"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/aaalloc/sviet/scene"
)

type sceneBuilder func(scene.RenderParam, scene.FrameData) *scene.Scene

var builtinScenes = []struct {
	name        string
	description string
	build       sceneBuilder
}{
	{"one-weekend", "sphere field with glass, metal and an emissive light", scene.OneWeekend},
	{"cornell", "cornell box with a metal cube, a tall box and a glass sphere", scene.Cornell},
}

func sceneByName(name string) (sceneBuilder, error) {
	for _, entry := range builtinScenes {
		if entry.name == name {
			return entry.build, nil
		}
	}
	return nil, fmt.Errorf("unknown scene %q; run the scenes command for the available names", name)
}

// List the built-in scenes.
func ListScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Scene", "Description"})
	for _, entry := range builtinScenes {
		table.Append([]string{entry.name, entry.description})
	}
	table.Render()

	logger.Noticef("built-in scenes\n%s", buf.String())
	return nil
}

// Display primitive counts and acceleration structure stats for a scene.
func ShowSceneInfo(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() != 1 {
		return fmt.Errorf("missing scene name argument")
	}

	build, err := sceneByName(ctx.Args().First())
	if err != nil {
		return err
	}

	sc := build(scene.RenderParam{}, scene.FrameData{})
	nodes := sc.BuildBvh()

	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Spheres", "Triangles", "Materials", "Lights", "BVH nodes"})
	table.Append([]string{
		fmt.Sprintf("%d", len(sc.Spheres)),
		fmt.Sprintf("%d", len(sc.Triangles)),
		fmt.Sprintf("%d", len(sc.Materials)),
		fmt.Sprintf("%d", len(sc.Lights)),
		fmt.Sprintf("%d", len(nodes)),
	})
	table.Render()

	logger.Noticef("scene information for %q\n%s", ctx.Args().First(), buf.String())
	return nil
}
