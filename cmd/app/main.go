package main

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"github.com/urfave/cli"

	"github.com/1F47E/go-bezier-renderer/internal/config"
	"github.com/1F47E/go-bezier-renderer/internal/logger"
)

var app = cli.NewApp()
var log = logger.Log

// frame selection and rendering options, shared by the default action and
// the frame command
var renderFlags = []cli.Flag{
	cli.StringFlag{Name: "frames, f", Value: config.DefaultFrameDir, Usage: "directory the frames are stored in"},
	cli.StringFlag{Name: "ext, e", Value: config.DefaultFileExt, Usage: "extension of the frame files"},
	cli.StringFlag{Name: "color, c", Value: config.DefaultColor, Usage: "colour of the lines to be drawn"},
	cli.BoolFlag{Name: "bilateral, b", Usage: "reduce the number of lines with a bilateral filter for simpler renders"},
	cli.BoolFlag{Name: "l2, l", Usage: "use the L2 gradient with -b: fewer edges, still accurate, quicker renders"},
}

var serveFlags = []cli.Flag{
	cli.BoolFlag{Name: "download, d", Usage: "download rendered frames automatically"},
	cli.BoolFlag{Name: "hide-grid, g", Usage: "hide the grid in the background of the graph"},
	cli.BoolFlag{Name: "yes", Usage: "agree to the EULA without the input prompt"},
	cli.BoolFlag{Name: "no-browser", Usage: "run the renderer server without opening a web browser"},
	cli.StringFlag{Name: "size", Usage: "dimensions for downloaded images (e.g. 3840x2160)"},
	cli.StringFlag{Name: "format", Value: config.DefaultFormat, Usage: `format of downloaded frames: "svg" or "png"`},
	cli.IntFlag{Name: "workers", Value: runtime.NumCPU(), Usage: "number of frames processed in parallel"},
	cli.StringFlag{Name: "cache", Usage: "write the batch result to this file (.json or .cbor)"},
}

func init() {
	app.Name = "bezier-renderer"
	app.Usage = "Render image frames as Bezier curves in the Desmos graphing calculator"
	app.UsageText = "bezier-renderer [options]\n   bezier-renderer command [arguments]"
	app.HideVersion = true
	app.Flags = append(append([]cli.Flag{}, renderFlags...), serveFlags...)
	app.Action = run
	app.OnUsageError = usageError
	app.Commands = []cli.Command{
		{
			Name:         "frame",
			Usage:        "Print the expressions of one frame as returned by the server",
			ArgsUsage:    "<index>",
			Flags:        renderFlags,
			Action:       printFrame,
			OnUsageError: usageError,
		},
		{
			Name:      "extract",
			Aliases:   []string{"x"},
			Usage:     "Split a video into numbered frames with ffmpeg",
			ArgsUsage: "<video>",
			Flags: []cli.Flag{
				renderFlags[0],
				renderFlags[1],
				cli.Float64Flag{Name: "fps", Usage: "frames per second to keep, 0 keeps every frame"},
			},
			Action:       extract,
			OnUsageError: usageError,
		},
		{
			Name:         "inspect",
			Usage:        "Verify a cache file and print its metadata",
			ArgsUsage:    "<cache>",
			Action:       inspect,
			OnUsageError: usageError,
		},
	}
}

// usageError reports unknown or malformed flags as configuration errors.
func usageError(c *cli.Context, err error, _ bool) error {
	return configExit(c, err)
}

func getArg(c *cli.Context, name string) (string, error) {
	f := c.Args().Get(0)
	if f == "" {
		return "", cli.NewExitError(fmt.Sprintf("%s is required", name), 2)
	}
	return f, nil
}

func getIndex(c *cli.Context) (int, error) {
	arg, err := getArg(c, "frame index")
	if err != nil {
		return 0, err
	}
	idx, err := strconv.Atoi(arg)
	if err != nil || idx < 0 {
		return 0, cli.NewExitError(fmt.Sprintf("invalid frame index %q", arg), 2)
	}
	return idx, nil
}

func main() {
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
