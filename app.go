package main

import (
	"log"
	"os"

	"github.com/masmgr/pagehistory-go/cmd"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the app with the root-level flags read by the default
// action, which resolves the repository given as the first argument.
func newApp() *cli.App {
	app := cmd.App()
	app.Flags = append(app.Flags, legacyFlags()...)
	return app
}

func legacyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "ref",
			Aliases: []string{"b"},
			Usage:   "branch, tag or commit to read (legacy mode)",
		},
		&cli.StringSliceFlag{
			Name:  "include",
			Usage: "glob patterns to include (legacy mode)",
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Value:   "console",
			Usage:   "output format (legacy mode)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output file path (legacy mode)",
		},
		&cli.BoolFlag{
			Name:  "show-versions",
			Usage: "list every version of every file (legacy mode)",
		},
	}
}
