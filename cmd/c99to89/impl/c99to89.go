package c99to89

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/ngkaho1234/c99-to-c89"
	"github.com/ngkaho1234/c99-to-c89/cl"
	"github.com/ngkaho1234/c99-to-c89/clang/parser"
	"github.com/urfave/cli/v2"
)

const ShortUsage = "c99to89 [-v -diff -json -ff] [-I dir] [-D macro] [-o outdir] source.c|dir|dir/... ...\n"

func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "c99to89"
	app.Usage = "Hoist C99 compound literals into C89 declarations"
	app.UsageText = ShortUsage
	app.ArgsUsage = "source.c|dir|dir/..."
	app.DisableSliceFlagSeparator = true
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "v",
			Usage: "print verbose information",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "project file (default: " + c99to89.ProjFile + " next to the first input)",
		},
		&cli.StringFlag{
			Name:  "cc",
			Usage: "compiler that dumps the AST (default: clang)",
		},
		&cli.StringSliceFlag{
			Name:  "I",
			Usage: "add an include directory",
		},
		&cli.StringSliceFlag{
			Name:  "D",
			Usage: "define a macro",
		},
		&cli.StringFlag{
			Name:  "prefix",
			Usage: "prefix of the temporaries (default: " + cl.DefaultTempPrefix + ")",
		},
		&cli.StringFlag{
			Name:    "outdir",
			Aliases: []string{"o"},
			Usage:   "write the results below this directory instead of stdout",
		},
		&cli.BoolFlag{
			Name:  "diff",
			Usage: "print unified diffs instead of the results",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "dump the clang AST of each input next to it in json format",
		},
		&cli.BoolFlag{
			Name:  "ff",
			Usage: "fail fast (stop if an error is encountered)",
		},
		&cli.IntFlag{
			Name:    "jobs",
			Aliases: []string{"j"},
			Usage:   "number of files rewritten in parallel (default: number of CPUs)",
		},
	}
	app.Action = runMain
	return app
}

func runMain(c *cli.Context) error {
	if c.Bool("v") {
		cl.SetDebug(cl.DbgFlagAll)
		parser.SetDebug(parser.DbgFlagAll)
	}

	args := c.Args().Slice()
	var conf c99to89.Config
	var files []string
	projfile := c.String("config")
	if projfile == "" && len(args) > 0 {
		if found, ok := c99to89.FindProject(strings.TrimSuffix(args[0], "/...")); ok {
			projfile = found
		}
	}
	if projfile != "" {
		proj, err := c99to89.LoadProject(projfile)
		if err != nil {
			return err
		}
		conf, files = proj.Conf, proj.Files
	}
	if len(args) > 0 {
		var err error
		if files, err = c99to89.Expand(args); err != nil {
			return err
		}
	}
	if len(files) == 0 {
		return errors.New("no *.c files to rewrite")
	}

	if cc := c.String("cc"); cc != "" {
		conf.Compiler = cc
	}
	for _, dir := range c.StringSlice("I") {
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		conf.IncludeDirs = append(conf.IncludeDirs, dir)
	}
	conf.Defines = append(conf.Defines, c.StringSlice("D")...)
	if prefix := c.String("prefix"); prefix != "" {
		conf.TempPrefix = prefix
	}
	if outdir := c.String("outdir"); outdir != "" {
		conf.OutDir = outdir
	}
	conf.Jobs = c.Int("jobs")
	conf.Stdout = c.App.Writer
	conf.Stderr = c.App.ErrWriter

	var flags int
	if c.Bool("diff") {
		flags |= c99to89.FlagDiff
	}
	if c.Bool("json") {
		flags |= c99to89.FlagDumpJson
	}
	if c.Bool("ff") {
		flags |= c99to89.FlagFailFast
	}
	return c99to89.Run(files, flags, &conf)
}
