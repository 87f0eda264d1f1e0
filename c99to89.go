/*
 * Copyright (c) 2022 The GoPlus Authors (goplus.org). All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package c99to89

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ngkaho1234/c99-to-c89/cl"
	"github.com/ngkaho1234/c99-to-c89/clang/parser"
	"github.com/ngkaho1234/c99-to-c89/clang/printer"
	"github.com/ngkaho1234/c99-to-c89/clang/scanner"
	"github.com/ngkaho1234/c99-to-c89/clang/tu"
	"github.com/qiniu/x/log"
	"golang.org/x/sync/errgroup"

	qerrors "github.com/qiniu/x/errors"
)

const (
	FlagDumpJson = 1 << iota
	FlagDiff
	FlagFailFast
)

func isDir(name string) bool {
	if fi, err := os.Lstat(name); err == nil {
		return fi.IsDir()
	}
	return false
}

func isFile(name string) bool {
	if fi, err := os.Lstat(name); err == nil {
		return !fi.IsDir()
	}
	return false
}

type Config struct {
	parser.Config

	TempPrefix string // default: cl.DefaultTempPrefix

	// OutDir receives the rewritten files. Relative input paths are kept below
	// it, absolute ones are reduced to their base name. If OutDir is empty the
	// results are written to Stdout.
	OutDir string
	Jobs   int       // files rewritten in parallel, default: runtime.NumCPU()
	Stdout io.Writer // default: os.Stdout
}

// -----------------------------------------------------------------------------

// RewriteFile hoists the compound literals of a C file. It returns the source
// it read together with the result.
func RewriteFile(infile string, conf *Config) (src, out []byte, err error) {
	if conf == nil {
		conf = new(Config)
	}
	fi, err := os.Stat(infile)
	if err != nil {
		return nil, nil, qerrors.NewWith(err, `os.Stat(infile)`, -2, "os.Stat", infile)
	}
	if fi.Size() > scanner.MaxFileSize {
		return nil, nil, &cl.Error{Kind: cl.ErrResource, Msg: fmt.Sprintf("%s: %d bytes", infile, fi.Size()), Err: scanner.ErrTooLarge}
	}
	pconf := conf.Config
	unit, err := tu.Load(infile, &pconf)
	if err != nil {
		if errors.Is(err, scanner.ErrTooLarge) {
			err = &cl.Error{Kind: cl.ErrResource, Msg: infile, Err: err}
		}
		return nil, nil, err
	}
	toks, err := cl.Rewrite(unit, &cl.Config{TempPrefix: conf.TempPrefix})
	if err != nil {
		return nil, nil, err
	}
	return unit.Source(), printer.Bytes(toks), nil
}

// OutFile returns where the result for infile is written below outdir.
func OutFile(outdir, infile string) string {
	if filepath.IsAbs(infile) {
		return filepath.Join(outdir, filepath.Base(infile))
	}
	return filepath.Join(outdir, infile)
}

type result struct {
	src, out []byte
	err      error
}

// Run rewrites files, in parallel. Outputs (or diffs with FlagDiff) are
// written in the order of files. Unless FlagFailFast is set every file is
// processed; the first error is returned.
func Run(files []string, flags int, conf *Config) error {
	if conf == nil {
		conf = new(Config)
	}
	stdout := conf.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	if conf.OutDir == "" && (flags&FlagDiff) == 0 && len(files) > 1 {
		return errors.New("multiple input files need an output directory")
	}
	jobs := conf.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	results := make([]result, len(files))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(jobs)
	for i, file := range files {
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			r := &results[i]
			r.src, r.out, r.err = rewrite(file, flags, conf)
			if r.err != nil && (flags&FlagFailFast) != 0 {
				return r.err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var first error
	for i, file := range files {
		r := results[i]
		if r.err != nil {
			log.Println("==>", file, "-", r.err)
			if first == nil {
				first = r.err
			}
			continue
		}
		if err := emit(stdout, file, r, flags, conf); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func rewrite(file string, flags int, conf *Config) (src, out []byte, err error) {
	fconf := *conf
	var json []byte
	if (flags & FlagDumpJson) != 0 {
		fconf.Json = &json
	}
	src, out, err = RewriteFile(file, &fconf)
	if err == nil && json != nil {
		dumpfile := strings.TrimSuffix(file, filepath.Ext(file)) + ".json"
		if e := os.WriteFile(dumpfile, json, 0666); e != nil {
			err = qerrors.NewWith(e, `os.WriteFile(dumpfile, json, 0666)`, -2, "os.WriteFile", dumpfile, json, 0666)
		}
	}
	return
}

func emit(stdout io.Writer, file string, r result, flags int, conf *Config) error {
	if (flags & FlagDiff) != 0 {
		_, err := stdout.Write(Diff(file, r.src, r.out))
		return err
	}
	if conf.OutDir == "" {
		_, err := stdout.Write(r.out)
		return err
	}
	outfile := OutFile(conf.OutDir, file)
	if err := os.MkdirAll(filepath.Dir(outfile), 0777); err != nil {
		return qerrors.NewWith(err, `os.MkdirAll(filepath.Dir(outfile), 0777)`, -2, "os.MkdirAll", filepath.Dir(outfile), 0777)
	}
	if err := os.WriteFile(outfile, r.out, 0666); err != nil {
		return qerrors.NewWith(err, `os.WriteFile(outfile, r.out, 0666)`, -2, "os.WriteFile", outfile, r.out, 0666)
	}
	return nil
}

// -----------------------------------------------------------------------------

// Expand resolves command line arguments to C files: a file stands for
// itself, a directory for the *.c files in it and dir/... for the *.c files
// of the whole tree. Directories starting with `_` are skipped.
func Expand(args []string) (files []string, err error) {
	for _, arg := range args {
		switch {
		case strings.HasSuffix(arg, "/..."):
			files, err = expandDir(strings.TrimSuffix(arg, "/..."), files, true)
		case isDir(arg):
			files, err = expandDir(arg, files, false)
		case isFile(arg):
			files = append(files, arg)
		default:
			err = fmt.Errorf("%s: no such file or directory", arg)
		}
		if err != nil {
			return nil, err
		}
	}
	return
}

func expandDir(dir string, files []string, recursively bool) ([]string, error) {
	fis, err := os.ReadDir(dir)
	if err != nil {
		return nil, qerrors.NewWith(err, `os.ReadDir(dir)`, -2, "os.ReadDir", dir)
	}
	for _, fi := range fis {
		fname := fi.Name()
		if fi.IsDir() {
			if recursively && !strings.HasPrefix(fname, "_") {
				if files, err = expandDir(filepath.Join(dir, fname), files, true); err != nil {
					return nil, err
				}
			}
			continue
		}
		if strings.HasSuffix(fname, ".c") {
			files = append(files, filepath.Join(dir, fname))
		}
	}
	return files, nil
}

// -----------------------------------------------------------------------------
