package preprocessor

import (
	"bytes"
	"os/exec"
	"path/filepath"

	"github.com/ngkaho1234/c99-to-c89/clang/parser"
	"github.com/ngkaho1234/c99-to-c89/clang/pathutil"
	"github.com/qiniu/x/errors"
	"github.com/qiniu/x/log"
)

const (
	DbgFlagExecCmd = 1 << iota
	DbgFlagAll     = DbgFlagExecCmd
)

var (
	debugExecCmd bool
)

func SetDebug(flags int) {
	debugExecCmd = (flags & DbgFlagExecCmd) != 0
}

// -----------------------------------------------------------------------------

// Args returns the compiler invocation that preprocesses infile into outfile.
// The include directories, macros and flags are the ones conf passes to the
// AST dump, so the output shows the expansions the rewriter works with.
func Args(infile, outfile string, conf *parser.Config) (compiler string, args []string) {
	compiler = "clang"
	args = []string{"-E", "-o", outfile}
	if conf != nil {
		if conf.Compiler != "" {
			compiler = conf.Compiler
		}
		for _, dir := range conf.IncludeDirs {
			args = append(args, "-I"+pathutil.Canonical(conf.BaseDir, dir))
		}
		for _, def := range conf.Defines {
			args = append(args, "-D"+def)
		}
		args = append(args, conf.Flags...)
	}
	return compiler, append(args, infile)
}

// Do preprocesses infile into outfile.
func Do(infile, outfile string, conf *parser.Config) (err error) {
	if infile, err = filepath.Abs(infile); err != nil {
		return errors.NewWith(err, `filepath.Abs(infile)`, -2, "filepath.Abs", infile)
	}
	if outfile, err = filepath.Abs(outfile); err != nil {
		return errors.NewWith(err, `filepath.Abs(outfile)`, -2, "filepath.Abs", outfile)
	}
	compiler, args := Args(infile, outfile, conf)
	if debugExecCmd {
		log.Println("==> runCmd:", compiler, args)
	}
	var stderr bytes.Buffer
	cmd := exec.Command(compiler, args...)
	cmd.Dir = filepath.Dir(infile)
	cmd.Stderr = &stderr
	if err = cmd.Run(); err != nil {
		return &parser.ParseError{Err: err, Stderr: stderr.Bytes()}
	}
	if conf != nil && conf.Stderr != nil && stderr.Len() > 0 {
		conf.Stderr.Write(stderr.Bytes())
	}
	return nil
}

// -----------------------------------------------------------------------------
