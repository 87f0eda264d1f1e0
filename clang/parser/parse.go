package parser

import (
	"bytes"
	"io"
	"os/exec"

	jsoniter "github.com/json-iterator/go"
	"github.com/ngkaho1234/c99-to-c89/clang/ast"
	"github.com/ngkaho1234/c99-to-c89/clang/pathutil"
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

type ParseError struct {
	Err    error
	Stderr []byte
}

func (p *ParseError) Error() string {
	if len(p.Stderr) > 0 {
		return string(p.Stderr)
	}
	return p.Err.Error()
}

func (p *ParseError) Unwrap() error {
	return p.Err
}

// -----------------------------------------------------------------------------

type Config struct {
	Compiler    string   // default: clang
	BaseDir     string   // relative include dirs are resolved against it
	IncludeDirs []string // -I
	Defines     []string // -D
	Flags       []string // extra compiler flags

	Json   *[]byte   // receives the raw AST dump if not nil
	Stderr io.Writer // receives compiler warnings if not nil
}

// Args returns the compiler invocation that dumps the AST of filename.
func (p *Config) Args(filename string) (compiler string, args []string) {
	compiler = "clang"
	args = []string{"-Xclang", "-ast-dump=json", "-fsyntax-only"}
	if p != nil {
		if p.Compiler != "" {
			compiler = p.Compiler
		}
		for _, dir := range p.IncludeDirs {
			args = append(args, "-I"+pathutil.Canonical(p.BaseDir, dir))
		}
		for _, def := range p.Defines {
			args = append(args, "-D"+def)
		}
		args = append(args, p.Flags...)
	}
	return compiler, append(args, filename)
}

func DumpAST(filename string, conf *Config) (result []byte, warning []byte, err error) {
	compiler, args := conf.Args(filename)
	if debugExecCmd {
		log.Println("==> runCmd:", compiler, args)
	}
	stdout := NewPagedWriter()
	stderr := new(bytes.Buffer)
	cmd := exec.Command(compiler, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err = cmd.Run()
	errmsg := stderr.Bytes()
	if err != nil {
		return nil, nil, &ParseError{Err: err, Stderr: errmsg}
	}
	return stdout.Bytes(), errmsg, nil
}

// -----------------------------------------------------------------------------

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Parse decodes an AST dump.
func Parse(data []byte) (file *ast.Node, err error) {
	file = new(ast.Node)
	if err = json.Unmarshal(data, file); err != nil {
		return nil, &ParseError{Err: err}
	}
	file.DecompressLocs()
	return
}

func ParseFile(filename string, conf *Config) (file *ast.Node, warning []byte, err error) {
	out, warning, err := DumpAST(filename, conf)
	if err != nil {
		return
	}
	if conf != nil {
		if conf.Json != nil {
			*conf.Json = out
		}
		if conf.Stderr != nil && len(warning) > 0 {
			conf.Stderr.Write(warning)
		}
	}
	file, err = Parse(out)
	return
}

// -----------------------------------------------------------------------------
