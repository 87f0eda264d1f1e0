package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/ngkaho1234/c99-to-c89/clang/parser"
	"github.com/ngkaho1234/c99-to-c89/clang/preprocessor"
	"github.com/ngkaho1234/c99-to-c89/clang/scanner"

	jsoniter "github.com/json-iterator/go"
)

var (
	dump   = flag.Bool("dump", false, "dump AST as clang prints it")
	tokens = flag.Bool("tokens", false, "print the tokens of the source")
	pp     = flag.Bool("pp", false, "preprocess the source into source.i")
	cc     = flag.String("cc", "", "compiler (default: clang)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: clangast [-dump | -tokens | -pp] [-cc compiler] source.c\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		return
	}
	var file = flag.Arg(0)
	var conf = &parser.Config{Compiler: *cc, Stderr: os.Stderr}
	var err error
	switch {
	case *pp:
		err = preprocessor.Do(file, strings.TrimSuffix(file, ".c")+".i", conf)
	case *tokens:
		err = printTokens(file)
	case *dump:
		doc, _, e := parser.DumpAST(file, conf)
		if e == nil {
			os.Stdout.Write(doc)
		}
		err = e
	default:
		doc, _, e := parser.ParseFile(file, conf)
		if e == nil {
			enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			e = enc.Encode(doc)
		}
		err = e
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func printTokens(file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	toks, err := scanner.Scan(src)
	if err != nil {
		return err
	}
	for _, t := range toks {
		fmt.Printf("%d:%d\t%v\t%q\n", t.Pos.Line, t.Pos.Col, t.Kind, t.Text)
	}
	return nil
}
