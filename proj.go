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
	"os"
	"path/filepath"
	"strings"

	"github.com/ngkaho1234/c99-to-c89/clang/pathutil"
	"github.com/qiniu/x/errors"

	jsoniter "github.com/json-iterator/go"
)

// ProjFile is the name of the project file looked up next to the input.
const ProjFile = "c99to89.cfg"

type projSource struct {
	Dirs  []string `json:"dirs"`
	Files []string `json:"files"`
}

type projConf struct {
	Source   projSource `json:"source"`
	Include  []string   `json:"include"`
	Define   []string   `json:"define"`
	Flags    []string   `json:"flags"`
	Compiler string     `json:"cc"`
	Prefix   string     `json:"prefix"`
	OutDir   string     `json:"outdir"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Project is a loaded project file.
type Project struct {
	Dir   string // directory of the project file
	Conf  Config
	Files []string // sources listed in the project file, resolved against Dir
}

// LoadProject reads a project file. Include directories, sources and the
// output directory are resolved against the directory of the file.
func LoadProject(projfile string) (*Project, error) {
	b, err := os.ReadFile(projfile)
	if err != nil {
		return nil, errors.NewWith(err, `os.ReadFile(projfile)`, -2, "os.ReadFile", projfile)
	}
	var conf projConf
	if err = json.Unmarshal(b, &conf); err != nil {
		return nil, errors.NewWith(err, `json.Unmarshal(b, &conf)`, -2, "json.Unmarshal", b, &conf)
	}
	dir := filepath.Dir(projfile)
	proj := &Project{Dir: dir}
	proj.Conf.Compiler = conf.Compiler
	proj.Conf.BaseDir = dir
	proj.Conf.IncludeDirs = conf.Include
	proj.Conf.Defines = conf.Define
	proj.Conf.Flags = conf.Flags
	proj.Conf.TempPrefix = conf.Prefix
	if conf.OutDir != "" {
		proj.Conf.OutDir = pathutil.Canonical(dir, conf.OutDir)
	}
	for _, d := range conf.Source.Dirs {
		if strings.HasSuffix(d, "/...") {
			d = pathutil.Canonical(dir, strings.TrimSuffix(d, "/...")) + "/..."
		} else {
			d = pathutil.Canonical(dir, d)
		}
		files, err := Expand([]string{d})
		if err != nil {
			return nil, err
		}
		proj.Files = append(proj.Files, files...)
	}
	for _, f := range conf.Source.Files {
		proj.Files = append(proj.Files, pathutil.Canonical(dir, f))
	}
	return proj, nil
}

// FindProject returns the project file next to infile (or in it, if infile is
// a directory), if any.
func FindProject(infile string) (string, bool) {
	dir := infile
	if !isDir(infile) {
		dir = filepath.Dir(infile)
	}
	projfile := filepath.Join(dir, ProjFile)
	return projfile, isFile(projfile)
}

// -----------------------------------------------------------------------------
