/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package version carries the build-time identity (package name, release,
// build hash, author, license) that cmd/pktserverd prints via --version and
// the CLI banner. It is deliberately small: the composition root is the only
// consumer, there is no registry or global instance.
package version

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"time"
)

// License identifies the license text returned by GetLicenseName/GetLicenseBoiler.
type License uint8

const (
	License_None License = iota
	License_MIT
	License_Apache_v2
	License_GNU_GPL_v3
)

func (l License) name() string {
	switch l {
	case License_MIT:
		return "MIT License"
	case License_Apache_v2:
		return "Apache License 2.0"
	case License_GNU_GPL_v3:
		return "GNU GENERAL PUBLIC LICENSE Version 3"
	default:
		return "Unlicensed"
	}
}

func (l License) boiler() string {
	switch l {
	case License_MIT:
		return "Permission is hereby granted, free of charge, to any person obtaining a copy of this software."
	case License_Apache_v2:
		return "Licensed under the Apache License, Version 2.0 (the \"License\")."
	case License_GNU_GPL_v3:
		return "This program is free software: you can redistribute it and/or modify it under the terms of the GNU GENERAL PUBLIC LICENSE Version 3."
	default:
		return ""
	}
}

// Version exposes the build metadata baked into a binary at link time (or
// supplied by the composition root) through the getters the CLI layer needs
// for --version, the startup banner and the config-file header comment.
type Version interface {
	GetPackage() string
	GetDescription() string
	GetBuild() string
	GetRelease() string
	GetAuthor() string
	GetPrefix() string
	GetDate() string
	GetTime() time.Time
	GetAppId() string
	GetHeader() string
	GetInfo() string
	GetLicenseName() string
	GetLicenseBoiler(l License) string
	GetRootPackagePath() string
}

type vers struct {
	license License
	pkg      string
	desc     string
	date     time.Time
	build    string
	release  string
	author   string
	prefix   string
	rootPath string
}

// NewVersion builds a Version. dateRFC3339 falls back to time.Now when it
// cannot be parsed. ref is any value living in the caller's package; its
// reflect.Type is used to derive the root package import path, walking up
// numSubPackage directory components from it.
func NewVersion(license License, pkg, desc, dateRFC3339, build, release, author, prefix string, ref interface{}, numSubPackage int) Version {
	t, err := time.Parse(time.RFC3339, dateRFC3339)
	if err != nil {
		t = time.Now()
	}

	path := reflect.TypeOf(ref).PkgPath()
	for i := 0; i < numSubPackage; i++ {
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			path = path[:idx]
		}
	}

	if pkg == "" {
		pkg = path
		if idx := strings.LastIndex(pkg, "/"); idx >= 0 {
			pkg = pkg[idx+1:]
		}
	}

	return &vers{
		license:  license,
		pkg:      pkg,
		desc:     desc,
		date:     t,
		build:    build,
		release:  release,
		author:   author,
		prefix:   prefix,
		rootPath: path,
	}
}

func (v *vers) GetPackage() string     { return v.pkg }
func (v *vers) GetDescription() string { return v.desc }
func (v *vers) GetBuild() string       { return v.build }
func (v *vers) GetRelease() string     { return v.release }
func (v *vers) GetAuthor() string      { return fmt.Sprintf("%s (source: %s)", v.author, v.rootPath) }
func (v *vers) GetPrefix() string      { return strings.ToUpper(v.prefix) }
func (v *vers) GetDate() string        { return v.date.Format(time.RFC3339) }
func (v *vers) GetTime() time.Time     { return v.date }

func (v *vers) GetAppId() string {
	return fmt.Sprintf("%s-%s-%s (Runtime: %s)", v.release, runtime.GOOS, runtime.GOARCH, runtime.Version())
}

func (v *vers) GetHeader() string {
	return fmt.Sprintf("%s %s (build %s)", v.pkg, v.release, v.build)
}

func (v *vers) GetInfo() string {
	return fmt.Sprintf("Release: %s\nBuild: %s\nDate: %s\nAuthor: %s", v.release, v.build, v.GetDate(), v.GetAuthor())
}

func (v *vers) GetLicenseName() string { return v.license.name() }

func (v *vers) GetLicenseBoiler(l License) string { return l.boiler() }

func (v *vers) GetRootPackagePath() string { return v.rootPath }
