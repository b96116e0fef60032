/*
 * Copyright 2018 The Trickster Authors
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

// Package main is the main package for the shelfcache application
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/trickstercache/shelfcache/pkg/appinfo"
)

var (
	applicationGitCommitID string
	applicationBuildTime   string
)

const (
	applicationName    = "shelfcache"
	applicationVersion = "0.4.0"
)

func main() {
	appinfo.Set(applicationName, applicationVersion, applicationBuildTime, applicationGitCommitID)
	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "shelfcache:", err)
		os.Exit(1)
	}
}
