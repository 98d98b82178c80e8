/*
Copyright 2023 The kapply authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	_ "k8s.io/client-go/plugin/pkg/client/auth"

	"github.com/deploykit/kapply/pkg/config"
	"github.com/deploykit/kapply/pkg/manifest"
)

var VERSION = "1.0.0-dev.0"

const PROJECT = "kapply"

var rootCmd = &cobra.Command{
	Use:           PROJECT,
	Version:       VERSION,
	SilenceUsage:  true,
	SilenceErrors: true,
	Short:         "A command line utility to batch apply Kubernetes manifests from files, S3 buckets and OCI artifacts.",
	Long: `Kapply reconciles collections of Kubernetes manifests against a cluster.

Distribute Kubernetes configuration as OCI artifacts to container registries:

- kapply push artifact oci://<image-url>:<tag> -k [-f]
- kapply pull artifact oci://<image-url>:<tag>

Build and apply Kubernetes resources:

- kapply build [-f <dir path>] [-k <overlay path>]
- kapply apply [-f] [-k] [-a <oci url>] [--bucket <s3 bucket>] [--cluster <eks cluster>]
`,
}

type rootFlags struct {
	timeout time.Duration
}

var (
	rootArgs = rootFlags{}
	logger   = stderrLogger{stderr: os.Stderr}
	cfg      = config.NewConfig()
)

var kubeconfigArgs = genericclioptions.NewConfigFlags(false)

func init() {
	rootCmd.PersistentFlags().DurationVar(&rootArgs.timeout, "timeout", time.Minute,
		"The length of time to wait before giving up on the current operation.")

	kubeconfigArgs.Timeout = nil
	kubeconfigArgs.AddFlags(rootCmd.PersistentFlags())

	rootCmd.DisableAutoGenTag = true
	rootCmd.SetOut(os.Stdout)
}

func main() {
	loadConfig()
	if err := rootCmd.Execute(); err != nil {
		logger.Println(`✗`, err)
		os.Exit(1)
	}
}

func loadConfig() {
	if c, err := config.Read(""); err != nil {
		logger.Println(`✗`, fmt.Errorf("loading the config failed, error: %w", err))
	} else {
		cfg = c
	}

	manifest.ApplyOrder = manifest.KindOrder{
		First: cfg.ApplyOrder.First,
		Last:  cfg.ApplyOrder.Last,
	}
}
