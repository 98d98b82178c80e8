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
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploykit/kapply/pkg/registry"
)

var pullArtifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Pull downloads Kubernetes manifests from a container registry.",
	Long: `The pull artifact command downloads the specified OCI artifact and writes the Kubernetes manifests to stdout.
For private registries, the pull command uses the credentials from '~/.docker/config.json'.`,
	Example: `  # Pull Kubernetes manifests from an OCI artifact hosted on Docker Hub
  kapply pull artifact oci://docker.io/user/repo:v1.0.0 > manifests.yaml

  # Pull an encrypted artifact using the age private keys
  kapply pull artifact oci://ghcr.io/user/repo:v1.0.0 --age-identities ./keys.txt

  # Pull the latest artifact from a local registry
  kapply pull artifact oci://localhost:5000/repo
`,
	RunE: runPullArtifactCmd,
}

type pullArtifactFlags struct {
	identityFile string
}

var pullArtifactArgs pullArtifactFlags

func init() {
	pullArtifactCmd.Flags().StringVar(&pullArtifactArgs.identityFile, "age-identities", "",
		"Path to a file containing age identities (private keys) for decrypting the artifact.")

	pullCmd.AddCommand(pullArtifactCmd)
}

func runPullArtifactCmd(cmd *cobra.Command, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("you must specify an artifact name e.g. 'oci://docker.io/user/repo:tag'")
	}

	url, err := registry.ParseURL(args[0])
	if err != nil {
		return err
	}

	identities, err := registry.ParseAgeIdentities(pullArtifactArgs.identityFile)
	if err != nil {
		return fmt.Errorf("loading age identities failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	yml, _, err := registry.Pull(ctx, url, identities)
	if err != nil {
		return fmt.Errorf("pulling %s failed: %w", url, err)
	}

	rootCmd.Println(yml)
	return nil
}
