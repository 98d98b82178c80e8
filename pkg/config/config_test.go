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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRead_Defaults(t *testing.T) {
	cfg, err := Read(filepath.Join(t.TempDir(), "missing", "config"))
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(KapplyConfigKind, cfg.Kind); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	if cfg.ApplyOrder == nil || len(cfg.ApplyOrder.First) == 0 {
		t.Errorf("expected a default apply order")
	}

	if cfg.ApplyOrder.First[1] != "Namespace" {
		t.Errorf("expected namespaces early in the default apply order, got %v", cfg.ApplyOrder.First)
	}
}

func TestWriteRead(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), ".kapply", "config")

	cfg := NewConfig()
	cfg.Cluster = &Cluster{Name: "prod", Region: "eu-west-1"}
	cfg.Bucket = &Bucket{Name: "my-manifests", Prefix: "releases/v1"}

	if err := cfg.Write(cfgPath); err != nil {
		t.Fatal(err)
	}

	result, err := Read(cfgPath)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(cfg, result); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}

func TestRead_FillsApplyOrder(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config")
	body := `apiVersion: kapply.dev/v1
kind: Config
cluster:
  name: staging
  region: us-east-1
`
	if err := os.WriteFile(cfgPath, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Read(cfgPath)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff("staging", cfg.Cluster.Name); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	// a config without an explicit apply order gets the default one
	if cfg.ApplyOrder == nil || len(cfg.ApplyOrder.First) == 0 {
		t.Errorf("expected the default apply order to be filled in")
	}
}
