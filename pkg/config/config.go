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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"sigs.k8s.io/yaml"

	"github.com/deploykit/kapply/pkg/manifest"
)

const (
	KapplyConfigKind       = "Config"
	KapplyConfigApiVersion = "kapply.dev/v1"
)

type Config struct {
	metav1.TypeMeta `json:",inline"`

	// ApplyOrder holds the list of the Kubernetes API Kinds that
	// describes in which order they are applied.
	ApplyOrder *KindOrder `json:"applyOrder,omitempty"`

	// Cluster holds the default target EKS cluster identity.
	Cluster *Cluster `json:"cluster,omitempty"`

	// Bucket holds the default manifests bucket location.
	Bucket *Bucket `json:"bucket,omitempty"`
}

// KindOrder holds the list of the Kubernetes API Kinds that
// describes in which order they are applied.
type KindOrder struct {
	// First contains the list of Kubernetes API Kinds
	// that are applied first.
	First []string `json:"first"`

	// Last contains the list of Kubernetes API Kinds
	// that are applied last.
	Last []string `json:"last"`
}

// Cluster identifies a target EKS cluster.
type Cluster struct {
	Name   string `json:"name"`
	Region string `json:"region"`
}

// Bucket identifies an S3 location that holds manifests.
type Bucket struct {
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}

// NewConfig returns a config with the default apply order.
func NewConfig() *Config {
	return &Config{
		TypeMeta: metav1.TypeMeta{
			Kind:       KapplyConfigKind,
			APIVersion: KapplyConfigApiVersion,
		},
		ApplyOrder: defaultKindOrder(),
	}
}

func defaultKindOrder() *KindOrder {
	return &KindOrder{
		First: manifest.ApplyOrder.First,
		Last:  manifest.ApplyOrder.Last,
	}
}

// DefaultConfigPath returns '$HOME/.kapply/config'
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".kapply/config"), nil
}

// Read loads the config from the specified path,
// if the config file is not found, a default is returned.
func Read(configPath string) (*Config, error) {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, fmt.Errorf("$HOME dir can't be determined, error: %w", err)
		}
		configPath = p
	}

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		return NewConfig(), nil
	}

	cfgData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(cfgData, cfg); err != nil {
		return nil, err
	}

	if cfg.ApplyOrder == nil {
		cfg.ApplyOrder = defaultKindOrder()
	}

	return cfg, nil
}

// Write saves the config at the specified path,
// if no path is given, the default path is used.
func (c *Config) Write(configPath string) error {
	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return fmt.Errorf("$HOME dir can't be determined, error: %w", err)
		}
		configPath = p
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}

	cfgData, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, cfgData, 0644)
}

// ToYAML encodes the config to YAML.
func (c *Config) ToYAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
