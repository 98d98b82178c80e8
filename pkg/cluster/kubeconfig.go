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

// Package cluster builds ready-to-use Kubernetes clientsets for a target
// cluster, either from a local kubeconfig or from an EKS cluster identity.
package cluster

import (
	"fmt"

	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// NewClientset returns a Kubernetes clientset for the kubeconfig
// selected by the given CLI flags.
func NewClientset(rcg genericclioptions.RESTClientGetter) (kubernetes.Interface, error) {
	cfg, err := rcg.ToRESTConfig()
	if err != nil {
		return nil, fmt.Errorf("kubeconfig load failed: %w", err)
	}

	return newClientset(cfg)
}

func newClientset(cfg *rest.Config) (kubernetes.Interface, error) {
	cfg.QPS = 50
	cfg.Burst = 100

	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("kubernetes client initialization failed: %w", err)
	}

	return clientset, nil
}
