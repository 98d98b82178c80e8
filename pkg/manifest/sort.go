/*
Copyright 2023 The kapply authors
Copyright 2020 The Kubernetes Authors.

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

package manifest

import (
	"sort"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/cli-utils/pkg/object"
)

// KindOrder holds the list of the Kubernetes API Kinds that
// describes in which order they are applied.
type KindOrder struct {
	// First contains the Kinds that are applied first.
	First []string

	// Last contains the Kinds that are applied last.
	Last []string
}

// ApplyOrder is the kind ordering used when sorting objects for apply.
// Namespaces come first so that namespaced objects can land inside them.
var ApplyOrder = KindOrder{
	First: []string{
		"CustomResourceDefinition",
		"Namespace",
		"ResourceQuota",
		"StorageClass",
		"ServiceAccount",
		"PodSecurityPolicy",
		"Role",
		"ClusterRole",
		"RoleBinding",
		"ClusterRoleBinding",
		"ConfigMap",
		"Secret",
		"Service",
		"LimitRange",
		"PriorityClass",
		"Deployment",
		"StatefulSet",
		"CronJob",
		"PodDisruptionBudget",
	},
	Last: []string{
		"MutatingWebhookConfiguration",
		"ValidatingWebhookConfiguration",
	},
}

// LessThan reports whether a sorts before b in apply order.
func LessThan(a, b *unstructured.Unstructured) bool {
	return less(object.UnstructuredToObjMetadata(a), object.UnstructuredToObjMetadata(b))
}

type SortableUnstructureds []*unstructured.Unstructured

var _ sort.Interface = SortableUnstructureds{}

func (a SortableUnstructureds) Len() int      { return len(a) }
func (a SortableUnstructureds) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a SortableUnstructureds) Less(i, j int) bool {
	first := object.UnstructuredToObjMetadata(a[i])
	second := object.UnstructuredToObjMetadata(a[j])
	return less(first, second)
}

func less(i, j object.ObjMetadata) bool {
	indexI := ApplyOrder.indexOf(i.GroupKind.Kind)
	indexJ := ApplyOrder.indexOf(j.GroupKind.Kind)
	if indexI != indexJ {
		return indexI < indexJ
	}
	if i.GroupKind.Kind != j.GroupKind.Kind {
		return i.GroupKind.Kind < j.GroupKind.Kind
	}
	// In case of tie, compare the namespace and name combination so that the
	// output order is consistent irrespective of input order.
	if i.Namespace != j.Namespace {
		return i.Namespace < j.Namespace
	}
	return i.Name < j.Name
}

func (o KindOrder) indexOf(kind string) int {
	for i, n := range o.First {
		if n == kind {
			return -len(o.First) + i
		}
	}
	for i, n := range o.Last {
		if n == kind {
			return 1 + i
		}
	}
	return 0
}
