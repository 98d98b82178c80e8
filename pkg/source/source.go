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

// Package source resolves resource definitions from manifest locations:
// local files and kustomize overlays, S3 buckets and OCI artifacts.
package source

import (
	"context"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/deploykit/kapply/pkg/manifest"
)

// Entry is one resource definition together with the identifier of the
// location it was read from.
type Entry struct {
	Source string
	Object *unstructured.Unstructured
}

// Source supplies an ordered, deduplicated set of resource definitions.
type Source interface {
	Resolve(ctx context.Context) ([]Entry, error)
}

// SortableEntries sorts entries in apply order, namespaces first.
type SortableEntries []Entry

func (a SortableEntries) Len() int      { return len(a) }
func (a SortableEntries) Swap(i, j int) { a[i], a[j] = a[j], a[i] }
func (a SortableEntries) Less(i, j int) bool {
	return manifest.LessThan(a[i].Object, a[j].Object)
}

// Dedupe removes duplicate definitions of the same (kind, namespace, name).
// The last definition wins while the first occurrence keeps its position, so
// the caller-defined order is preserved. Definitions with missing identity
// fields are never merged.
func Dedupe(entries []Entry) []Entry {
	index := make(map[string]int)
	result := make([]Entry, 0, len(entries))

	for _, entry := range entries {
		if !manifest.HasIdentity(entry.Object) {
			result = append(result, entry)
			continue
		}

		key := strings.Join([]string{
			entry.Object.GetKind(),
			entry.Object.GetNamespace(),
			entry.Object.GetName(),
		}, "/")

		if at, ok := index[key]; ok {
			result[at] = entry
			continue
		}

		index[key] = len(result)
		result = append(result, entry)
	}

	return result
}
