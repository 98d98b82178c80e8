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

package source

import (
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/deploykit/kapply/pkg/manifest"
)

func toEntry(t *testing.T, src, doc string) Entry {
	t.Helper()

	object, err := manifest.ReadObject(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	return Entry{Source: src, Object: object}
}

func TestDedupe(t *testing.T) {
	entries := []Entry{
		toEntry(t, "a.yaml", `
apiVersion: v1
kind: ConfigMap
metadata:
  name: app-config
  namespace: apps
data:
  key: "first"
`),
		toEntry(t, "a.yaml", `
apiVersion: v1
kind: Secret
metadata:
  name: app-secret
  namespace: apps
`),
		toEntry(t, "b.yaml", `
apiVersion: v1
kind: ConfigMap
metadata:
  name: app-config
  namespace: apps
data:
  key: "second"
`),
	}

	deduped := Dedupe(entries)

	// the last definition wins, the first occurrence keeps its position
	var ids []string
	for _, entry := range deduped {
		ids = append(ids, entry.Source+":"+manifest.FmtUnstructured(entry.Object))
	}
	expected := []string{"b.yaml:ConfigMap/apps/app-config", "a.yaml:Secret/apps/app-secret"}
	if diff := cmp.Diff(expected, ids); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	val, _, err := unstructured.NestedString(deduped[0].Object.Object, "data", "key")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff("second", val); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}

func TestDedupe_KeepsIncompleteDefinitions(t *testing.T) {
	entries := []Entry{
		toEntry(t, "a.yaml", `
apiVersion: v1
kind: ConfigMap
data:
  key: "first"
`),
		toEntry(t, "b.yaml", `
apiVersion: v1
kind: ConfigMap
data:
  key: "second"
`),
	}

	deduped := Dedupe(entries)

	// definitions without identity are never merged
	if diff := cmp.Diff(2, len(deduped)); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}

func TestSortableEntries(t *testing.T) {
	entries := []Entry{
		toEntry(t, "sts.yaml", `
apiVersion: apps/v1
kind: StatefulSet
metadata:
  name: app
  namespace: apps
`),
		toEntry(t, "ns.yaml", `
apiVersion: v1
kind: Namespace
metadata:
  name: apps
`),
		toEntry(t, "config.yaml", `
apiVersion: v1
kind: ConfigMap
metadata:
  name: app-config
  namespace: apps
`),
	}

	sort.Stable(SortableEntries(entries))

	var ids []string
	for _, entry := range entries {
		ids = append(ids, manifest.FmtUnstructured(entry.Object))
	}
	expected := []string{"Namespace/apps", "ConfigMap/apps/app-config", "StatefulSet/apps/app"}
	if diff := cmp.Diff(expected, ids); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}
