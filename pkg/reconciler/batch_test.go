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

package reconciler

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	apiruntime "k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"

	"github.com/deploykit/kapply/pkg/source"
)

func TestReconcileAll(t *testing.T) {
	ctx := context.Background()
	client := fake.NewSimpleClientset()
	client.PrependReactor("get", "secrets", func(action k8stesting.Action) (bool, apiruntime.Object, error) {
		return true, nil, errors.New("connection refused")
	})

	entries := []source.Entry{
		{Source: "ns.yaml", Object: toUnstructured(t, `
apiVersion: v1
kind: Namespace
metadata:
  name: apps
`)},
		{Source: "config.yaml", Object: toUnstructured(t, `
apiVersion: v1
kind: ConfigMap
metadata:
  name: app-config
  namespace: apps
data:
  key: "test"
`)},
		{Source: "secret.yaml", Object: toUnstructured(t, `
apiVersion: v1
kind: Secret
metadata:
  name: app-secret
  namespace: apps
stringData:
  key: "test"
`)},
		{Source: "deploy.yaml", Object: toUnstructured(t, `
apiVersion: apps/v1
kind: Deployment
metadata:
  name: app
  namespace: apps
`)},
	}

	report := NewReconciler(client).ReconcileAll(ctx, entries)

	expected := []Record{
		{
			Source:  "ns.yaml",
			Subject: "Namespace/apps",
			Kind:    "Namespace",
			Name:    "apps",
			Status:  StatusSuccess,
			Action:  CreatedAction,
		},
		{
			Source:    "config.yaml",
			Subject:   "ConfigMap/apps/app-config",
			Kind:      "ConfigMap",
			Name:      "app-config",
			Namespace: "apps",
			Status:    StatusSuccess,
			Action:    CreatedAction,
		},
		{
			Source:    "secret.yaml",
			Subject:   "Secret/apps/app-secret",
			Kind:      "Secret",
			Name:      "app-secret",
			Namespace: "apps",
			Status:    StatusFailed,
			Detail:    "read failed: connection refused",
		},
		{
			Source:    "deploy.yaml",
			Subject:   "Deployment/apps/app",
			Kind:      "Deployment",
			Name:      "app",
			Namespace: "apps",
			Status:    StatusSkipped,
			Detail:    "unsupported kind: Deployment",
		},
	}

	if diff := cmp.Diff(expected, report.Records); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	if report.AllSucceeded() {
		t.Errorf("expected report with a failed record, got all succeeded")
	}

	if diff := cmp.Diff(1, len(report.Failed())); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff("1 of 4 resource(s) failed to apply", report.Summary()); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}

func TestReconcileAll_AllSucceeded(t *testing.T) {
	ctx := context.Background()
	client := fake.NewSimpleClientset()

	entries := []source.Entry{
		{Source: "config.yaml", Object: toUnstructured(t, `
apiVersion: v1
kind: ConfigMap
metadata:
  name: app-config
  namespace: apps
`)},
		{Source: "cron.yaml", Object: toUnstructured(t, `
apiVersion: stable.example.com/v1
kind: CronTab
metadata:
  name: my-cron
  namespace: apps
`)},
	}

	report := NewReconciler(client).ReconcileAll(ctx, entries)

	// skipped records are not failures
	if !report.AllSucceeded() {
		t.Errorf("expected all succeeded, got failed records: %v", report.Failed())
	}

	if diff := cmp.Diff("successfully applied 2 resource(s)", report.Summary()); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}

func TestReconcileAll_Empty(t *testing.T) {
	ctx := context.Background()
	client := fake.NewSimpleClientset()

	report := NewReconciler(client).ReconcileAll(ctx, nil)

	if !report.AllSucceeded() {
		t.Errorf("expected empty report to succeed")
	}

	if diff := cmp.Diff("no resources to apply", report.Summary()); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}

	json, err := report.ToJSON()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(json, `"message": "no resources to apply"`) {
		t.Errorf("unexpected report JSON:\n%s", json)
	}
}
