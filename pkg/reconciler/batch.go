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

	"github.com/deploykit/kapply/pkg/manifest"
	"github.com/deploykit/kapply/pkg/source"
)

// ReconcileAll reconciles the given entries one at a time, in the order the
// source yielded them, and aggregates the outcomes into a report. Individual
// failures are captured as records and do not stop the batch.
//
// The caller decides the apply order, typically with the namespaces first;
// ReconcileAll imposes no reordering of its own. An empty batch yields an
// empty report with AllSucceeded() == true.
func (r *Reconciler) ReconcileAll(ctx context.Context, entries []source.Entry) *Report {
	report := NewReport()

	for _, entry := range entries {
		outcome := r.Reconcile(ctx, entry.Object)
		report.Add(Record{
			Source:    entry.Source,
			Subject:   manifest.FmtUnstructured(entry.Object),
			Kind:      entry.Object.GetKind(),
			Name:      entry.Object.GetName(),
			Namespace: entry.Object.GetNamespace(),
			Status:    outcome.Status,
			Action:    outcome.Action,
			Detail:    outcome.Detail,
		})
	}

	return report
}
