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
	"fmt"

	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/kubernetes"

	"github.com/deploykit/kapply/pkg/manifest"
)

// Reconciler applies resource definitions onto the target cluster using the
// typed APIs of the given clientset.
type Reconciler struct {
	client kubernetes.Interface
}

// NewReconciler creates a Reconciler for the given Kubernetes clientset.
func NewReconciler(client kubernetes.Interface) *Reconciler {
	return &Reconciler{client: client}
}

// Reconcile applies a single resource definition to the cluster, choosing
// between create and replace based on the current in-cluster state.
//
// The definition body is passed through unmodified: replace overwrites the
// whole object, there is no merge. Kinds without an API binding yield a
// skipped outcome so that one unrecognized definition does not block the
// rest of the batch. A read error other than NotFound fails the definition
// without attempting a write.
func (r *Reconciler) Reconcile(ctx context.Context, object *unstructured.Unstructured) Outcome {
	if !manifest.HasIdentity(object) {
		return Outcome{
			Status: StatusFailed,
			Detail: fmt.Sprintf("missing required field: kind=%q name=%q", object.GetKind(), object.GetName()),
		}
	}

	kind := object.GetKind()
	binding := bindingFor(r.client, kind)
	if binding == nil {
		return Outcome{
			Status: StatusSkipped,
			Detail: fmt.Sprintf("unsupported kind: %s", kind),
		}
	}

	name := object.GetName()
	namespace := object.GetNamespace()
	if namespace == "" {
		namespace = corev1.NamespaceDefault
	}

	err := binding.read(ctx, name, namespace)
	switch {
	case err == nil:
		// Cluster-scoped kinds are left untouched when they already exist,
		// a second apply of the same namespace must not fail the batch.
		if binding.clusterScoped {
			return Outcome{Status: StatusSuccess, Action: UnchangedAction}
		}

		if err := binding.replace(ctx, name, namespace, object); err != nil {
			return Outcome{Status: StatusFailed, Detail: fmt.Sprintf("replace failed: %s", err)}
		}
		return Outcome{Status: StatusSuccess, Action: ReplacedAction}

	case apierrors.IsNotFound(err):
		if err := binding.create(ctx, namespace, object); err != nil {
			return Outcome{Status: StatusFailed, Detail: fmt.Sprintf("create failed: %s", err)}
		}
		return Outcome{Status: StatusSuccess, Action: CreatedAction}

	default:
		return Outcome{Status: StatusFailed, Detail: fmt.Sprintf("read failed: %s", err)}
	}
}
