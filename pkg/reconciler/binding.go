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

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	apiruntime "k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
)

// binding carries the typed API operations for one supported resource kind.
// Cluster-scoped kinds have no replace operation.
type binding struct {
	clusterScoped bool
	read          func(ctx context.Context, name, namespace string) error
	create        func(ctx context.Context, namespace string, object *unstructured.Unstructured) error
	replace       func(ctx context.Context, name, namespace string, object *unstructured.Unstructured) error
}

// bindingFor resolves the resource kind to its typed API binding.
// Kinds without a binding are skipped by the reconciler.
func bindingFor(client kubernetes.Interface, kind string) *binding {
	switch kind {
	case "Namespace":
		return &binding{
			clusterScoped: true,
			read: func(ctx context.Context, name, _ string) error {
				_, err := client.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
				return err
			},
			create: func(ctx context.Context, _ string, object *unstructured.Unstructured) error {
				namespace := &corev1.Namespace{}
				if err := fromUnstructured(object, namespace); err != nil {
					return err
				}
				_, err := client.CoreV1().Namespaces().Create(ctx, namespace, metav1.CreateOptions{})
				return err
			},
		}
	case "ConfigMap":
		return &binding{
			read: func(ctx context.Context, name, namespace string) error {
				_, err := client.CoreV1().ConfigMaps(namespace).Get(ctx, name, metav1.GetOptions{})
				return err
			},
			create: func(ctx context.Context, namespace string, object *unstructured.Unstructured) error {
				configMap := &corev1.ConfigMap{}
				if err := fromUnstructured(object, configMap); err != nil {
					return err
				}
				_, err := client.CoreV1().ConfigMaps(namespace).Create(ctx, configMap, metav1.CreateOptions{})
				return err
			},
			replace: func(ctx context.Context, name, namespace string, object *unstructured.Unstructured) error {
				configMap := &corev1.ConfigMap{}
				if err := fromUnstructured(object, configMap); err != nil {
					return err
				}
				_, err := client.CoreV1().ConfigMaps(namespace).Update(ctx, configMap, metav1.UpdateOptions{})
				return err
			},
		}
	case "Secret":
		return &binding{
			read: func(ctx context.Context, name, namespace string) error {
				_, err := client.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
				return err
			},
			create: func(ctx context.Context, namespace string, object *unstructured.Unstructured) error {
				secret := &corev1.Secret{}
				if err := fromUnstructured(object, secret); err != nil {
					return err
				}
				_, err := client.CoreV1().Secrets(namespace).Create(ctx, secret, metav1.CreateOptions{})
				return err
			},
			replace: func(ctx context.Context, name, namespace string, object *unstructured.Unstructured) error {
				secret := &corev1.Secret{}
				if err := fromUnstructured(object, secret); err != nil {
					return err
				}
				_, err := client.CoreV1().Secrets(namespace).Update(ctx, secret, metav1.UpdateOptions{})
				return err
			},
		}
	case "ServiceAccount":
		return &binding{
			read: func(ctx context.Context, name, namespace string) error {
				_, err := client.CoreV1().ServiceAccounts(namespace).Get(ctx, name, metav1.GetOptions{})
				return err
			},
			create: func(ctx context.Context, namespace string, object *unstructured.Unstructured) error {
				serviceAccount := &corev1.ServiceAccount{}
				if err := fromUnstructured(object, serviceAccount); err != nil {
					return err
				}
				_, err := client.CoreV1().ServiceAccounts(namespace).Create(ctx, serviceAccount, metav1.CreateOptions{})
				return err
			},
			replace: func(ctx context.Context, name, namespace string, object *unstructured.Unstructured) error {
				serviceAccount := &corev1.ServiceAccount{}
				if err := fromUnstructured(object, serviceAccount); err != nil {
					return err
				}
				_, err := client.CoreV1().ServiceAccounts(namespace).Update(ctx, serviceAccount, metav1.UpdateOptions{})
				return err
			},
		}
	case "StatefulSet":
		return &binding{
			read: func(ctx context.Context, name, namespace string) error {
				_, err := client.AppsV1().StatefulSets(namespace).Get(ctx, name, metav1.GetOptions{})
				return err
			},
			create: func(ctx context.Context, namespace string, object *unstructured.Unstructured) error {
				statefulSet := &appsv1.StatefulSet{}
				if err := fromUnstructured(object, statefulSet); err != nil {
					return err
				}
				_, err := client.AppsV1().StatefulSets(namespace).Create(ctx, statefulSet, metav1.CreateOptions{})
				return err
			},
			replace: func(ctx context.Context, name, namespace string, object *unstructured.Unstructured) error {
				statefulSet := &appsv1.StatefulSet{}
				if err := fromUnstructured(object, statefulSet); err != nil {
					return err
				}
				_, err := client.AppsV1().StatefulSets(namespace).Update(ctx, statefulSet, metav1.UpdateOptions{})
				return err
			},
		}
	}

	return nil
}

func fromUnstructured(object *unstructured.Unstructured, into interface{}) error {
	return apiruntime.DefaultUnstructuredConverter.FromUnstructured(object.Object, into)
}
