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

// Package reconciler applies resource definitions onto the target cluster.
//
// The Reconciler performs the following actions:
// - dispatches on the resource kind to the matching typed API of the cluster
// - reads the in-cluster object to decide between create and replace
// - creates objects that don't exist and replaces the ones that do
// - skips resource kinds that have no API binding instead of failing the batch
// - aggregates the per-object outcomes into a report for the whole batch
//
// Reconciliation is sequential and stateless: idempotency comes from querying
// the live cluster state, not from local bookkeeping.
package reconciler
