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
	"encoding/json"
	"fmt"
)

// Status classifies the result of reconciling a single resource definition.
type Status string

const (
	StatusSuccess Status = "success"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Action represents the operation performed on the cluster for a
// successfully reconciled object.
type Action string

const (
	CreatedAction   Action = "created"
	ReplacedAction  Action = "replaced"
	UnchangedAction Action = "unchanged"
)

// Outcome is the result of reconciling one resource definition.
// Detail carries the skip reason or the API error text.
type Outcome struct {
	Status Status
	Action Action
	Detail string
}

// Record ties a reconcile outcome to the definition it was produced for.
type Record struct {
	// Source identifies where the definition was read from.
	Source string `json:"source,omitempty"`
	// Subject is the object ID in the format 'kind/namespace/name'.
	Subject   string `json:"subject"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Namespace string `json:"namespace,omitempty"`
	Status    Status `json:"status"`
	Action    Action `json:"action,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func (r Record) String() string {
	switch r.Status {
	case StatusSuccess:
		return fmt.Sprintf("%s %s", r.Subject, r.Action)
	default:
		return fmt.Sprintf("%s %s: %s", r.Subject, r.Status, r.Detail)
	}
}

// Report holds the outcome of the reconciliation of a resource collection.
// Records preserve the input order of the batch.
type Report struct {
	Records []Record `json:"records"`
}

func NewReport() *Report {
	return &Report{Records: []Record{}}
}

func (r *Report) Add(record Record) {
	r.Records = append(r.Records, record)
}

// Failed returns the records of the definitions that could not be applied.
// Skipped definitions are not failures.
func (r *Report) Failed() []Record {
	var failed []Record
	for _, record := range r.Records {
		if record.Status == StatusFailed {
			failed = append(failed, record)
		}
	}
	return failed
}

// AllSucceeded returns true if no record in the report failed.
func (r *Report) AllSucceeded() bool {
	return len(r.Failed()) == 0
}

// Summary returns a one line description of the batch result.
func (r *Report) Summary() string {
	switch {
	case len(r.Records) == 0:
		return "no resources to apply"
	case r.AllSucceeded():
		return fmt.Sprintf("successfully applied %d resource(s)", len(r.Records))
	default:
		return fmt.Sprintf("%d of %d resource(s) failed to apply", len(r.Failed()), len(r.Records))
	}
}

// ToJSON encodes the report with its summary message for callers
// that act on the batch result programmatically.
func (r *Report) ToJSON() (string, error) {
	payload := struct {
		Message string   `json:"message"`
		Records []Record `json:"records"`
	}{
		Message: r.Summary(),
		Records: r.Records,
	}

	data, err := json.MarshalIndent(payload, "", "    ")
	if err != nil {
		return "", err
	}

	return string(data), nil
}
