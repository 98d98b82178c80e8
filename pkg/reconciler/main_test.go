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
	"strings"
	"testing"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/deploykit/kapply/pkg/manifest"
)

func toUnstructured(t *testing.T, doc string) *unstructured.Unstructured {
	t.Helper()

	object, err := manifest.ReadObject(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}
	return object
}

// actionLog renders the API calls recorded by the fake clientset
// as 'verb resource' strings.
func actionLog(client *fake.Clientset) []string {
	var log []string
	for _, action := range client.Actions() {
		log = append(log, action.GetVerb()+" "+action.GetResource().Resource)
	}
	return log
}
