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
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/go-cmp/cmp"

	"github.com/deploykit/kapply/pkg/manifest"
)

// fakeS3 serves objects from an in-memory map, keys are listed unordered
// to exercise the lexical sorting of the bucket source.
type fakeS3 struct {
	s3iface.S3API
	objects map[string]string
	listErr error
}

func (f *fakeS3) ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input,
	fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error {
	if f.listErr != nil {
		return f.listErr
	}

	page := &s3.ListObjectsV2Output{}
	for key := range f.objects {
		if strings.HasPrefix(key, aws.StringValue(input.Prefix)) {
			page.Contents = append(page.Contents, &s3.Object{Key: aws.String(key)})
		}
	}
	fn(page, true)
	return nil
}

func (f *fakeS3) GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput,
	opts ...request.Option) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.StringValue(input.Key)]
	if !ok {
		return nil, fmt.Errorf("no such key: %s", aws.StringValue(input.Key))
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestBucketResolve(t *testing.T) {
	client := &fakeS3{objects: map[string]string{
		"releases/v1/10-config.yaml": `
apiVersion: v1
kind: ConfigMap
metadata:
  name: app-config
  namespace: apps
`,
		"releases/v1/00-namespace.yaml": `
apiVersion: v1
kind: Namespace
metadata:
  name: apps
`,
		"releases/v1/readme.md": "not a manifest",
		"releases/v2/config.yaml": `
apiVersion: v1
kind: ConfigMap
metadata:
  name: other
  namespace: apps
`,
	}}

	bucket := NewBucket(client, "my-manifests", "releases/v1")
	entries, err := bucket.Resolve(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	var ids []string
	for _, entry := range entries {
		ids = append(ids, entry.Source+":"+manifest.FmtUnstructured(entry.Object))
	}

	// keys outside the prefix and non YAML keys are ignored,
	// the rest are fetched in lexical key order
	expected := []string{
		"releases/v1/00-namespace.yaml:Namespace/apps",
		"releases/v1/10-config.yaml:ConfigMap/apps/app-config",
	}
	if diff := cmp.Diff(expected, ids); diff != "" {
		t.Errorf("Mismatch from expected value (-want +got):\n%s", diff)
	}
}

func TestBucketResolve_ListError(t *testing.T) {
	client := &fakeS3{listErr: fmt.Errorf("access denied")}

	bucket := NewBucket(client, "my-manifests", "releases/v1")
	if _, err := bucket.Resolve(context.Background()); err == nil {
		t.Errorf("expected a list error to fail the resolve")
	}
}
