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
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	"github.com/deploykit/kapply/pkg/manifest"
)

// Bucket reads resource definitions from the YAML objects stored in an
// S3 bucket under the given prefix. Keys are fetched in lexical order so
// that the apply order is reproducible across batch runs.
type Bucket struct {
	client s3iface.S3API
	name   string
	prefix string
}

func NewBucket(client s3iface.S3API, name, prefix string) *Bucket {
	return &Bucket{
		client: client,
		name:   name,
		prefix: prefix,
	}
}

func (b *Bucket) Resolve(ctx context.Context) ([]Entry, error) {
	var keys []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(b.name),
		Prefix: aws.String(b.prefix),
	}

	err := b.client.ListObjectsV2PagesWithContext(ctx, input,
		func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, object := range page.Contents {
				key := aws.StringValue(object.Key)
				if matchExt(key) {
					keys = append(keys, key)
				}
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("listing s3://%s/%s failed: %w", b.name, b.prefix, err)
	}

	sort.Strings(keys)

	entries := make([]Entry, 0)
	for _, key := range keys {
		output, err := b.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
			Bucket: aws.String(b.name),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, fmt.Errorf("fetching s3://%s/%s failed: %w", b.name, key, err)
		}

		objects, err := manifest.ReadObjects(output.Body)
		output.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("decoding s3://%s/%s failed: %w", b.name, key, err)
		}

		for _, object := range objects {
			entries = append(entries, Entry{Source: key, Object: object})
		}
	}

	return Dedupe(entries), nil
}
