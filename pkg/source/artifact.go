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
	"strings"

	"filippo.io/age"

	"github.com/deploykit/kapply/pkg/manifest"
	"github.com/deploykit/kapply/pkg/registry"
)

// Artifact reads resource definitions from an OCI artifact
// hosted on a container registry.
type Artifact struct {
	// URL is the image URL in the format 'oci://domain/org/repo:tag'.
	URL string

	// Identities holds the age identities used to decrypt encrypted artifacts.
	Identities []age.Identity
}

func (a *Artifact) Resolve(ctx context.Context) ([]Entry, error) {
	url, err := registry.ParseURL(a.URL)
	if err != nil {
		return nil, err
	}

	yml, _, err := registry.Pull(ctx, url, a.Identities)
	if err != nil {
		return nil, fmt.Errorf("pulling %s failed: %w", a.URL, err)
	}

	objects, err := manifest.ReadObjects(strings.NewReader(yml))
	if err != nil {
		return nil, fmt.Errorf("decoding %s failed: %w", a.URL, err)
	}

	entries := make([]Entry, 0, len(objects))
	for _, object := range objects {
		entries = append(entries, Entry{Source: a.URL, Object: object})
	}

	return Dedupe(entries), nil
}
