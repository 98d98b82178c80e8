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

package registry

import (
	"fmt"
)

const (
	RevisionAnnotation   = "kapply.dev/revision"
	ChecksumAnnotation   = "kapply.dev/checksum"
	CreatedAnnotation    = "kapply.dev/created"
	EncryptedAnnotation  = "kapply.dev/encrypted"
	AgeEncryptionVersion = "age-encryption.org/v1"
)

// Metadata describes a manifest artifact stored in a container registry.
type Metadata struct {
	Revision  string `json:"revision,omitempty"`
	Checksum  string `json:"checksum"`
	Created   string `json:"created"`
	Encrypted string `json:"encrypted,omitempty"`
	Digest    string `json:"digest,omitempty"`
}

func (m *Metadata) ToAnnotations() map[string]string {
	annotations := map[string]string{
		ChecksumAnnotation: m.Checksum,
		CreatedAnnotation:  m.Created,
	}

	if m.Revision != "" {
		annotations[RevisionAnnotation] = m.Revision
	}

	if m.Encrypted != "" {
		annotations[EncryptedAnnotation] = m.Encrypted
	}

	return annotations
}

// GetMetadata reads the artifact metadata from the image annotations.
func GetMetadata(annotations map[string]string) (*Metadata, error) {
	checksum, ok := annotations[ChecksumAnnotation]
	if !ok {
		return nil, fmt.Errorf("'%s' annotation not found", ChecksumAnnotation)
	}

	created, ok := annotations[CreatedAnnotation]
	if !ok {
		return nil, fmt.Errorf("'%s' annotation not found", CreatedAnnotation)
	}

	meta := Metadata{
		Revision:  annotations[RevisionAnnotation],
		Checksum:  checksum,
		Created:   created,
		Encrypted: annotations[EncryptedAnnotation],
	}

	return &meta, nil
}
