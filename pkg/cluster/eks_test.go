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

package cluster

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/eks"
	"github.com/aws/aws-sdk-go/service/eks/eksiface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
)

type fakeEKS struct {
	eksiface.EKSAPI
	clusters map[string]*eks.Cluster
}

func (f *fakeEKS) DescribeClusterWithContext(ctx aws.Context, input *eks.DescribeClusterInput,
	opts ...request.Option) (*eks.DescribeClusterOutput, error) {
	cluster, ok := f.clusters[aws.StringValue(input.Name)]
	if !ok {
		return nil, fmt.Errorf("cluster not found: %s", aws.StringValue(input.Name))
	}
	return &eks.DescribeClusterOutput{Cluster: cluster}, nil
}

func newTestSTS(t *testing.T) stsiface.STSAPI {
	t.Helper()

	sess, err := session.NewSession(aws.NewConfig().
		WithRegion("eu-west-1").
		WithCredentials(credentials.NewStaticCredentials("AKID", "SECRET", "")))
	if err != nil {
		t.Fatal(err)
	}
	return sts.New(sess)
}

func testCABundle(t *testing.T) string {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "kubernetes"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatal(err)
	}

	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	return base64.StdEncoding.EncodeToString(caPEM)
}

func TestBearerToken(t *testing.T) {
	token, err := bearerToken(newTestSTS(t), "prod")
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(token, tokenPrefix) {
		t.Fatalf("expected token with prefix %q, got %q", tokenPrefix, token)
	}

	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(token, tokenPrefix))
	if err != nil {
		t.Fatal(err)
	}

	signed := string(decoded)
	if !strings.Contains(signed, "Action=GetCallerIdentity") {
		t.Errorf("expected a presigned GetCallerIdentity URL, got %s", signed)
	}
	if !strings.Contains(signed, "x-k8s-aws-id") {
		t.Errorf("expected the cluster ID header to be signed, got %s", signed)
	}
}

func TestNewEKSClientset(t *testing.T) {
	eksAPI := &fakeEKS{clusters: map[string]*eks.Cluster{
		"prod": {
			Endpoint: aws.String("https://prod.eks.example.com"),
			CertificateAuthority: &eks.Certificate{
				Data: aws.String(testCABundle(t)),
			},
		},
	}}

	client, err := NewEKSClientset(context.Background(), eksAPI, newTestSTS(t), "prod")
	if err != nil {
		t.Fatal(err)
	}
	if client == nil {
		t.Fatal("expected a clientset")
	}
}

func TestNewEKSClientset_NotFound(t *testing.T) {
	eksAPI := &fakeEKS{clusters: map[string]*eks.Cluster{}}

	if _, err := NewEKSClientset(context.Background(), eksAPI, newTestSTS(t), "missing"); err == nil {
		t.Errorf("expected an error for an unknown cluster")
	}
}
