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
	"encoding/base64"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/eks"
	"github.com/aws/aws-sdk-go/service/eks/eksiface"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

const (
	// tokenPrefix marks a presigned STS URL as an EKS bearer token,
	// the scheme used by aws-iam-authenticator.
	tokenPrefix = "k8s-aws-v1."

	// clusterIDHeader must be part of the presigned request so the API
	// server can verify which cluster the token was minted for.
	clusterIDHeader = "x-k8s-aws-id"

	tokenTTL = 15 * time.Minute
)

// NewEKSClientset returns a Kubernetes clientset for the named EKS cluster.
// The cluster endpoint and CA bundle come from the EKS control plane API and
// the bearer token from a presigned STS GetCallerIdentity request.
func NewEKSClientset(ctx context.Context, eksAPI eksiface.EKSAPI, stsAPI stsiface.STSAPI, clusterName string) (kubernetes.Interface, error) {
	out, err := eksAPI.DescribeClusterWithContext(ctx, &eks.DescribeClusterInput{
		Name: aws.String(clusterName),
	})
	if err != nil {
		return nil, fmt.Errorf("describing cluster %s failed: %w", clusterName, err)
	}

	caData, err := base64.StdEncoding.DecodeString(aws.StringValue(out.Cluster.CertificateAuthority.Data))
	if err != nil {
		return nil, fmt.Errorf("decoding the CA bundle of cluster %s failed: %w", clusterName, err)
	}

	token, err := bearerToken(stsAPI, clusterName)
	if err != nil {
		return nil, err
	}

	cfg := &rest.Config{
		Host:        aws.StringValue(out.Cluster.Endpoint),
		BearerToken: token,
		TLSClientConfig: rest.TLSClientConfig{
			CAData: caData,
		},
	}

	return newClientset(cfg)
}

func bearerToken(stsAPI stsiface.STSAPI, clusterName string) (string, error) {
	req, _ := stsAPI.GetCallerIdentityRequest(&sts.GetCallerIdentityInput{})
	req.HTTPRequest.Header.Set(clusterIDHeader, clusterName)

	signed, err := req.Presign(tokenTTL)
	if err != nil {
		return "", fmt.Errorf("presigning the STS request failed: %w", err)
	}

	return tokenPrefix + base64.RawURLEncoding.EncodeToString([]byte(signed)), nil
}
