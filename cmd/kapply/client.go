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

package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/eks"
	"github.com/aws/aws-sdk-go/service/sts"
	"k8s.io/client-go/kubernetes"

	"github.com/deploykit/kapply/pkg/cluster"
)

func newKubeClient() (kubernetes.Interface, error) {
	return cluster.NewClientset(kubeconfigArgs)
}

func newEKSKubeClient(ctx context.Context, clusterName, region string) (kubernetes.Interface, error) {
	sess, err := newAWSSession(region)
	if err != nil {
		return nil, err
	}

	return cluster.NewEKSClientset(ctx, eks.New(sess), sts.New(sess), clusterName)
}

func newAWSSession(region string) (*session.Session, error) {
	awsCfg := aws.NewConfig()
	if region != "" {
		awsCfg = awsCfg.WithRegion(region)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            *awsCfg,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("AWS session init failed: %w", err)
	}

	return sess, nil
}
