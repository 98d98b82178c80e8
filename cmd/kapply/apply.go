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
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"

	"github.com/deploykit/kapply/pkg/reconciler"
	"github.com/deploykit/kapply/pkg/registry"
	"github.com/deploykit/kapply/pkg/source"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply reconciles the given Kubernetes manifests with the cluster using a read then create-or-replace strategy.",
	Long: `The apply command batch reconciles Kubernetes manifests from local files, Kustomize overlays,
OCI artifacts and S3 buckets. Each resource is looked up on the cluster first, then created or
replaced. Resources of unsupported kinds are reported as skipped and individual failures do not
stop the batch.`,
	Example: `  # Apply Kubernetes manifests from a directory to the current kubeconfig context
  kapply apply -f ./deploy/manifests

  # Apply a Kustomize overlay to an EKS cluster
  kapply apply -k ./deploy/production --cluster prod --region eu-west-1

  # Apply the manifests stored in an S3 bucket and print the report as JSON
  kapply apply --bucket my-manifests --prefix releases/v1 -o json

  # Apply an OCI artifact
  kapply apply -a oci://docker.io/user/repo:v1.0.0
`,
	RunE: runApplyCmd,
}

type applyFlags struct {
	filename     []string
	kustomize    string
	artifact     []string
	bucket       string
	prefix       string
	cluster      string
	region       string
	identityFile string
	output       string
}

var applyArgs applyFlags

func init() {
	applyCmd.Flags().StringSliceVarP(&applyArgs.filename, "filename", "f", nil,
		"Path to Kubernetes manifest(s). If a directory is specified, then all manifests in the directory tree will be processed recursively.")
	applyCmd.Flags().StringVarP(&applyArgs.kustomize, "kustomize", "k", "",
		"Path to a directory that contains a kustomization.yaml.")
	applyCmd.Flags().StringSliceVarP(&applyArgs.artifact, "artifact", "a", nil,
		"Image URL in the format 'oci://domain/org/repo:tag' e.g. 'oci://docker.io/user/app-deploy:v1.0.0'.")
	applyCmd.Flags().StringVar(&applyArgs.bucket, "bucket", "",
		"Name of the S3 bucket that holds the manifests.")
	applyCmd.Flags().StringVar(&applyArgs.prefix, "prefix", "",
		"Key prefix of the manifests inside the S3 bucket.")
	applyCmd.Flags().StringVar(&applyArgs.cluster, "cluster", "",
		"Name of the target EKS cluster. When empty, the current kubeconfig context is used.")
	applyCmd.Flags().StringVar(&applyArgs.region, "region", "",
		"AWS region of the target EKS cluster and of the S3 bucket.")
	applyCmd.Flags().StringVar(&applyArgs.identityFile, "age-identities", "",
		"Path to a file containing age identities (private keys) for decrypting artifacts.")
	applyCmd.Flags().StringVarP(&applyArgs.output, "output", "o", "table",
		"Write the reconciliation report to stdout in table or JSON format.")

	rootCmd.AddCommand(applyCmd)
}

func runApplyCmd(cmd *cobra.Command, args []string) error {
	bucketName := applyArgs.bucket
	bucketPrefix := applyArgs.prefix
	if bucketName == "" && cfg.Bucket != nil &&
		applyArgs.kustomize == "" && len(applyArgs.filename) == 0 && len(applyArgs.artifact) == 0 {
		bucketName = cfg.Bucket.Name
		if bucketPrefix == "" {
			bucketPrefix = cfg.Bucket.Prefix
		}
	}

	if applyArgs.kustomize == "" && len(applyArgs.filename) == 0 &&
		len(applyArgs.artifact) == 0 && bucketName == "" {
		return fmt.Errorf("-f, -k, -a or --bucket is required")
	}

	if applyArgs.output != "table" && applyArgs.output != "json" {
		return fmt.Errorf("unsupported output, can be table or json")
	}

	ctx, cancel := context.WithTimeout(context.Background(), rootArgs.timeout)
	defer cancel()

	var entries []source.Entry

	for _, ociURL := range applyArgs.artifact {
		identities, err := registry.ParseAgeIdentities(applyArgs.identityFile)
		if err != nil {
			return fmt.Errorf("loading age identities failed: %w", err)
		}

		logger.Println("pulling", ociURL)
		artifact := &source.Artifact{URL: ociURL, Identities: identities}
		e, err := artifact.Resolve(ctx)
		if err != nil {
			return err
		}
		entries = append(entries, e...)
	}

	if bucketName != "" {
		sess, err := newAWSSession(applyArgs.region)
		if err != nil {
			return err
		}

		logger.Println(fmt.Sprintf("fetching s3://%s/%s", bucketName, bucketPrefix))
		bucket := source.NewBucket(s3.New(sess), bucketName, bucketPrefix)
		e, err := bucket.Resolve(ctx)
		if err != nil {
			return err
		}
		entries = append(entries, e...)
	}

	if applyArgs.kustomize != "" || len(applyArgs.filename) > 0 {
		fs := &source.Filesystem{Paths: applyArgs.filename, Kustomize: applyArgs.kustomize}
		e, err := fs.Resolve(ctx)
		if err != nil {
			return err
		}
		entries = append(entries, e...)
	}

	entries = source.Dedupe(entries)
	sort.Stable(source.SortableEntries(entries))

	logger.Println(fmt.Sprintf("applying %v manifest(s)...", len(entries)))

	kubeClient, err := newApplyKubeClient(ctx)
	if err != nil {
		return fmt.Errorf("client init failed: %w", err)
	}

	report := reconciler.NewReconciler(kubeClient).ReconcileAll(ctx, entries)

	for _, record := range report.Records {
		logger.Println(record.String())
	}

	switch applyArgs.output {
	case "table":
		printReport(cmd.OutOrStdout(), report)
	case "json":
		json, err := report.ToJSON()
		if err != nil {
			return err
		}
		rootCmd.Println(json)
	}

	if !report.AllSucceeded() {
		return errors.New(report.Summary())
	}

	logger.Println(report.Summary())
	return nil
}

func newApplyKubeClient(ctx context.Context) (kubernetes.Interface, error) {
	clusterName := applyArgs.cluster
	region := applyArgs.region
	if clusterName == "" && cfg.Cluster != nil {
		clusterName = cfg.Cluster.Name
		if region == "" {
			region = cfg.Cluster.Region
		}
	}

	if clusterName != "" {
		return newEKSKubeClient(ctx, clusterName, region)
	}

	return newKubeClient()
}
