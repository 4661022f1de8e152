package aws

import (
	"context"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/cloudops/cloud-console-tool/internal/models"
)

// Client bundles the per-service AWS clients for one account/region pair
type Client struct {
	EC2            *ec2.Client
	CloudFormation *cloudformation.Client
	S3             *s3.Client
	RDS            *rds.Client
	CodePipeline   *codepipeline.Client
	STS            *sts.Client
	Config         awssdk.Config
}

// NewClient builds a client bundle from resolved credential material.
// Static key pairs are used directly; role-based credentials assume the
// role via STS on top of the ambient default configuration.
func NewClient(ctx context.Context, creds models.Credentials, region string) (*Client, error) {
	var opts []func(*config.LoadOptions) error

	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	if creds.IsRole() {
		base, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, err
		}
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(base), creds.RoleARN,
			func(o *stscreds.AssumeRoleOptions) {
				if creds.ExternalID != "" {
					o.ExternalID = awssdk.String(creds.ExternalID)
				}
			})
		base.Credentials = awssdk.NewCredentialsCache(provider)
		return newFromConfig(base), nil
	}

	opts = append(opts, config.WithCredentialsProvider(
		awscreds.NewStaticCredentialsProvider(creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken)))

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return newFromConfig(cfg), nil
}

func newFromConfig(cfg awssdk.Config) *Client {
	return &Client{
		EC2:            ec2.NewFromConfig(cfg),
		CloudFormation: cloudformation.NewFromConfig(cfg),
		S3:             s3.NewFromConfig(cfg),
		RDS:            rds.NewFromConfig(cfg),
		CodePipeline:   codepipeline.NewFromConfig(cfg),
		STS:            sts.NewFromConfig(cfg),
		Config:         cfg,
	}
}
