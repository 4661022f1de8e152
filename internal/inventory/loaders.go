package inventory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/cloudops/cloud-console-tool/internal/errors"
	"github.com/cloudops/cloud-console-tool/internal/models"
	"github.com/cloudops/cloud-console-tool/internal/resultcache"
	"github.com/cloudops/cloud-console-tool/internal/session"
)

// EC2API is the subset of the EC2 client the inventory uses
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// S3API is the subset of the S3 client the inventory uses
type S3API interface {
	ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
}

// RDSAPI is the subset of the RDS client the inventory uses
type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// TTLConfig carries the freshness window per resource type, in seconds
type TTLConfig struct {
	Inventory int
	Databases int
	Buckets   int
}

// InstanceFilter narrows ListInstances results. Empty fields match all.
type InstanceFilter struct {
	Environment string
	Application string
	State       string
}

// Service loads resource inventories through the result cache so repeated
// browse operations within the freshness window cost nothing
type Service struct {
	cache *resultcache.Cache
	ttl   TTLConfig
}

// NewService creates an inventory service over the given result cache
func NewService(cache *resultcache.Cache, ttl TTLConfig) *Service {
	return &Service{cache: cache, ttl: ttl}
}

// ListInstances returns the EC2 instances in the handle's account and
// region, filtered client-side
func (s *Service) ListInstances(ctx context.Context, handle *session.Handle, filter InstanceFilter) ([]models.Instance, error) {
	key := resultcache.NewKey("instances", handle.AccountID, handle.Region)

	instances, err := resultcache.GetOrLoad(s.cache, key, s.inventoryTTL(), func() ([]models.Instance, error) {
		return loadInstances(ctx, handle.Client.EC2)
	})
	if err != nil {
		return nil, err
	}
	return filterInstances(instances, filter), nil
}

// ListBuckets returns the S3 buckets in the handle's account. Bucket
// listing is account-global so the cache key carries no region.
func (s *Service) ListBuckets(ctx context.Context, handle *session.Handle) ([]models.Bucket, error) {
	key := resultcache.NewKey("buckets", handle.AccountID)

	return resultcache.GetOrLoad(s.cache, key, s.secondsTTL(s.ttl.Buckets), func() ([]models.Bucket, error) {
		return loadBuckets(ctx, handle.Client.S3)
	})
}

// ListDatabases returns the RDS instances in the handle's account and region
func (s *Service) ListDatabases(ctx context.Context, handle *session.Handle) ([]models.Database, error) {
	key := resultcache.NewKey("databases", handle.AccountID, handle.Region)

	return resultcache.GetOrLoad(s.cache, key, s.secondsTTL(s.ttl.Databases), func() ([]models.Database, error) {
		return loadDatabases(ctx, handle.Client.RDS)
	})
}

// Refresh drops the cached inventory for the handle's account and region
// so the next browse reloads from the provider
func (s *Service) Refresh(handle *session.Handle) {
	s.cache.Invalidate(
		resultcache.NewKey("instances", handle.AccountID, handle.Region),
		resultcache.NewKey("buckets", handle.AccountID),
		resultcache.NewKey("databases", handle.AccountID, handle.Region),
	)
}

func (s *Service) inventoryTTL() time.Duration {
	return s.secondsTTL(s.ttl.Inventory)
}

func (s *Service) secondsTTL(seconds int) time.Duration {
	if seconds <= 0 {
		seconds = 300
	}
	return time.Duration(seconds) * time.Second
}

func loadInstances(ctx context.Context, client EC2API) ([]models.Instance, error) {
	var instances []models.Instance

	paginator := ec2.NewDescribeInstancesPaginator(client, &ec2.DescribeInstancesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.WrapCollaborator("describe_instances", "ec2", err)
		}
		for _, reservation := range page.Reservations {
			for _, instance := range reservation.Instances {
				instances = append(instances, convertInstance(instance))
			}
		}
	}

	sort.Slice(instances, func(i, j int) bool {
		return instances[i].InstanceID < instances[j].InstanceID
	})
	return instances, nil
}

func convertInstance(instance ec2types.Instance) models.Instance {
	m := models.Instance{
		InstanceType: string(instance.InstanceType),
		Tags:         make(map[string]string),
	}

	if instance.InstanceId != nil {
		m.InstanceID = *instance.InstanceId
	}
	if instance.State != nil {
		m.State = string(instance.State.Name)
	}
	if instance.Placement != nil && instance.Placement.AvailabilityZone != nil {
		m.AvailabilityZone = *instance.Placement.AvailabilityZone
	}
	if instance.PrivateIpAddress != nil {
		m.PrivateIP = *instance.PrivateIpAddress
	}
	if instance.PublicIpAddress != nil {
		m.PublicIP = *instance.PublicIpAddress
	}
	if instance.LaunchTime != nil {
		m.LaunchTime = *instance.LaunchTime
	}

	for _, tag := range instance.Tags {
		if tag.Key == nil || tag.Value == nil {
			continue
		}
		m.Tags[*tag.Key] = *tag.Value
		switch *tag.Key {
		case "Name":
			m.Name = *tag.Value
		case "Environment":
			m.Environment = *tag.Value
		case "Application":
			m.Application = *tag.Value
		case "Owner":
			m.Owner = *tag.Value
		}
	}

	return m
}

func filterInstances(instances []models.Instance, filter InstanceFilter) []models.Instance {
	if filter.Environment == "" && filter.Application == "" && filter.State == "" {
		return instances
	}

	var result []models.Instance
	for _, instance := range instances {
		if filter.Environment != "" && !strings.EqualFold(instance.Environment, filter.Environment) {
			continue
		}
		if filter.Application != "" && !strings.EqualFold(instance.Application, filter.Application) {
			continue
		}
		if filter.State != "" && !strings.EqualFold(instance.State, filter.State) {
			continue
		}
		result = append(result, instance)
	}
	return result
}

func loadBuckets(ctx context.Context, client S3API) ([]models.Bucket, error) {
	output, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, errors.WrapCollaborator("list_buckets", "s3", err)
	}

	var buckets []models.Bucket
	for _, bucket := range output.Buckets {
		b := models.Bucket{}
		if bucket.Name != nil {
			b.Name = *bucket.Name
		}
		if bucket.CreationDate != nil {
			b.CreatedAt = *bucket.CreationDate
		}
		buckets = append(buckets, b)
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Name < buckets[j].Name
	})
	return buckets, nil
}

func loadDatabases(ctx context.Context, client RDSAPI) ([]models.Database, error) {
	output, err := client.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{})
	if err != nil {
		return nil, errors.WrapCollaborator("describe_db_instances", "rds", err)
	}

	var databases []models.Database
	for _, db := range output.DBInstances {
		d := models.Database{}
		if db.DBInstanceIdentifier != nil {
			d.Identifier = *db.DBInstanceIdentifier
		}
		if db.Engine != nil {
			d.Engine = *db.Engine
		}
		if db.EngineVersion != nil {
			d.EngineVersion = *db.EngineVersion
		}
		if db.DBInstanceClass != nil {
			d.Class = *db.DBInstanceClass
		}
		if db.DBInstanceStatus != nil {
			d.Status = *db.DBInstanceStatus
		}
		if db.MultiAZ != nil {
			d.MultiAZ = *db.MultiAZ
		}
		if db.StorageEncrypted != nil {
			d.Encrypted = *db.StorageEncrypted
		}
		if db.AllocatedStorage != nil {
			d.StorageGB = *db.AllocatedStorage
		}
		databases = append(databases, d)
	}

	sort.Slice(databases, func(i, j int) bool {
		return databases[i].Identifier < databases[j].Identifier
	})
	return databases, nil
}
