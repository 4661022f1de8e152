package inventory

import (
	"context"
	"testing"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/cloudops/cloud-console-tool/internal/models"
)

type fakeEC2 struct {
	calls int
}

func (f *fakeEC2) DescribeInstances(_ context.Context, _ *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.calls++
	launch := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	return &ec2.DescribeInstancesOutput{
		Reservations: []ec2types.Reservation{
			{
				Instances: []ec2types.Instance{
					{
						InstanceId:       awssdk.String("i-0web"),
						InstanceType:     ec2types.InstanceTypeT3Medium,
						State:            &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
						PrivateIpAddress: awssdk.String("10.0.1.5"),
						LaunchTime:       &launch,
						Tags: []ec2types.Tag{
							{Key: awssdk.String("Name"), Value: awssdk.String("web-1")},
							{Key: awssdk.String("Environment"), Value: awssdk.String("production")},
							{Key: awssdk.String("Application"), Value: awssdk.String("web")},
							{Key: awssdk.String("Owner"), Value: awssdk.String("platform")},
						},
					},
					{
						InstanceId:   awssdk.String("i-0db"),
						InstanceType: ec2types.InstanceTypeT3Large,
						State:        &ec2types.InstanceState{Name: ec2types.InstanceStateNameStopped},
						Tags: []ec2types.Tag{
							{Key: awssdk.String("Name"), Value: awssdk.String("db-1")},
							{Key: awssdk.String("Environment"), Value: awssdk.String("dev")},
						},
					},
				},
			},
		},
	}, nil
}

func TestLoadInstances_TagExtraction(t *testing.T) {
	client := &fakeEC2{}
	instances, err := loadInstances(context.Background(), client)
	if err != nil {
		t.Fatalf("loadInstances() error = %v", err)
	}
	if len(instances) != 2 {
		t.Fatalf("loadInstances() = %d instances, want 2", len(instances))
	}

	// Sorted by instance id
	web := instances[1]
	if web.InstanceID != "i-0web" {
		t.Fatalf("instances[1].InstanceID = %s, want i-0web", web.InstanceID)
	}
	if web.Name != "web-1" || web.Environment != "production" || web.Application != "web" || web.Owner != "platform" {
		t.Errorf("tag extraction failed: %+v", web)
	}
	if web.State != "running" {
		t.Errorf("State = %s, want running", web.State)
	}
	if web.Tags["Environment"] != "production" {
		t.Errorf("Tags map missing Environment: %v", web.Tags)
	}
}

func TestFilterInstances(t *testing.T) {
	instances := []models.Instance{
		{InstanceID: "i-1", Environment: "production", Application: "web", State: "running"},
		{InstanceID: "i-2", Environment: "dev", Application: "web", State: "stopped"},
		{InstanceID: "i-3", Environment: "production", Application: "api", State: "running"},
	}

	tests := []struct {
		name   string
		filter InstanceFilter
		want   []string
	}{
		{
			name:   "no filter returns all",
			filter: InstanceFilter{},
			want:   []string{"i-1", "i-2", "i-3"},
		},
		{
			name:   "environment filter",
			filter: InstanceFilter{Environment: "production"},
			want:   []string{"i-1", "i-3"},
		},
		{
			name:   "environment is case insensitive",
			filter: InstanceFilter{Environment: "Production"},
			want:   []string{"i-1", "i-3"},
		},
		{
			name:   "combined filters",
			filter: InstanceFilter{Environment: "production", Application: "web"},
			want:   []string{"i-1"},
		},
		{
			name:   "state filter",
			filter: InstanceFilter{State: "stopped"},
			want:   []string{"i-2"},
		},
		{
			name:   "no match",
			filter: InstanceFilter{Environment: "staging"},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := filterInstances(instances, tt.filter)
			if len(got) != len(tt.want) {
				t.Fatalf("filterInstances() = %d instances, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].InstanceID != id {
					t.Errorf("filterInstances()[%d] = %s, want %s", i, got[i].InstanceID, id)
				}
			}
		})
	}
}

type fakeS3 struct{}

func (fakeS3) ListBuckets(_ context.Context, _ *s3.ListBucketsInput, _ ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	created := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	return &s3.ListBucketsOutput{
		Buckets: []s3types.Bucket{
			{Name: awssdk.String("logs-bucket"), CreationDate: &created},
			{Name: awssdk.String("app-assets"), CreationDate: &created},
		},
	}, nil
}

func TestLoadBuckets_Sorted(t *testing.T) {
	buckets, err := loadBuckets(context.Background(), fakeS3{})
	if err != nil {
		t.Fatalf("loadBuckets() error = %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("loadBuckets() = %d buckets, want 2", len(buckets))
	}
	if buckets[0].Name != "app-assets" {
		t.Errorf("buckets[0].Name = %s, want app-assets (sorted)", buckets[0].Name)
	}
}

type fakeRDS struct{}

func (fakeRDS) DescribeDBInstances(_ context.Context, _ *rds.DescribeDBInstancesInput, _ ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	return &rds.DescribeDBInstancesOutput{
		DBInstances: []rdstypes.DBInstance{
			{
				DBInstanceIdentifier: awssdk.String("prod-db"),
				Engine:               awssdk.String("postgres"),
				EngineVersion:        awssdk.String("16.3"),
				DBInstanceClass:      awssdk.String("db.r6g.large"),
				DBInstanceStatus:     awssdk.String("available"),
				MultiAZ:              awssdk.Bool(true),
				StorageEncrypted:     awssdk.Bool(true),
				AllocatedStorage:     awssdk.Int32(100),
			},
		},
	}, nil
}

func TestLoadDatabases(t *testing.T) {
	databases, err := loadDatabases(context.Background(), fakeRDS{})
	if err != nil {
		t.Fatalf("loadDatabases() error = %v", err)
	}
	if len(databases) != 1 {
		t.Fatalf("loadDatabases() = %d databases, want 1", len(databases))
	}

	db := databases[0]
	if db.Identifier != "prod-db" || db.Engine != "postgres" || !db.MultiAZ || !db.Encrypted || db.StorageGB != 100 {
		t.Errorf("loadDatabases() = %+v", db)
	}
}
