package models

import "time"

// Instance is a compute instance row in the inventory view
type Instance struct {
	InstanceID       string            `json:"instance_id"`
	Name             string            `json:"name"`
	State            string            `json:"state"`
	InstanceType     string            `json:"instance_type"`
	Environment      string            `json:"environment"`
	Application      string            `json:"application"`
	Owner            string            `json:"owner"`
	AvailabilityZone string            `json:"availability_zone"`
	PrivateIP        string            `json:"private_ip"`
	PublicIP         string            `json:"public_ip"`
	LaunchTime       time.Time         `json:"launch_time"`
	Tags             map[string]string `json:"tags"`
}

// Stack is a CloudFormation stack row in the inventory view
type Stack struct {
	StackID     string     `json:"stack_id"`
	StackName   string     `json:"stack_name"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	Description string     `json:"description,omitempty"`
}

// Bucket is an S3 bucket row in the inventory view
type Bucket struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Database is an RDS instance row in the inventory view
type Database struct {
	Identifier    string `json:"identifier"`
	Engine        string `json:"engine"`
	EngineVersion string `json:"engine_version"`
	Class         string `json:"class"`
	Status        string `json:"status"`
	MultiAZ       bool   `json:"multi_az"`
	Encrypted     bool   `json:"encrypted"`
	StorageGB     int32  `json:"storage_gb"`
}

// StackEvent is one event in a stack's history
type StackEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	LogicalID    string    `json:"logical_id"`
	ResourceType string    `json:"resource_type"`
	Status       string    `json:"status"`
	Reason       string    `json:"reason,omitempty"`
}
