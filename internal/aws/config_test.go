package aws

import (
	"context"
	"testing"
)

func TestLoadAWSConfig_DefaultRegion(t *testing.T) {
	cfg, err := LoadAWSConfig(context.Background(), Settings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Region != "us-east-1" {
		t.Fatalf("expected default region 'us-east-1', got %s", cfg.Region)
	}
	if cfg.BaseEndpoint != nil {
		t.Fatalf("no endpoint override expected, got %s", *cfg.BaseEndpoint)
	}
}

func TestLoadAWSConfig_WithEndpointOverride(t *testing.T) {
	cfg, err := LoadAWSConfig(context.Background(), Settings{Region: "ap-south-1", EndpointOverride: "http://localhost:4566"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Region != "ap-south-1" {
		t.Fatalf("region mismatch, got %s", cfg.Region)
	}
	if cfg.BaseEndpoint == nil || *cfg.BaseEndpoint != "http://localhost:4566" {
		t.Fatalf("expected base endpoint override, got %v", cfg.BaseEndpoint)
	}
}

func TestNewClients(t *testing.T) {
	c, err := NewClients(context.Background(), Settings{Region: "ap-south-1"})
	if err != nil {
		t.Fatal(err)
	}
	if c.DynamoDB == nil || c.SQS == nil || c.CloudWatch == nil {
		t.Fatalf("all clients should be set: %+v", c)
	}
}
