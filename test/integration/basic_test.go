//go:build integration

package integration

import (
	"context"
	"os"
	"testing"
	"time"
)

// TestBasicIntegration tests basic integration functionality
func TestBasicIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Check if integration environment is available
	if os.Getenv("INTEGRATION_TESTS") != "true" {
		t.Skip("Integration tests not enabled. Set INTEGRATION_TESTS=true to run.")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	t.Run("adapter_creation", func(t *testing.T) {
		// Test that we can create an adapter instance
		// This would test the basic initialization without requiring actual cloud services
		
		// Mock test for now - replace with actual adapter creation
		t.Log("Testing adapter creation...")
		
		// Simulate adapter creation
		select {
		case <-time.After(100 * time.Millisecond):
			t.Log("Adapter created successfully")
		case <-ctx.Done():
			t.Fatal("Test timed out")
		}
	})

	t.Run("configuration_loading", func(t *testing.T) {
		// Test configuration loading from various sources
		t.Log("Testing configuration loading...")
		
		// This would test loading configuration from files, environment variables, etc.
		select {
		case <-time.After(50 * time.Millisecond):
			t.Log("Configuration loaded successfully")
		case <-ctx.Done():
			t.Fatal("Test timed out")
		}
	})
}

// TestMinIOIntegration tests integration with MinIO (local S3-compatible storage)
func TestMinIOIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	// Check if MinIO is available
	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		t.Skip("MinIO endpoint not configured. Set MINIO_ENDPOINT to run MinIO integration tests.")
	}

	t.Run("minio_connection", func(t *testing.T) {
		// Test MinIO connection
		t.Logf("Testing MinIO connection to %s", minioEndpoint)
		
		// Mock test for now - replace with actual MinIO connection test
		select {
		case <-time.After(200 * time.Millisecond):
			t.Log("MinIO connection successful")
		case <-context.Background().Done():
			t.Fatal("Test context cancelled")
		}
	})

	t.Run("basic_operations", func(t *testing.T) {
		// Test basic CRUD operations
		t.Log("Testing basic CRUD operations...")
		
		operations := []string{"create", "read", "update", "delete"}
		for _, op := range operations {
			t.Run(op, func(t *testing.T) {
				// Mock operation test
				t.Logf("Testing %s operation", op)
				time.Sleep(10 * time.Millisecond) // Simulate operation
				t.Logf("%s operation completed", op)
			})
		}
	})
}

// TestPerformanceBaseline establishes performance baselines
func TestPerformanceBaseline(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping performance test in short mode")
	}

	if os.Getenv("PERFORMANCE_TESTS") != "true" {
		t.Skip("Performance tests not enabled. Set PERFORMANCE_TESTS=true to run.")
	}

	t.Run("throughput_baseline", func(t *testing.T) {
		// Establish throughput baseline
		start := time.Now()
		
		// Simulate throughput test
		operations := 1000
		for i := 0; i < operations; i++ {
			// Simulate operation
			time.Sleep(time.Microsecond)
		}
		
		duration := time.Since(start)
		opsPerSecond := float64(operations) / duration.Seconds()
		
		t.Logf("Throughput baseline: %.2f ops/sec", opsPerSecond)
		
		// Set a minimum expected throughput
		minOpsPerSecond := 10000.0
		if opsPerSecond < minOpsPerSecond {
			t.Errorf("Throughput %.2f ops/sec is below minimum %.2f ops/sec", opsPerSecond, minOpsPerSecond)
		}
	})

	t.Run("latency_baseline", func(t *testing.T) {
		// Establish latency baseline
		samples := 100
		var totalLatency time.Duration
		
		for i := 0; i < samples; i++ {
			start := time.Now()
			
			// Simulate operation
			time.Sleep(time.Microsecond * 10)
			
			totalLatency += time.Since(start)
		}
		
		avgLatency := totalLatency / time.Duration(samples)
		t.Logf("Average latency baseline: %v", avgLatency)
		
		// Set maximum expected latency
		maxLatency := time.Millisecond
		if avgLatency > maxLatency {
			t.Errorf("Average latency %v exceeds maximum %v", avgLatency, maxLatency)
		}
	})
}