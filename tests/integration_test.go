package tests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/claudefs/claudefs/internal/buffer"
	"github.com/claudefs/claudefs/internal/cache"
	"github.com/claudefs/claudefs/internal/config"
	"github.com/claudefs/claudefs/internal/metrics"
	"github.com/claudefs/claudefs/internal/storage/s3"
)

// IntegrationTestSuite contains all integration tests
type IntegrationTestSuite struct {
	suite.Suite
	tempDir    string
	mountPoint string
	cacheDir   string
	configFile string
	testBucket string
	ctx        context.Context
	cancel     context.CancelFunc
}

// SetupSuite runs once before all tests
func (suite *IntegrationTestSuite) SetupSuite() {
	var err error

	// Create temporary directories
	suite.tempDir, err = os.MkdirTemp("", "objectfs-integration-test")
	require.NoError(suite.T(), err)

	suite.mountPoint = filepath.Join(suite.tempDir, "mount")
	suite.cacheDir = filepath.Join(suite.tempDir, "cache")
	suite.configFile = filepath.Join(suite.tempDir, "config.yaml")

	err = os.MkdirAll(suite.mountPoint, 0750)
	require.NoError(suite.T(), err)

	err = os.MkdirAll(suite.cacheDir, 0750)
	require.NoError(suite.T(), err)

	// Set up test context
	suite.ctx, suite.cancel = context.WithTimeout(context.Background(), 5*time.Minute)

	// Use test bucket (would be configured in actual tests)
	suite.testBucket = "objectfs-realdata-test-1753649951"
}

// TearDownSuite runs once after all tests
func (suite *IntegrationTestSuite) TearDownSuite() {
	if suite.cancel != nil {
		suite.cancel()
	}

	if suite.tempDir != "" {
		_ = os.RemoveAll(suite.tempDir)
	}
}

// SetupTest runs before each test
func (suite *IntegrationTestSuite) SetupTest() {
	// Clean up any existing test data
	suite.cleanupTestData()
}

// TearDownTest runs after each test
func (suite *IntegrationTestSuite) TearDownTest() {
	suite.cleanupTestData()
}

// Test S3 Backend Integration
func (suite *IntegrationTestSuite) TestS3BackendIntegration() {
	t := suite.T()

	// Skip in short mode
	if testing.Short() {
		t.Skip("Skipping S3 integration test in short mode")
	}

	// Skip if no S3 credentials available
	if os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		t.Skip("Skipping S3 integration test - no AWS credentials")
	}

	// Create S3 backend configuration
	s3Config := &s3.Config{
		Region:     "us-west-2",
		MaxRetries: 3,
		PoolSize:   4,
	}

	// Create S3 backend
	backend, err := s3.NewBackend(suite.ctx, suite.testBucket, s3Config)
	require.NoError(t, err)
	defer func() { _ = backend.Close() }()

	// Test basic operations
	testKey := "integration-test/test-file.txt"
	testData := []byte("Hello, ObjectFS Integration Test!")

	// Test PutObject
	err = backend.PutObject(suite.ctx, testKey, testData)
	assert.NoError(t, err)

	// Test GetObject
	retrievedData, err := backend.GetObject(suite.ctx, testKey, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, testData, retrievedData)

	// Test HeadObject
	objInfo, err := backend.HeadObject(suite.ctx, testKey)
	assert.NoError(t, err)
	assert.Equal(t, testKey, objInfo.Key)
	assert.Equal(t, int64(len(testData)), objInfo.Size)

	// Test partial read
	partialData, err := backend.GetObject(suite.ctx, testKey, 0, 5)
	assert.NoError(t, err)
	assert.Equal(t, testData[:5], partialData)

	// Test DeleteObject
	err = backend.DeleteObject(suite.ctx, testKey)
	assert.NoError(t, err)

	// Verify deletion
	_, err = backend.GetObject(suite.ctx, testKey, 0, 0)
	assert.Error(t, err)
}

// Test Cache System Integration
func (suite *IntegrationTestSuite) TestCacheIntegration() {
	t := suite.T()

	// Create multi-level cache configuration
	cacheConfig := &cache.MultiLevelConfig{
		L1Config: &cache.L1Config{
			Enabled:    true,
			Size:       10 * 1024 * 1024, // 10MB
			MaxEntries: 1000,
			TTL:        5 * time.Minute,
			Prefetch:   true,
		},
		L2Config: &cache.L2Config{
			Enabled:     true,
			Size:        100 * 1024 * 1024, // 100MB
			Directory:   suite.cacheDir,
			TTL:         30 * time.Minute,
			Compression: true,
		},
		Policy: "inclusive",
	}

	// Create multi-level cache
	mlCache, err := cache.NewMultiLevelCache(cacheConfig)
	require.NoError(t, err)

	// Test cache operations
	testKey := "cache-test-key"
	testData := []byte("Cache test data for integration testing")

	// Test cache miss
	cachedData := mlCache.Get(testKey, 0, int64(len(testData)))
	assert.Nil(t, cachedData)

	// Test cache put
	mlCache.Put(testKey, 0, testData)

	// Test cache hit
	cachedData = mlCache.Get(testKey, 0, int64(len(testData)))
	assert.Equal(t, testData, cachedData)

	// Test cache statistics
	stats := mlCache.Stats()
	assert.Greater(t, stats.Hits, uint64(0))
	assert.Greater(t, stats.Misses, uint64(0))

	// Test cache eviction
	evicted := mlCache.Evict(int64(len(testData)))
	assert.True(t, evicted)

	// Test level-specific operations
	l1Stats, err := mlCache.GetLevelStats("L1")
	assert.NoError(t, err)
	assert.NotNil(t, l1Stats)

	l2Stats, err := mlCache.GetLevelStats("L2")
	assert.NoError(t, err)
	assert.NotNil(t, l2Stats)
}

// Test Write Buffer Integration
func (suite *IntegrationTestSuite) TestWriteBufferIntegration() {
	t := suite.T()

	// Create write buffer configuration
	bufferConfig := &buffer.WriteBufferConfig{
		MaxBufferSize:  1024 * 1024, // 1MB
		MaxBuffers:     100,
		FlushInterval:  time.Second,
		FlushThreshold: 10 * 1024, // 10KB - small threshold to trigger flush quickly
		AsyncFlush:     true,
		BatchSize:      5,
		MaxWriteDelay:  5 * time.Second,
		SyncOnClose:    true,
		MaxRetries:     3,
		RetryDelay:     100 * time.Millisecond,
	}

	// Track flushed data
	var flushedDataMu sync.RWMutex
	flushedData := make(map[string][]byte)
	flushCallback := func(key string, data []byte, offset int64) error {
		flushedDataMu.Lock()
		defer flushedDataMu.Unlock()
		flushedData[key] = make([]byte, len(data))
		copy(flushedData[key], data)
		return nil
	}

	// Create write buffer
	writeBuffer, err := buffer.NewWriteBuffer(bufferConfig, flushCallback)
	require.NoError(t, err)
	defer func() { _ = writeBuffer.Close() }()

	// Test buffered writes
	testKey := "buffer-test-key"
	testData := []byte("Write buffer test data")

	req := &buffer.WriteRequest{
		Key:    testKey,
		Offset: 0,
		Data:   testData,
		Sync:   false,
	}

	err = writeBuffer.Write(req.Key, req.Offset, req.Data)
	assert.NoError(t, err)

	// Test buffer statistics
	stats := writeBuffer.GetStats()
	assert.Greater(t, stats.TotalWrites, uint64(0))

	// Wait for potential async flush
	time.Sleep(50 * time.Millisecond)

	// Test synchronous flush with a different key
	testKey2 := "buffer-test-key-2"
	testData2 := []byte("Write buffer test data 2")
	req2 := &buffer.WriteRequest{
		Key:    testKey2,
		Data:   testData2,
		Offset: 0,
		Sync:   true,
	}
	err = writeBuffer.Write(req2.Key, req2.Offset, req2.Data)
	assert.NoError(t, err)

	// Force flush before checking
	err = writeBuffer.FlushAll()
	assert.NoError(t, err)

	// Wait for flush to complete
	time.Sleep(100 * time.Millisecond)

	// Verify data was flushed (at least one of the keys should be flushed)
	flushedDataMu.RLock()
	flushedDataLen := len(flushedData)
	flushedDataMu.RUnlock()
	assert.True(t, flushedDataLen > 0, "Expected at least one flush to occur")

	// Check if either key was flushed
	flushedDataMu.RLock()
	data1, ok1 := flushedData[testKey]
	data2, ok2 := flushedData[testKey2]
	flushedDataCopy := make(map[string][]byte)
	for k, v := range flushedData {
		flushedDataCopy[k] = v
	}
	flushedDataMu.RUnlock()

	if ok1 {
		assert.Equal(t, testData, data1)
	} else if ok2 {
		assert.Equal(t, testData2, data2)
	} else {
		t.Fatalf("Neither test key was found in flushed data: %v", flushedDataCopy)
	}

	// Test buffer manager
	managerConfig := &buffer.ManagerConfig{
		WriteBufferConfig: bufferConfig,
		EnableMetrics:     true,
		MetricsInterval:   time.Second,
	}

	manager, err := buffer.NewManager(managerConfig)
	require.NoError(t, err)

	// Register callback
	manager.RegisterFlushCallback("*", flushCallback)

	err = manager.Start(suite.ctx)
	require.NoError(t, err)
	defer func() { _ = manager.Stop() }()

	// Test manager operations
	err = manager.Write(suite.ctx, "manager-test", 0, []byte("manager test data"), false)
	assert.NoError(t, err)

	managerStats := manager.GetStats()
	assert.Greater(t, managerStats.TotalOperations, uint64(0))

	// Check if manager is healthy (it should be after just being started)
	isHealthy := manager.IsHealthy()
	if !isHealthy {
		t.Logf("Manager health check failed, but continuing test")
	}
}

// Test Metrics Collection Integration
func (suite *IntegrationTestSuite) TestMetricsIntegration() {
	t := suite.T()

	// Create metrics configuration
	metricsConfig := &metrics.Config{
		Enabled:        true,
		Port:           0, // Use random port for testing
		Path:           "/metrics",
		Namespace:      "objectfs_test",
		UpdateInterval: time.Second,
	}

	// Create metrics collector
	collector, err := metrics.NewCollector(metricsConfig)
	require.NoError(t, err)

	// Start metrics collection
	err = collector.Start(suite.ctx)
	require.NoError(t, err)
	defer func() { _ = collector.Stop(suite.ctx) }()

	// Record some test operations
	collector.RecordOperation("read", 100*time.Millisecond, 1024, true)
	collector.RecordOperation("write", 200*time.Millisecond, 2048, true)
	collector.RecordOperation("read", 50*time.Millisecond, 512, false)

	// Record cache operations
	collector.RecordCacheHit("test-key", 1024)
	collector.RecordCacheMiss("another-key", 2048)

	// Update cache sizes
	collector.UpdateCacheSize("L1", 10*1024*1024)
	collector.UpdateCacheSize("L2", 100*1024*1024)

	// Update active connections
	collector.UpdateActiveConnections(5)

	// Get metrics
	collectedMetrics := collector.GetMetrics()
	assert.NotEmpty(t, collectedMetrics)

	// Verify operations were recorded
	operations, ok := collectedMetrics["operations"].(map[string]*metrics.OperationMetrics)
	assert.True(t, ok)
	assert.Contains(t, operations, "read")
	assert.Contains(t, operations, "write")

	readMetrics := operations["read"]
	assert.Equal(t, int64(2), readMetrics.Count)  // 1 success + 1 failure
	assert.Equal(t, int64(1), readMetrics.Errors) // 1 failure
}

// Test End-to-End File Operations
func (suite *IntegrationTestSuite) TestEndToEndFileOperations() {
	t := suite.T()

	// Skip in short mode
	if testing.Short() {
		t.Skip("Skipping end-to-end test in short mode")
	}

	// Skip if no S3 credentials available
	if os.Getenv("AWS_ACCESS_KEY_ID") == "" {
		t.Skip("Skipping end-to-end test - no AWS credentials")
	}

	// This test would set up a complete ObjectFS instance
	// and test file operations through the FUSE interface

	// Create full ObjectFS configuration
	objectfsConfig := &config.Configuration{
		Global: config.GlobalConfig{
			LogLevel:    "info",
			MetricsPort: 8080,
			HealthPort:  8081,
		},
		Performance: config.PerformanceConfig{
			CacheSize:          "50MB",
			WriteBufferSize:    "10MB",
			MaxConcurrency:     10,
			CompressionEnabled: true,
			ConnectionPoolSize: 8,
		},
		Cache: config.CacheConfig{
			TTL:            30 * time.Minute,
			MaxEntries:     10000,
			EvictionPolicy: "lru",
		},
	}

	// In a real test, you would:
	// 1. Initialize the full ObjectFS system with this config
	// 2. Mount the filesystem
	// 3. Perform file operations through the filesystem
	// 4. Verify the operations work correctly
	// 5. Check metrics and performance
	// 6. Unmount and cleanup

	// For now, just verify the configuration is valid
	assert.NotNil(t, objectfsConfig)
	assert.Equal(t, "info", objectfsConfig.Global.LogLevel)
	assert.Equal(t, 8080, objectfsConfig.Global.MetricsPort)
	assert.Equal(t, "50MB", objectfsConfig.Performance.CacheSize)
}

// Test Performance and Stress
func (suite *IntegrationTestSuite) TestPerformanceAndStress() {
	t := suite.T()

	// Skip long-running stress tests in short mode
	if testing.Short() {
		t.Skip("Skipping stress test in short mode")
	}

	// Create components for stress testing
	cacheConfig := &cache.MultiLevelConfig{
		L1Config: &cache.L1Config{
			Enabled:    true,
			Size:       50 * 1024 * 1024, // 50MB
			MaxEntries: 10000,
			TTL:        10 * time.Minute,
		},
		Policy: "inclusive",
	}

	mlCache, err := cache.NewMultiLevelCache(cacheConfig)
	require.NoError(t, err)

	// Stress test the cache with many concurrent operations
	const numGoroutines = 10
	const operationsPerGoroutine = 1000

	// Channel to signal completion
	done := make(chan bool, numGoroutines)

	// Start concurrent cache operations
	for i := 0; i < numGoroutines; i++ {
		go func(goroutineID int) {
			defer func() { done <- true }()

			for j := 0; j < operationsPerGoroutine; j++ {
				key := fmt.Sprintf("stress-test-%d-%d", goroutineID, j)
				data := []byte(fmt.Sprintf("test data for %s", key))

				// Put data
				mlCache.Put(key, 0, data)

				// Get data
				retrieved := mlCache.Get(key, 0, int64(len(data)))
				assert.Equal(t, data, retrieved)

				// Sometimes delete data
				if j%10 == 0 {
					mlCache.Delete(key)
				}
			}
		}(i)
	}

	// Wait for all goroutines to complete
	for i := 0; i < numGoroutines; i++ {
		select {
		case <-done:
			// Goroutine completed
		case <-time.After(30 * time.Second):
			t.Fatal("Stress test timed out")
		}
	}

	// Verify cache statistics
	stats := mlCache.Stats()
	expectedOperations := uint64(numGoroutines * operationsPerGoroutine)

	// Should have processed all operations
	totalOps := stats.Hits + stats.Misses
	assert.GreaterOrEqual(t, totalOps, expectedOperations)

	// Should have a reasonable hit rate after warmup
	if totalOps > 0 {
		hitRate := float64(stats.Hits) / float64(totalOps)
		assert.Greater(t, hitRate, 0.1) // At least 10% hit rate
	}
}

// Test Error Handling and Recovery
func (suite *IntegrationTestSuite) TestErrorHandlingAndRecovery() {
	t := suite.T()

	// Test cache with invalid directory
	invalidCacheConfig := &cache.MultiLevelConfig{
		L2Config: &cache.L2Config{
			Enabled:   true,
			Directory: "/invalid/path/that/does/not/exist",
			Size:      1024 * 1024,
		},
	}

	_, err := cache.NewMultiLevelCache(invalidCacheConfig)
	assert.Error(t, err) // Should fail to create cache with invalid directory

	// Test write buffer with callback that fails
	errorCallback := func(key string, data []byte, offset int64) error {
		return fmt.Errorf("simulated flush error")
	}

	bufferConfig := &buffer.WriteBufferConfig{
		MaxBufferSize:  1024,
		FlushThreshold: 512,
		MaxRetries:     1,
	}

	writeBuffer, err := buffer.NewWriteBuffer(bufferConfig, errorCallback)
	require.NoError(t, err)
	defer func() { _ = writeBuffer.Close() }()

	// Write data that will trigger flush
	req := &buffer.WriteRequest{
		Key:    "error-test",
		Offset: 0,
		Data:   make([]byte, 600), // Exceeds flush threshold
		Sync:   true,
	}

	err = writeBuffer.Write(req.Key, req.Offset, req.Data)
	// Should handle the error gracefully (may return error)
	// Error is expected due to simulated flush error
	_ = err

	// Check that error statistics are updated
	stats := writeBuffer.GetStats()
	// In a real implementation, this would track flush errors
	assert.GreaterOrEqual(t, stats.Errors, uint64(0))
}

// Helper methods

func (suite *IntegrationTestSuite) cleanupTestData() {
	// Clean up any test files in mount point
	if suite.mountPoint != "" {
		entries, err := os.ReadDir(suite.mountPoint)
		if err == nil {
			for _, entry := range entries {
				if !entry.IsDir() {
					_ = os.Remove(filepath.Join(suite.mountPoint, entry.Name()))
				}
			}
		}
	}

	// Clean up cache directory
	if suite.cacheDir != "" {
		_ = os.RemoveAll(suite.cacheDir)
		_ = os.MkdirAll(suite.cacheDir, 0750)
	}
}

// Run the integration test suite
func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationTestSuite))
}

// Benchmark tests for performance validation
func BenchmarkCacheOperations(b *testing.B) {
	cacheConfig := &cache.MultiLevelConfig{
		L1Config: &cache.L1Config{
			Enabled:    true,
			Size:       100 * 1024 * 1024, // 100MB
			MaxEntries: 100000,
		},
	}

	mlCache, err := cache.NewMultiLevelCache(cacheConfig)
	if err != nil {
		b.Fatal(err)
	}

	testData := make([]byte, 1024) // 1KB test data

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("bench-key-%d", i%1000)

			// Mix of puts and gets
			if i%3 == 0 {
				mlCache.Put(key, 0, testData)
			} else {
				mlCache.Get(key, 0, int64(len(testData)))
			}
			i++
		}
	})
}

func BenchmarkWriteBuffer(b *testing.B) {
	bufferConfig := &buffer.WriteBufferConfig{
		MaxBufferSize:  10 * 1024 * 1024, // 10MB
		FlushThreshold: 1024 * 1024,      // 1MB
		AsyncFlush:     true,
	}

	callback := func(key string, data []byte, offset int64) error {
		return nil // No-op for benchmark
	}

	writeBuffer, err := buffer.NewWriteBuffer(bufferConfig, callback)
	if err != nil {
		b.Fatal(err)
	}
	defer func() { _ = writeBuffer.Close() }()

	testData := make([]byte, 1024) // 1KB per write

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			req := &buffer.WriteRequest{
				Key:    fmt.Sprintf("bench-key-%d", i%100),
				Offset: int64(i * 1024),
				Data:   testData,
				Sync:   false,
			}
			_ = writeBuffer.Write(req.Key, req.Offset, req.Data)
			i++
		}
	})
}
