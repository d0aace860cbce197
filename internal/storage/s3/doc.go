/*
Package s3 provides a CargoShip-accelerated AWS S3 backend used as the
content-addressed chunk and metadata-snapshot store for the rest of the
daemon - there is no notion of storage tier or per-object cost here, only
a flat key namespace (chunks/<hash>, metadata snapshots) behind a pooled
S3 client.

# Architecture Overview

	┌─────────────────────────────────────────────────────────────┐
	│              internal/reduction BlockStore /                │
	│              internal/metadata raft snapshots                │
	└─────────────────────────────────────────────────────────────┘
	                          │
	┌─────────────────────────────────────────────────────────────┐
	│                    S3 Backend Layer                        │
	│           Connection Pool  │  CargoShip Transporter         │
	└─────────────────────────────────────────────────────────────┘
	                          │
	┌─────────────────────────────────────────────────────────────┐
	│                 AWS S3 Service                             │
	└─────────────────────────────────────────────────────────────┘

# CargoShip Integration

The backend leverages CargoShip optimization for significant performance
improvements:

Performance Benefits:
- Faster upload speeds through intelligent chunking
- Optimized connection pooling and reuse
- Advanced retry logic with exponential backoff
- Intelligent multipart upload optimization
- Reduced API call overhead through batching

CargoShip Features:
- Automatic optimal chunk size calculation
- Concurrent upload streams with load balancing
- Smart failure detection and recovery
- Regional endpoint optimization
- Bandwidth-aware throttling

Objects written through this backend always use the Standard storage
class (see PutObject) - chunks and metadata snapshots are actively read
back by the filesystem, not archived, so there is nothing here to tier.

# Configuration

	config := &s3.Config{
		Region:   "us-west-2",
		Endpoint: "", // Use default AWS

		EnableCargoShipOptimization: true,
		OptimizationLevel:           "aggressive",

		PoolSize:       10,
		ConnectTimeout: 30 * time.Second,
	}

# Usage Examples

Basic backend initialization:

	backend, err := s3.NewBackend(ctx, "my-bucket", config)
	if err != nil {
		log.Fatal(err)
	}
	defer backend.Close()

Object operations with automatic optimization:

	// Put object with CargoShip acceleration
	err := backend.PutObject(ctx, "chunks/ab12cd34", data)

	// Get object with CargoShip optimization
	data, err := backend.GetObject(ctx, "chunks/ab12cd34", 0, -1)

	// Head object for metadata
	info, err := backend.HeadObject(ctx, "chunks/ab12cd34")

Batch operations for improved performance:

	// Batch get operations
	keys := []string{"chunks/aa", "chunks/bb", "chunks/cc"}
	results, err := backend.GetObjects(ctx, keys)

	// Batch put operations
	objects := map[string][]byte{
		"chunks/aa": data1,
		"chunks/bb": data2,
	}
	err = backend.PutObjects(ctx, objects)

# Performance Optimization

CargoShip Integration:
- Automatically enabled for all operations
- Intelligent chunk size calculation
- Concurrent stream optimization
- Advanced retry mechanisms

Connection Pooling:
- Configurable pool size (default: 8 connections)
- Health monitoring and replacement
- Load balancing across connections
- Connection lifetime management

# Error Handling

Transient Error Recovery:
- Exponential backoff retry logic
- Circuit breaker patterns (see internal/transport)
- Connection pool failover
- Graceful degradation

Permanent Error Handling:
- Clear error categorization via pkg/errors
- Detailed error context
- Recovery recommendations

# Thread Safety

The backend is designed for concurrent access:

- All public methods are thread-safe
- Internal state is protected with appropriate synchronization
- Connection pool handles concurrent requests
- Statistics collection is atomic
*/
package s3
