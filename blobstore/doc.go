// Package blobstore provides the storage abstraction behind snapshot
// persistence.
//
// BlobStore is the interface for reading and writing named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-memory, for tests and ephemeral indexes
//   - LocalStore: local filesystem, memory-mapped reads
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - s3.DDBCommitStore: S3 plus DynamoDB conditional writes for the
//     commit pointer, for safe concurrent writers
//   - minio.Store: MinIO and other S3-compatible object stores
//
// Custom backends implement the BlobStore interface directly.
package blobstore
