// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("indexes/chat"),
//	    s3.WithRegion("us-east-1"),
//	)
//
// # Features
//
//   - Range reads for partial fetches
//   - Multipart uploads with CRC32C integrity validation
//   - Automatic pagination for listing
//   - Configurable key prefix for multi-tenant isolation
//
// DDBCommitStore layers DynamoDB conditional writes on top for an
// atomically updated commit pointer; see its documentation.
package s3
