// Package client contains the client-side plumbing of the market sales app.
//
// # Overview
//
// The package provides:
//  1. GRPCClient, a remote.Store talking to the document server over gRPC.
//     It keeps one connection, attaches the access token to every call
//     through an interceptor and maps gRPC status codes to the sentinel
//     errors of internal/common.
//  2. S3Store, a remote.Store keeping documents as JSON objects in an
//     S3-compatible bucket.
//  3. Record store bootstrap (InitDatabase, RunMigrations): SQLite via the
//     pure-Go modernc driver with embedded goose migrations.
//
// # Error Handling
//
// Remote failures surface as common.ErrUnavailable or
// common.ErrUnauthorized where the cause is known, and as wrapped errors
// otherwise. Callers match them with errors.Is.
//
// All operations accept context.Context and honor cancellation.
package client
