// Package batch provides the engine behind bulk calendar operations.
//
// This package includes helpers for:
//   - Parsing parameters that accept both single values and arrays
//   - Parsing and validating bulk operation lists (update/patch/delete)
//   - Executing operations sequentially with per-operation results
//   - Handling partial failures without aborting the batch
package batch
