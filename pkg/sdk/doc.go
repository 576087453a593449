// Package sdk is a thin HTTP client for the bookgraph resolution service.
//
// Usage:
//
//	client := sdk.NewClient("http://localhost:8080")
//	result, err := client.Resolve(ctx, sdk.Citation{
//		Title:  "Pride and Prejudice",
//		Author: "Jane Austen",
//	})
//
// All methods return *sdk.APIError for non-2xx responses, carrying the
// service's error code and message.
package sdk
