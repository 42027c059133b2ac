// Package shopsearch is a Go client for the shopsearch product API.
//
//	client, _ := shopsearch.New("http://localhost:8000", shopsearch.WithAPIKey(os.Getenv("ADMIN_API_KEY")))
//	hits, _ := client.SemanticSearch(ctx, "wireless headphones for running", 5)
//	reply, _ := client.Chat(ctx, "which laptop is best for travel?", nil)
//	summary, _ := client.SyncEmbeddings(ctx)
//
// Errors returned by the server map onto the sentinel errors of this package
// (ErrProductNotFound, ErrUnauthorized, ...). Use errors.Is to check, or
// errors.As with *APIError for the raw status and code.
package shopsearch
