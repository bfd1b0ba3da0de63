// Package pagination implements the vendor's offset-based pagination over
// list endpoints.
//
// List responses carry a total item count alongside the items of the current
// page. The fetcher derives the page count as floor(total/pageSize)+1 from
// the first response and then walks the remaining offsets sequentially,
// concatenating items. One request is in flight at a time, and any failure
// discards the whole run.
//
// Example usage:
//
//	fetcher := pagination.NewFetcher(pageSource, pagination.DefaultConfig())
//	items, err := fetcher.FetchAll(ctx)
package pagination
