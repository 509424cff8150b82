// Package resilience provides fault tolerance patterns for the crawler.
//
// The crawler deliberately does not retry: a failed page fetch either aborts the
// run or, when failed senators are skipped, counts against a circuit breaker
// that stops the crawl once the source site is evidently down.
//
// Usage Example:
//
//	cb := circuitbreaker.New(circuitbreaker.DetailFetchConfig())
//	result, err := cb.Execute(func() (interface{}, error) {
//	    return scraper.ExtractBills(ctx, url)
//	})
package resilience
