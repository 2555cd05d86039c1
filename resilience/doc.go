// Package resilience retries operations against flaky dependencies with
// context-aware exponential backoff.
//
//	db, err := resilience.Retry(ctx, resilience.RetryConfig{MaxAttempts: 3}, func() (*gorm.DB, error) {
//	    return gorm.Open(dialector, gormCfg)
//	})
package resilience
