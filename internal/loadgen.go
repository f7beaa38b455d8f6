package internal

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/kfiore/perfpulse/metrics"
)

// startLoadGenerator produces synthetic cache and metrics traffic so the
// dashboard has something to show when no real callers are wired in yet.
// It stands in for the request handlers and API clients that consume the
// engine in production.
func (a *Application) startLoadGenerator() {
	a.logger.Info("demo mode: generating synthetic traffic")

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()

		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		ticker := time.NewTicker(25 * time.Millisecond)
		defer ticker.Stop()

		namespaces := []string{"spotify", "github", "weather"}
		for {
			select {
			case <-ticker.C:
				ns := namespaces[rng.Intn(len(namespaces))]
				key := fmt.Sprintf("item:%d", rng.Intn(40))

				_ = a.metrics.Measure("api", ns, nil, func() error {
					a.cache.Fetch(ns, key, 2*time.Second, func() interface{} {
						// Simulated upstream latency, occasionally slow
						delay := time.Duration(5+rng.Intn(40)) * time.Millisecond
						if rng.Intn(20) == 0 {
							delay += 600 * time.Millisecond
						}
						time.Sleep(delay)
						return fmt.Sprintf("payload-%s-%s", ns, key)
					})
					return nil
				})

				a.metrics.Increment("requests_total", 1, metrics.Tags{"namespace": ns})
				a.metrics.SetGauge("cache_entries", float64(a.cache.Size()), nil)
			case <-a.ctx.Done():
				return
			}
		}
	}()
}
