/*
Package observability turns trial lifecycle events into logs and Prometheus metrics.

Every helper returns a domain.LifecycleHooks value; CombineHooks fans one event out to several of them.

	metrics, err := observability.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal(err)
	}
	hooks := observability.CombineHooks(metrics.Hooks(), observability.LogHooks(logger))
	plugin := occlusion.New(occlusion.WithLifecycleHooks(hooks))
*/
package observability
