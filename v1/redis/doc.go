// Package redis provides the optional response cache of the API.
//
// Distinct-value listings such as platform and sensor names require a full
// collection scan. The API wraps them in Remember, and the recorder
// invalidates the keys after every insert or delete so a fresh listing is
// computed on the next request. Entries also expire after Config.TTL.
//
//	platforms, err := redis.Remember(ctx, cache, "platforms", func(ctx context.Context) ([]string, error) {
//		return distinct(ctx, coll, "platform_name")
//	})
package redis
