// Package recodex recommends catalog products for natural-language shopping
// prompts.
//
// A prompt is turned into structured criteria (category, wanted and unwanted
// keywords, price window, minimum rating), the catalog is searched with
// progressively looser queries until the category yields candidates, the
// candidates are quality-gated, scored and ranked, and an explicit price
// window is widened when too few products fit it.
//
//	c, err := recodex.New(recodex.WithRedis("localhost:6379", ""))
//	if err != nil { ... }
//	defer c.Close()
//
//	rec, err := c.Recommend(ctx, "quiet bagless vacuum under 300", 5)
//
// The catalog lives in Redis 8+ (RedisJSON + RediSearch). Use EnsureIndex and
// Ingest, or the recodexctl command, to load it.
package recodex
