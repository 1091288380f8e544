// Ovh-cli is a command line client for the OVH API. Every call goes
// through a caching proxy: reads are served from a local cache for
// cache_ttl seconds, writes invalidate the cached entry for their path,
// and --dry-run prints writes instead of sending them.
//
// Credentials live in ~/.ovh-cli.config.json; run "ovh-cli api setup" to
// create it. OVH_APPLICATION_KEY, OVH_APPLICATION_SECRET, OVH_CONSUMER_KEY
// and OVH_ENDPOINT override the file.
//
// Exit codes:
//
//	0  success
//	1  error (invalid configuration, API error, declined confirmation)
package main
