// File: utils/constants.go
package utils

// SessionCachePrefix is the prefix used for Redis checkout session keys.
const SessionCachePrefix = "checkout:session:"
