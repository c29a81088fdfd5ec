// Package identity assigns a stable numeric identity to a channel ID string,
// for use as a map/grouping key where string comparisons would be wasteful.
package identity

import "github.com/cespare/xxhash/v2"

// Hash computes the xxHash64 of a dotted network.station.location.channel ID.
func Hash(channelID string) uint64 {
	return xxhash.Sum64String(channelID)
}
