package market

import (
	"encoding/binary"

	"github.com/LeJamon/goMarketd/internal/core/ids"
)

// Key prefixes of the market keyspace.
const (
	prefixListing      = "l/"
	prefixListingID    = "li/"
	prefixListingFinal = "lf/"
	prefixBucket       = "b/"
	prefixBucketID     = "bi/"
	keyFeeState        = "f"
)

// MaxAddressLength bounds owner addresses so they fit the key encoding.
const MaxAddressLength = 256

// ownerSegment length-prefixes owner so that no owner's key range contains
// another owner's keys.
func ownerSegment(owner string) string {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], uint16(len(owner)))
	return string(buf[:]) + owner
}

func listingKey(owner string, id uint64) string {
	return ids.Key(prefixListing+ownerSegment(owner), id)
}

func listingOwnerPrefix(owner string) string {
	return prefixListing + ownerSegment(owner)
}

func listingIDKey(id uint64) string {
	return ids.Key(prefixListingID, id)
}

func finalizeKey(finalizedAt int64, id uint64) string {
	return ids.Key(ids.Key(prefixListingFinal, uint64(finalizedAt)), id)
}

func bucketKey(owner string, id uint64) string {
	return ids.Key(prefixBucket+ownerSegment(owner), id)
}

func bucketOwnerPrefix(owner string) string {
	return prefixBucket + ownerSegment(owner)
}

func bucketIDKey(id uint64) string {
	return ids.Key(prefixBucketID, id)
}
