// PulseHub - Real-Time Fan-Out Gateway for NFT Coupon Retail
// Copyright 2026 PerkStreet Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/perkstreet/pulsehub

package realtime

import (
	"math"
	"strconv"
	"strings"
)

// Room name prefixes. The prefix is the routing kind; everything after the
// colon is the target identifier.
const (
	roomPrefixUser     = "user:"
	roomPrefixLottery  = "lottery:"
	roomPrefixMerchant = "merchant:"
	roomPrefixLocation = "location:"
)

// DefaultLocationRadius is the radius in meters applied when a location
// join or broadcast omits one.
const DefaultLocationRadius = 1000

// UserRoom returns the personal room name for an identity. Every connection
// is auto-joined to its personal room at admission.
func UserRoom(userID string) string {
	return roomPrefixUser + userID
}

// LotteryRoom returns the room name for a lottery's subscribers.
func LotteryRoom(lotteryID string) string {
	return roomPrefixLottery + lotteryID
}

// MerchantRoom returns the room name for a merchant's subscribers.
func MerchantRoom(merchantID string) string {
	return roomPrefixMerchant + merchantID
}

// LocationRoom returns the canonical room name for a geographic cell.
// Coordinates are truncated (not rounded) to 3 decimal places so that both
// join and broadcast resolution produce the identical key, e.g.
// LocationRoom(22.31930, 114.16940, 1000) == "location:22.319_114.169_1000".
// A radius <= 0 falls back to DefaultLocationRadius.
func LocationRoom(lat, lng float64, radius int) string {
	if radius <= 0 {
		radius = DefaultLocationRadius
	}
	return roomPrefixLocation + truncateCoord(lat) + "_" + truncateCoord(lng) + "_" + strconv.Itoa(radius)
}

// truncateCoord formats a coordinate with exactly 3 decimal places,
// truncating toward zero rather than rounding.
func truncateCoord(v float64) string {
	return strconv.FormatFloat(math.Trunc(v*1000)/1000, 'f', 3, 64)
}

// roomKind classifies a room name by its prefix for metrics labels.
func roomKind(room string) string {
	switch {
	case strings.HasPrefix(room, roomPrefixUser):
		return "user"
	case strings.HasPrefix(room, roomPrefixLottery):
		return "lottery"
	case strings.HasPrefix(room, roomPrefixMerchant):
		return "merchant"
	case strings.HasPrefix(room, roomPrefixLocation):
		return "location"
	default:
		return "other"
	}
}
