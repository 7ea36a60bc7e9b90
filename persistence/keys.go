package persistence

import (
	"fmt"

	"fintrack/core/model"
)

const (
	keyPrefix = "finance"
	// GuestNamespace owns the data of sessions without an identity. Identified users live
	// under UserNamespace, so no user id can reach the guest's keys.
	GuestNamespace = "anon"
	// UserNamespace prefixes the keys of signed-in identities.
	UserNamespace = "user"

	// CategoriesKey holds the category registry. It is shared by every identity.
	CategoriesKey = keyPrefix + ":categories"
	// SelectedMonthKey holds the month filter. It is shared by every identity.
	SelectedMonthKey = keyPrefix + ":selectedMonth"
)

// CacheKey is the local cache key of userID's collection of kind: finance:anon:<kind>
// for a guest, finance:user:<userID>:<kind> otherwise.
func CacheKey(userID string, kind model.Kind) string {
	if userID == "" {
		return fmt.Sprintf("%s:%s:%s", keyPrefix, GuestNamespace, kind)
	}
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, UserNamespace, userID, kind)
}
