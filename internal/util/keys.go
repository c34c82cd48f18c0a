package util

import "strings"

// StorageKey prefixes a logical key with the cache namespace. An empty
// namespace leaves keys untouched.
func StorageKey(ns, key string) string {
	if ns == "" {
		return key
	}
	return ns + ":" + key
}

// LogicalKey strips the namespace prefix from a storage key. It reports
// false for keys outside the namespace (foreign entries in a shared backend).
func LogicalKey(ns, storageKey string) (string, bool) {
	if ns == "" {
		return storageKey, true
	}
	return strings.CutPrefix(storageKey, ns+":")
}
