package photoshare

import "strings"

// ObjectKeyFromURL recovers an object key from a public URL by scanning for
// the container path segment and taking everything after it. Query strings
// and fragments are dropped. Input without the segment is returned
// unchanged, so bare keys pass through untouched.
func ObjectKeyFromURL(urlOrKey, container string) string {
	key := urlOrKey
	marker := "/" + container + "/"
	if i := strings.Index(key, marker); i >= 0 {
		key = key[i+len(marker):]
	}
	if j := strings.IndexAny(key, "?#"); j >= 0 {
		key = key[:j]
	}
	return key
}
