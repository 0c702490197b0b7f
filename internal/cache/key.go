package cache

import (
	"fmt"
	"strings"
)

// Kind is the category of cached data
type Kind string

const (
	KindPosts         Kind = "posts"
	KindPostSearch    Kind = "posts.search"
	KindTags          Kind = "tags"
	KindComments      Kind = "comments"
	KindUser          Kind = "user"
	KindUserSummaries Kind = "users"
)

// Key identifies one cache entry: the resource kind plus the query
// parameters that produced it. Keys are compared by value.
type Key struct {
	Kind  Kind
	Tag   string
	Query string
	Skip  int
	Limit int
	ID    int64
}

// Prefix returns a key matching every entry of kind
func Prefix(kind Kind) Key {
	return Key{Kind: kind}
}

// HasPrefix reports whether k falls under prefix. Zero-valued fields of
// prefix are wildcards; an empty prefix matches everything.
func (k Key) HasPrefix(prefix Key) bool {
	if prefix.Kind != "" && prefix.Kind != k.Kind {
		return false
	}
	if prefix.Tag != "" && prefix.Tag != k.Tag {
		return false
	}
	if prefix.Query != "" && prefix.Query != k.Query {
		return false
	}
	if prefix.Skip != 0 && prefix.Skip != k.Skip {
		return false
	}
	if prefix.Limit != 0 && prefix.Limit != k.Limit {
		return false
	}
	if prefix.ID != 0 && prefix.ID != k.ID {
		return false
	}
	return true
}

// String renders the key as a stable tuple, e.g. posts(tag=,q=,skip=10,limit=10,id=0)
func (k Key) String() string {
	var b strings.Builder
	b.WriteString(string(k.Kind))
	fmt.Fprintf(&b, "(tag=%s,q=%s,skip=%d,limit=%d,id=%d)", k.Tag, k.Query, k.Skip, k.Limit, k.ID)
	return b.String()
}
