package resource

import (
	"encoding/json"

	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/urlstate"
)

// PostsKey returns the cache key of the base listing for f. A tag filter
// selects the whole tag listing; otherwise the key carries skip and limit.
func PostsKey(f urlstate.FilterState) cache.Key {
	f = f.Normalize()
	if f.Tag != "" {
		return cache.Key{Kind: cache.KindPosts, Tag: f.Tag}
	}
	return cache.Key{Kind: cache.KindPosts, Skip: f.Skip, Limit: f.Limit}
}

// SearchKey returns the cache key of the search results for q
func SearchKey(q string) cache.Key {
	return cache.Key{Kind: cache.KindPostSearch, Query: q}
}

// TagsKey returns the cache key of the tag list
func TagsKey() cache.Key {
	return cache.Key{Kind: cache.KindTags}
}

// CommentsKey returns the cache key of a post's comments
func CommentsKey(postID int64) cache.Key {
	return cache.Key{Kind: cache.KindComments, ID: postID}
}

// UserKey returns the cache key of a full user profile
func UserKey(id int64) cache.Key {
	return cache.Key{Kind: cache.KindUser, ID: id}
}

// UserSummariesKey returns the cache key of the user summary list
func UserSummariesKey() cache.Key {
	return cache.Key{Kind: cache.KindUserSummaries}
}

// RegisterKinds enables mirroring of every resource kind on store
func RegisterKinds(store *cache.Store) {
	store.RegisterKind(cache.KindPosts, decodeInto[models.PostPage])
	store.RegisterKind(cache.KindPostSearch, decodeInto[models.PostPage])
	store.RegisterKind(cache.KindComments, decodeInto[models.CommentPage])
	store.RegisterKind(cache.KindUser, decodeInto[models.User])
	store.RegisterKind(cache.KindUserSummaries, decodeInto[models.UserSummaryPage])
	store.RegisterKind(cache.KindTags, func(data []byte) (interface{}, error) {
		var tags []models.Tag
		if err := json.Unmarshal(data, &tags); err != nil {
			return nil, err
		}
		return tags, nil
	})
}

func decodeInto[T any](data []byte) (interface{}, error) {
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return nil, err
	}
	return v, nil
}
