package mutation

import (
	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/internal/models"
)

// Rule is one step of reconciling the cache after a successful mutation
type Rule interface {
	Apply(store *cache.Store) int
}

// Policy is the ordered set of rules applied on success
type Policy []Rule

// Patch rewrites every cached entry under Prefix. Absent entries are left
// absent.
type Patch struct {
	Prefix cache.Key
	Fn     cache.PatchFunc
}

// Apply implements Rule
func (p Patch) Apply(store *cache.Store) int {
	return store.PatchMatching(p.Prefix, p.Fn)
}

// PatchKey rewrites the single entry cached under Key, if present.
// Unlike Patch, zero-valued fields of Key are not wildcards.
type PatchKey struct {
	Key cache.Key
	Fn  cache.PatchFunc
}

// Apply implements Rule
func (p PatchKey) Apply(store *cache.Store) int {
	if store.Patch(p.Key, p.Fn) {
		return 1
	}
	return 0
}

// Invalidate marks every cached entry under Prefix stale so the next read
// refetches it
type Invalidate struct {
	Prefix cache.Key
}

// Apply implements Rule
func (i Invalidate) Apply(store *cache.Store) int {
	return store.Invalidate(i.Prefix)
}

func (p Policy) apply(store *cache.Store) int {
	n := 0
	for _, rule := range p {
		n += rule.Apply(store)
	}
	return n
}

// Page transforms. Each returns a new value and leaves current untouched;
// values of an unexpected type are returned unchanged.

func prependPost(post models.Post) cache.PatchFunc {
	return func(current interface{}) interface{} {
		page, ok := current.(*models.PostPage)
		if !ok {
			return current
		}
		out := page.Clone()
		out.Posts = append([]models.Post{post}, out.Posts...)
		out.Total++
		return out
	}
}

func replacePost(post models.Post) cache.PatchFunc {
	return func(current interface{}) interface{} {
		page, ok := current.(*models.PostPage)
		if !ok {
			return current
		}
		i := page.IndexOf(post.ID)
		if i < 0 {
			return current
		}
		out := page.Clone()
		updated := post
		// edits do not echo reactions or views back
		if updated.Reactions == nil {
			updated.Reactions = out.Posts[i].Reactions
		}
		if updated.Views == 0 {
			updated.Views = out.Posts[i].Views
		}
		out.Posts[i] = updated
		return out
	}
}

func removePost(id int64) cache.PatchFunc {
	return func(current interface{}) interface{} {
		page, ok := current.(*models.PostPage)
		if !ok {
			return current
		}
		i := page.IndexOf(id)
		if i < 0 {
			return current
		}
		out := page.Clone()
		out.Posts = append(out.Posts[:i], out.Posts[i+1:]...)
		out.Total--
		return out
	}
}

func prependComment(comment models.Comment) cache.PatchFunc {
	return func(current interface{}) interface{} {
		page, ok := current.(*models.CommentPage)
		if !ok {
			return current
		}
		out := page.Clone()
		out.Comments = append([]models.Comment{comment}, out.Comments...)
		out.Total++
		return out
	}
}

func replaceComment(comment models.Comment) cache.PatchFunc {
	return updateComment(comment.ID, func(c *models.Comment) {
		likes := c.Likes
		*c = comment
		if comment.Likes == 0 {
			c.Likes = likes
		}
	})
}

func incrementLikes(id int64) cache.PatchFunc {
	return updateComment(id, func(c *models.Comment) { c.Likes++ })
}

func updateComment(id int64, fn func(*models.Comment)) cache.PatchFunc {
	return func(current interface{}) interface{} {
		page, ok := current.(*models.CommentPage)
		if !ok {
			return current
		}
		i := page.IndexOf(id)
		if i < 0 {
			return current
		}
		out := page.Clone()
		fn(&out.Comments[i])
		return out
	}
}

func removeComment(id int64) cache.PatchFunc {
	return func(current interface{}) interface{} {
		page, ok := current.(*models.CommentPage)
		if !ok {
			return current
		}
		i := page.IndexOf(id)
		if i < 0 {
			return current
		}
		out := page.Clone()
		out.Comments = append(out.Comments[:i], out.Comments[i+1:]...)
		out.Total--
		return out
	}
}
