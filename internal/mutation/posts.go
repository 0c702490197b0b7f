package mutation

import (
	"context"

	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/session"
)

// postPages covers every cached post listing: base, tag and search pages
var postPages = []cache.Key{cache.Prefix(cache.KindPosts), cache.Prefix(cache.KindPostSearch)}

func patchPostPages(fn cache.PatchFunc) Policy {
	policy := make(Policy, 0, len(postPages))
	for _, prefix := range postPages {
		policy = append(policy, Patch{Prefix: prefix, Fn: fn})
	}
	return policy
}

// CreatePost adds a post and prepends it to the page cached under target.
// On success the add-post overlay closes and the new-post form resets.
func (p *Pipeline) CreatePost(ctx context.Context, target cache.Key, in models.PostInput) (*models.Post, error) {
	m := newMutation(KindPost, OpCreate, 0)
	res, err := p.run(ctx, m, step{
		call: func(ctx context.Context) (interface{}, error) {
			return p.backend.AddPost(ctx, in)
		},
		policy: func(result interface{}) Policy {
			return Policy{PatchKey{Key: target, Fn: prependPost(*result.(*models.Post))}}
		},
		closes:  session.OverlayAddPost,
		onReset: Dialogs.ResetNewPost,
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.Post), nil
}

// UpdatePost edits a post and replaces it in every cached post page,
// keeping order and totals
func (p *Pipeline) UpdatePost(ctx context.Context, id int64, in models.PostInput) (*models.Post, error) {
	m := newMutation(KindPost, OpUpdate, id)
	res, err := p.run(ctx, m, step{
		call: func(ctx context.Context) (interface{}, error) {
			return p.backend.UpdatePost(ctx, id, in)
		},
		policy: func(result interface{}) Policy {
			post := *result.(*models.Post)
			post.ID = id
			return patchPostPages(replacePost(post))
		},
		closes: session.OverlayEditPost,
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.Post), nil
}

// DeletePost removes a post from every cached post page that holds it
func (p *Pipeline) DeletePost(ctx context.Context, id int64) error {
	m := newMutation(KindPost, OpDelete, id)
	_, err := p.run(ctx, m, step{
		call: func(ctx context.Context) (interface{}, error) {
			return nil, p.backend.DeletePost(ctx, id)
		},
		policy: func(interface{}) Policy {
			return patchPostPages(removePost(id))
		},
	})
	return err
}
