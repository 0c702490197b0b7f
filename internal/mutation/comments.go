package mutation

import (
	"context"

	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/session"
)

func commentsOf(postID int64) cache.Key {
	if postID <= 0 {
		return cache.Prefix(cache.KindComments)
	}
	return cache.Key{Kind: cache.KindComments, ID: postID}
}

// CreateComment adds a comment and prepends it to its post's cached
// comments. On success the add-comment overlay closes and the form resets.
func (p *Pipeline) CreateComment(ctx context.Context, in models.CommentInput) (*models.Comment, error) {
	m := newMutation(KindComment, OpCreate, in.PostID)
	res, err := p.run(ctx, m, step{
		call: func(ctx context.Context) (interface{}, error) {
			return p.backend.AddComment(ctx, in)
		},
		policy: func(result interface{}) Policy {
			comment := *result.(*models.Comment)
			if comment.PostID == 0 {
				comment.PostID = in.PostID
			}
			return Policy{PatchKey{Key: cache.Key{Kind: cache.KindComments, ID: in.PostID}, Fn: prependComment(comment)}}
		},
		closes:  session.OverlayAddComment,
		onReset: Dialogs.ResetNewComment,
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.Comment), nil
}

// UpdateComment edits a comment body and replaces it in place in every
// cached comment page containing it
func (p *Pipeline) UpdateComment(ctx context.Context, id int64, body string) (*models.Comment, error) {
	m := newMutation(KindComment, OpUpdate, id)
	res, err := p.run(ctx, m, step{
		call: func(ctx context.Context) (interface{}, error) {
			return p.backend.UpdateComment(ctx, id, body)
		},
		policy: func(result interface{}) Policy {
			comment := *result.(*models.Comment)
			comment.ID = id
			return Policy{Patch{Prefix: cache.Prefix(cache.KindComments), Fn: replaceComment(comment)}}
		},
		closes: session.OverlayEditComment,
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.Comment), nil
}

// DeleteComment removes a comment. With a known postID the comment is
// dropped from that post's cached page; with postID 0 every cached comment
// page is invalidated instead.
func (p *Pipeline) DeleteComment(ctx context.Context, id, postID int64) error {
	m := newMutation(KindComment, OpDelete, id)
	_, err := p.run(ctx, m, step{
		call: func(ctx context.Context) (interface{}, error) {
			return nil, p.backend.DeleteComment(ctx, id)
		},
		policy: func(interface{}) Policy {
			if postID <= 0 {
				return Policy{Invalidate{Prefix: cache.Prefix(cache.KindComments)}}
			}
			return Policy{Patch{Prefix: commentsOf(postID), Fn: removeComment(id)}}
		},
	})
	return err
}

// LikeComment sends priorLikes+1 to the backend. On success each cached
// copy gets one more like than it currently holds, so concurrent likes
// accumulate whatever order their responses arrive in.
func (p *Pipeline) LikeComment(ctx context.Context, id, postID int64, priorLikes int) (*models.Comment, error) {
	m := newMutation(KindComment, OpLike, id)
	res, err := p.run(ctx, m, step{
		call: func(ctx context.Context) (interface{}, error) {
			return p.backend.LikeComment(ctx, id, priorLikes+1)
		},
		policy: func(interface{}) Policy {
			return Policy{Patch{Prefix: commentsOf(postID), Fn: incrementLikes(id)}}
		},
	})
	if err != nil {
		return nil, err
	}
	return res.(*models.Comment), nil
}
