package session

import "github.com/steemit/postsmanager/internal/models"

// OverlayKind identifies the single dialog or modal currently open
type OverlayKind string

const (
	OverlayNone        OverlayKind = ""
	OverlayAddPost     OverlayKind = "addPost"
	OverlayEditPost    OverlayKind = "editPost"
	OverlayPostDetail  OverlayKind = "postDetail"
	OverlayAddComment  OverlayKind = "addComment"
	OverlayEditComment OverlayKind = "editComment"
	OverlayUserProfile OverlayKind = "userProfile"
)

// ParseOverlayKind returns the kind named by raw and whether it is known
func ParseOverlayKind(raw string) (OverlayKind, bool) {
	switch k := OverlayKind(raw); k {
	case OverlayNone, OverlayAddPost, OverlayEditPost, OverlayPostDetail,
		OverlayAddComment, OverlayEditComment, OverlayUserProfile:
		return k, true
	}
	return OverlayNone, false
}

// Overlay is the active overlay. Payload depends on Kind:
//
//	OverlayEditPost, OverlayPostDetail  *models.Post
//	OverlayAddComment                   int64 (post id)
//	OverlayEditComment                  *models.Comment
//	OverlayUserProfile                  *models.User
//
// OverlayNone and OverlayAddPost carry no payload.
type Overlay struct {
	Kind    OverlayKind `json:"kind"`
	Payload interface{} `json:"payload,omitempty"`
}

func AddPost() Overlay { return Overlay{Kind: OverlayAddPost} }

func EditPost(post *models.Post) Overlay {
	return Overlay{Kind: OverlayEditPost, Payload: post}
}

func PostDetail(post *models.Post) Overlay {
	return Overlay{Kind: OverlayPostDetail, Payload: post}
}

func AddComment(postID int64) Overlay {
	return Overlay{Kind: OverlayAddComment, Payload: postID}
}

func EditComment(comment *models.Comment) Overlay {
	return Overlay{Kind: OverlayEditComment, Payload: comment}
}

func UserProfile(user *models.User) Overlay {
	return Overlay{Kind: OverlayUserProfile, Payload: user}
}

// Post returns the post payload of an edit or detail overlay
func (o Overlay) Post() (*models.Post, bool) {
	p, ok := o.Payload.(*models.Post)
	return p, ok && (o.Kind == OverlayEditPost || o.Kind == OverlayPostDetail)
}

// Comment returns the comment payload of an edit-comment overlay
func (o Overlay) Comment() (*models.Comment, bool) {
	c, ok := o.Payload.(*models.Comment)
	return c, ok && o.Kind == OverlayEditComment
}

// PostID returns the target post of an add-comment overlay
func (o Overlay) PostID() (int64, bool) {
	id, ok := o.Payload.(int64)
	return id, ok && o.Kind == OverlayAddComment
}

// User returns the profile payload of a user overlay
func (o Overlay) User() (*models.User, bool) {
	u, ok := o.Payload.(*models.User)
	return u, ok && o.Kind == OverlayUserProfile
}
