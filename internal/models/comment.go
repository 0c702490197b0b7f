package models

// CommentUser is the user summary embedded in a comment
type CommentUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
}

// Comment belongs to exactly one post
type Comment struct {
	ID     int64       `json:"id"`
	Body   string      `json:"body"`
	PostID int64       `json:"postId"`
	Likes  int         `json:"likes"`
	User   CommentUser `json:"user"`
}

// CommentInput is the payload for creating a comment
type CommentInput struct {
	Body   string `json:"body"`
	PostID int64  `json:"postId"`
	UserID int64  `json:"userId"`
}

// CommentPage holds the comments of one post
type CommentPage struct {
	Comments []Comment `json:"comments"`
	Total    int       `json:"total"`
	Skip     int       `json:"skip"`
	Limit    int       `json:"limit"`
}

// Clone returns a copy whose comment slice can be modified independently
func (p *CommentPage) Clone() *CommentPage {
	if p == nil {
		return nil
	}
	out := *p
	out.Comments = append([]Comment(nil), p.Comments...)
	return &out
}

// IndexOf returns the position of the comment with the given id or -1
func (p *CommentPage) IndexOf(id int64) int {
	for i := range p.Comments {
		if p.Comments[i].ID == id {
			return i
		}
	}
	return -1
}
