package models

// Reactions holds the like/dislike counters of a post
type Reactions struct {
	Likes    int `json:"likes"`
	Dislikes int `json:"dislikes"`
}

// Total returns likes plus dislikes
func (r *Reactions) Total() int {
	if r == nil {
		return 0
	}
	return r.Likes + r.Dislikes
}

// Post represents a post as served by the backend. Author is joined
// client-side from the user summaries and never sent back.
type Post struct {
	ID        int64        `json:"id"`
	Title     string       `json:"title"`
	Body      string       `json:"body"`
	UserID    int64        `json:"userId"`
	Tags      []string     `json:"tags,omitempty"`
	Reactions *Reactions   `json:"reactions,omitempty"`
	Views     int          `json:"views,omitempty"`
	Author    *UserSummary `json:"author,omitempty"`
}

// PostInput is the payload for creating or editing a post
type PostInput struct {
	Title  string   `json:"title"`
	Body   string   `json:"body"`
	UserID int64    `json:"userId"`
	Tags   []string `json:"tags,omitempty"`
}

// PostPage is one page of a post listing
type PostPage struct {
	Posts []Post `json:"posts"`
	Total int    `json:"total"`
	Skip  int    `json:"skip"`
	Limit int    `json:"limit"`
}

// Clone returns a copy whose post slice can be modified independently
func (p *PostPage) Clone() *PostPage {
	if p == nil {
		return nil
	}
	out := *p
	out.Posts = append([]Post(nil), p.Posts...)
	return &out
}

// IndexOf returns the position of the post with the given id or -1
func (p *PostPage) IndexOf(id int64) int {
	for i := range p.Posts {
		if p.Posts[i].ID == id {
			return i
		}
	}
	return -1
}

// Tag is a post tag as listed by the backend
type Tag struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}
