// Package dummyjsontest provides an in-memory backend for tests.
package dummyjsontest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/steemit/postsmanager/internal/models"
)

// Server is a fake backend serving a small fixed dataset
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	posts    []models.Post
	comments []models.Comment
	users    []models.User
	tags     []string
	nextPost int64
	nextCmt  int64
	hits     map[string]int
	failures map[string]int
	gates    map[string]chan struct{}
}

// New starts a fake backend with posts posts, 3 comments on each of the first
// 5 posts and 5 users.
func New(posts int) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		tags:     []string{"history", "crime", "love"},
		hits:     make(map[string]int),
		failures: make(map[string]int),
		gates:    make(map[string]chan struct{}),
	}
	for i := 1; i <= 5; i++ {
		s.users = append(s.users, models.User{
			ID:        int64(i),
			Username:  fmt.Sprintf("user%d", i),
			Image:     fmt.Sprintf("https://img.example/%d.png", i),
			FirstName: fmt.Sprintf("First%d", i),
			LastName:  fmt.Sprintf("Last%d", i),
			Age:       20 + i,
			Email:     fmt.Sprintf("user%d@example.com", i),
		})
	}
	for i := 1; i <= posts; i++ {
		s.posts = append(s.posts, models.Post{
			ID:        int64(i),
			Title:     fmt.Sprintf("Post %d", i),
			Body:      fmt.Sprintf("Body of post %d", i),
			UserID:    int64((i-1)%5 + 1),
			Tags:      []string{s.tags[i%len(s.tags)]},
			Reactions: &models.Reactions{Likes: i, Dislikes: i % 3},
		})
	}
	s.nextPost = int64(posts) + 1
	for p := 1; p <= 5 && p <= posts; p++ {
		for j := 0; j < 3; j++ {
			s.nextCmt++
			s.comments = append(s.comments, models.Comment{
				ID:     s.nextCmt,
				Body:   fmt.Sprintf("Comment %d", s.nextCmt),
				PostID: int64(p),
				Likes:  j,
				User:   models.CommentUser{ID: int64(j + 1), Username: fmt.Sprintf("user%d", j+1)},
			})
		}
	}
	s.nextCmt++

	s.Server = httptest.NewServer(s.routes())
	return s
}

// Hits returns how many requests were received for "METHOD /path"
func (s *Server) Hits(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[route]
}

// FailNext makes the next n requests for route answer 500
func (s *Server) FailNext(route string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = n
}

// Gate blocks requests for route until the returned function is called
func (s *Server) Gate(route string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.gates[route] = ch
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.gates, route)
			s.mu.Unlock()
			close(ch)
		})
	}
}

func (s *Server) track(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		s.hits[route]++
		gate := s.gates[route]
		fail := s.failures[route] > 0
		if fail {
			s.failures[route]--
		}
		s.mu.Unlock()

		if gate != nil {
			<-gate
		}
		if fail {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "injected failure"})
			return
		}
		c.Next()
	}
}

func (s *Server) routes() http.Handler {
	r := gin.New()

	r.GET("/posts", s.track("GET /posts"), s.listPosts)
	r.GET("/posts/search", s.track("GET /posts/search"), s.searchPosts)
	r.GET("/posts/tags", s.track("GET /posts/tags"), s.listTags)
	r.GET("/posts/tag/:tag", s.track("GET /posts/tag"), s.postsByTag)
	r.POST("/posts/add", s.track("POST /posts/add"), s.addPost)
	r.PUT("/posts/:id", s.track("PUT /posts"), s.updatePost)
	r.DELETE("/posts/:id", s.track("DELETE /posts"), s.deletePost)

	r.GET("/comments/post/:id", s.track("GET /comments/post"), s.listComments)
	r.POST("/comments/add", s.track("POST /comments/add"), s.addComment)
	r.PUT("/comments/:id", s.track("PUT /comments"), s.updateComment)
	r.PATCH("/comments/:id", s.track("PATCH /comments"), s.likeComment)
	r.DELETE("/comments/:id", s.track("DELETE /comments"), s.deleteComment)

	r.GET("/users", s.track("GET /users"), s.listUsers)
	r.GET("/users/:id", s.track("GET /users/id"), s.getUser)

	return r
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid id"})
		return 0, false
	}
	return id, true
}

func (s *Server) listPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))

	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.posts)
	start := min(skip, total)
	end := total
	if limit > 0 {
		end = min(start+limit, total)
	}
	c.JSON(http.StatusOK, models.PostPage{
		Posts: append([]models.Post{}, s.posts[start:end]...),
		Total: total,
		Skip:  skip,
		Limit: end - start,
	})
}

func (s *Server) searchPosts(c *gin.Context) {
	q := strings.ToLower(c.Query("q"))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Post{}
	for _, p := range s.posts {
		if strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Body), q) {
			out = append(out, p)
		}
	}
	c.JSON(http.StatusOK, models.PostPage{Posts: out, Total: len(out), Limit: len(out)})
}

func (s *Server) listTags(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, models.Tag{Slug: t, Name: strings.ToUpper(t[:1]) + t[1:], URL: "/posts/tag/" + t})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) postsByTag(c *gin.Context) {
	tag := c.Param("tag")

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Post{}
	for _, p := range s.posts {
		for _, t := range p.Tags {
			if t == tag {
				out = append(out, p)
				break
			}
		}
	}
	c.JSON(http.StatusOK, models.PostPage{Posts: out, Total: len(out), Limit: len(out)})
}

func (s *Server) addPost(c *gin.Context) {
	var in models.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The real backend does not persist additions
	post := models.Post{ID: s.nextPost, Title: in.Title, Body: in.Body, UserID: in.UserID, Tags: in.Tags}
	s.nextPost++
	c.JSON(http.StatusCreated, post)
}

func (s *Server) updatePost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in models.PostInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.posts {
		if p.ID == id {
			p.Title, p.Body = in.Title, in.Body
			if in.Tags != nil {
				p.Tags = in.Tags
			}
			c.JSON(http.StatusOK, p)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Post with id '%d' not found", id)})
}

func (s *Server) deletePost(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.posts {
		if p.ID == id {
			c.JSON(http.StatusOK, gin.H{"id": p.ID, "isDeleted": true})
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Post with id '%d' not found", id)})
}

func (s *Server) listComments(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Comment{}
	for _, cm := range s.comments {
		if cm.PostID == id {
			out = append(out, cm)
		}
	}
	c.JSON(http.StatusOK, models.CommentPage{Comments: out, Total: len(out), Limit: len(out)})
}

func (s *Server) addComment(c *gin.Context) {
	var in models.CommentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cm := models.Comment{
		ID:     s.nextCmt,
		Body:   in.Body,
		PostID: in.PostID,
		User:   models.CommentUser{ID: in.UserID, Username: fmt.Sprintf("user%d", in.UserID)},
	}
	s.nextCmt++
	c.JSON(http.StatusCreated, cm)
}

func (s *Server) findComment(id int64) (models.Comment, bool) {
	for _, cm := range s.comments {
		if cm.ID == id {
			return cm, true
		}
	}
	return models.Comment{}, false
}

func (s *Server) updateComment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in struct {
		Body string `json:"body"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cm, found := s.findComment(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Comment with id '%d' not found", id)})
		return
	}
	cm.Body = in.Body
	c.JSON(http.StatusOK, cm)
}

func (s *Server) likeComment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var in struct {
		Likes int `json:"likes"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cm, found := s.findComment(id)
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Comment with id '%d' not found", id)})
		return
	}
	cm.Likes = in.Likes
	c.JSON(http.StatusOK, cm)
}

func (s *Server) deleteComment(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, found := s.findComment(id); !found {
		c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Comment with id '%d' not found", id)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "isDeleted": true})
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.UserSummary, 0, len(s.users))
	for i := range s.users {
		out = append(out, s.users[i].Summary())
	}
	c.JSON(http.StatusOK, models.UserSummaryPage{Users: out, Total: len(out)})
}

func (s *Server) getUser(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.ID == id {
			c.JSON(http.StatusOK, u)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("User with id '%d' not found", id)})
}
