package mutation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/steemit/postsmanager/internal/cache"
	"github.com/steemit/postsmanager/internal/dummyjson"
	"github.com/steemit/postsmanager/internal/dummyjson/dummyjsontest"
	"github.com/steemit/postsmanager/internal/models"
	"github.com/steemit/postsmanager/internal/session"
	"github.com/steemit/postsmanager/pkg/config"
)

type memJournal struct {
	mu      sync.Mutex
	records []*models.MutationRecord
}

func (j *memJournal) Record(_ context.Context, rec *models.MutationRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.records = append(j.records, rec)
	return nil
}

type fixture struct {
	pipeline *Pipeline
	store    *cache.Store
	session  *session.Store
	journal  *memJournal
	srv      *dummyjsontest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	srv := dummyjsontest.New(25)
	t.Cleanup(srv.Close)

	client, err := dummyjson.New(&config.BackendConfig{URL: srv.URL, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("dummyjson.New() error: %v", err)
	}
	f := &fixture{
		store:   cache.NewStore(nil),
		session: session.New(1),
		journal: &memJournal{},
		srv:     srv,
	}
	f.pipeline = New(client, f.store, f.session, f.journal)
	return f
}

var listKey = cache.Key{Kind: cache.KindPosts, Limit: 10}

func seedPosts(store *cache.Store, key cache.Key, ids ...int64) {
	page := &models.PostPage{Total: 251, Limit: len(ids)}
	for _, id := range ids {
		page.Posts = append(page.Posts, models.Post{ID: id, Title: "seed", Reactions: &models.Reactions{Likes: 1}})
	}
	store.Set(key, page)
}

func postsAt(t *testing.T, store *cache.Store, key cache.Key) *models.PostPage {
	t.Helper()
	e, ok := store.Get(key)
	if !ok {
		t.Fatalf("no entry for %s", key)
	}
	return e.Value.(*models.PostPage)
}

func commentsAt(t *testing.T, store *cache.Store, postID int64) *models.CommentPage {
	t.Helper()
	e, ok := store.Get(cache.Key{Kind: cache.KindComments, ID: postID})
	if !ok {
		t.Fatalf("no comments for post %d", postID)
	}
	return e.Value.(*models.CommentPage)
}

func TestMutation_Transitions(t *testing.T) {
	m := newMutation(KindPost, OpCreate, 0)
	now := time.Now()

	if err := m.advance(Succeeded, now); err == nil {
		t.Error("idle -> succeeded must be rejected")
	}
	if err := m.advance(InFlight, now); err != nil {
		t.Fatalf("idle -> in_flight: %v", err)
	}
	if err := m.advance(Failed, now); err != nil {
		t.Fatalf("in_flight -> failed: %v", err)
	}
	if !m.State.Terminal() {
		t.Error("failed is terminal")
	}
	if err := m.advance(InFlight, now); err == nil {
		t.Error("no retry from a terminal state")
	}
}

func TestCreatePost(t *testing.T) {
	f := newFixture(t)
	seedPosts(f.store, listKey, 1, 2, 3)
	f.session.Open(session.AddPost())
	f.session.SetNewPost(session.PostForm{Title: "draft", Body: "text", UserID: 3})

	post, err := f.pipeline.CreatePost(context.Background(), listKey, models.PostInput{Title: "new", Body: "b", UserID: 3})
	if err != nil {
		t.Fatalf("CreatePost() error: %v", err)
	}
	if post.ID != 26 {
		t.Errorf("expected server-assigned id 26, got %d", post.ID)
	}

	page := postsAt(t, f.store, listKey)
	if page.Total != 252 || page.Posts[0].ID != 26 || len(page.Posts) != 4 {
		t.Errorf("unexpected page: total %d, first %d, len %d", page.Total, page.Posts[0].ID, len(page.Posts))
	}
	if f.session.Overlay().Kind != session.OverlayNone {
		t.Error("add-post overlay should close")
	}
	if f.session.NewPost() != (session.PostForm{UserID: 1}) {
		t.Errorf("form should reset, got %+v", f.session.NewPost())
	}
}

func TestCreatePost_UncachedTarget(t *testing.T) {
	f := newFixture(t)

	if _, err := f.pipeline.CreatePost(context.Background(), listKey, models.PostInput{Title: "x", UserID: 1}); err != nil {
		t.Fatalf("CreatePost() error: %v", err)
	}
	if _, ok := f.store.Get(listKey); ok {
		t.Error("patching an absent entry must not create it")
	}
}

func TestCreatePost_OnlyTargetPage(t *testing.T) {
	f := newFixture(t)
	secondKey := cache.Key{Kind: cache.KindPosts, Skip: 10, Limit: 10}
	tagKey := cache.Key{Kind: cache.KindPosts, Tag: "love"}
	seedPosts(f.store, listKey, 1, 2, 3)
	seedPosts(f.store, secondKey, 11, 12, 13)
	seedPosts(f.store, tagKey, 4, 5)

	if _, err := f.pipeline.CreatePost(context.Background(), listKey, models.PostInput{Title: "new", UserID: 1}); err != nil {
		t.Fatalf("CreatePost() error: %v", err)
	}

	if page := postsAt(t, f.store, listKey); page.Posts[0].ID != 26 || page.Total != 252 {
		t.Errorf("target page: first %d, total %d", page.Posts[0].ID, page.Total)
	}
	tests := []struct {
		name  string
		key   cache.Key
		first int64
		len   int
	}{
		{"same limit other skip", secondKey, 11, 3},
		{"tag page", tagKey, 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := postsAt(t, f.store, tt.key)
			if page.Posts[0].ID != tt.first || len(page.Posts) != tt.len || page.Total != 251 {
				t.Errorf("page changed: first %d, len %d, total %d", page.Posts[0].ID, len(page.Posts), page.Total)
			}
		})
	}
}

func TestCreateComment_OnlyOwningPost(t *testing.T) {
	f := newFixture(t)
	seedComments(f.store, 1, models.Comment{ID: 1, PostID: 1})
	seedComments(f.store, 2, models.Comment{ID: 5, PostID: 2})

	if _, err := f.pipeline.CreateComment(context.Background(), models.CommentInput{Body: "hi", PostID: 1, UserID: 2}); err != nil {
		t.Fatalf("CreateComment() error: %v", err)
	}
	if page := commentsAt(t, f.store, 1); page.Total != 2 {
		t.Errorf("owning post total = %d, want 2", page.Total)
	}
	if page := commentsAt(t, f.store, 2); page.Total != 1 || len(page.Comments) != 1 {
		t.Errorf("other post comments changed: %+v", page)
	}
}

func TestUpdatePost_AllPages(t *testing.T) {
	f := newFixture(t)
	tagKey := cache.Key{Kind: cache.KindPosts, Tag: "love"}
	searchKey := cache.Key{Kind: cache.KindPostSearch, Query: "post"}
	seedPosts(f.store, listKey, 1, 2, 3)
	seedPosts(f.store, tagKey, 3, 6)
	seedPosts(f.store, searchKey, 2, 3)
	f.session.Open(session.EditPost(&models.Post{ID: 3}))

	if _, err := f.pipeline.UpdatePost(context.Background(), 3, models.PostInput{Title: "edited", Body: "b"}); err != nil {
		t.Fatalf("UpdatePost() error: %v", err)
	}

	for _, key := range []cache.Key{listKey, tagKey, searchKey} {
		page := postsAt(t, f.store, key)
		i := page.IndexOf(3)
		if i < 0 || page.Posts[i].Title != "edited" {
			t.Errorf("%s: post 3 not replaced", key)
		}
		if page.Total != 251 {
			t.Errorf("%s: total changed to %d", key, page.Total)
		}
	}
	if got := postsAt(t, f.store, listKey).Posts; got[2].ID != 3 {
		t.Error("order must be preserved")
	}
	if f.session.Overlay().Kind != session.OverlayNone {
		t.Error("edit overlay should close")
	}
}

func TestDeletePost(t *testing.T) {
	f := newFixture(t)
	otherKey := cache.Key{Kind: cache.KindPosts, Skip: 10, Limit: 10}
	seedPosts(f.store, listKey, 1, 2, 3)
	seedPosts(f.store, otherKey, 11, 12)

	if err := f.pipeline.DeletePost(context.Background(), 2); err != nil {
		t.Fatalf("DeletePost() error: %v", err)
	}

	page := postsAt(t, f.store, listKey)
	if page.IndexOf(2) >= 0 || page.Total != 250 {
		t.Errorf("post 2 should be gone with total 250, got %+v", page)
	}
	if other := postsAt(t, f.store, otherKey); other.Total != 251 {
		t.Errorf("pages without the post keep their total, got %d", other.Total)
	}
}

func TestMutationFailure(t *testing.T) {
	f := newFixture(t)
	seedPosts(f.store, listKey, 1, 2, 3)
	f.session.Open(session.AddPost())
	f.srv.FailNext("POST /posts/add", 1)

	var settled []Mutation
	f.pipeline.OnSettled(func(m Mutation) { settled = append(settled, m) })

	_, err := f.pipeline.CreatePost(context.Background(), listKey, models.PostInput{Title: "x", UserID: 1})
	if err == nil {
		t.Fatal("expected error")
	}

	if page := postsAt(t, f.store, listKey); page.Total != 251 || len(page.Posts) != 3 {
		t.Error("cache must be unchanged after a failure")
	}
	if f.session.Overlay().Kind != session.OverlayAddPost {
		t.Error("overlay must stay open after a failure")
	}
	if len(settled) != 1 || settled[0].State != Failed || settled[0].Err == nil {
		t.Fatalf("unexpected settled mutations %+v", settled)
	}
	if len(f.journal.records) != 1 || f.journal.records[0].ErrorMessage() == "" {
		t.Error("failure should be journaled with its error")
	}
	if f.journal.records[0].ID != settled[0].ID.String() {
		t.Error("journal row should carry the mutation id")
	}
}

func TestDeletePost_NotFound(t *testing.T) {
	f := newFixture(t)
	seedPosts(f.store, listKey, 1, 2, 3)

	err := f.pipeline.DeletePost(context.Background(), 999)
	if !errors.Is(err, dummyjson.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if page := postsAt(t, f.store, listKey); page.Total != 251 {
		t.Error("cache must be unchanged")
	}
}

func seedComments(store *cache.Store, postID int64, comments ...models.Comment) {
	store.Set(cache.Key{Kind: cache.KindComments, ID: postID}, &models.CommentPage{Comments: comments, Total: len(comments)})
}

func TestCreateComment(t *testing.T) {
	f := newFixture(t)
	seedComments(f.store, 1, models.Comment{ID: 1, PostID: 1}, models.Comment{ID: 2, PostID: 1})
	f.session.Open(session.AddComment(1))
	f.session.SetNewComment(session.CommentForm{Body: "draft", PostID: 1, UserID: 2})

	c, err := f.pipeline.CreateComment(context.Background(), models.CommentInput{Body: "hi", PostID: 1, UserID: 2})
	if err != nil {
		t.Fatalf("CreateComment() error: %v", err)
	}

	page := commentsAt(t, f.store, 1)
	if page.Comments[0].ID != c.ID || page.Total != 3 {
		t.Errorf("unexpected comments %+v", page)
	}
	if f.session.Overlay().Kind != session.OverlayNone {
		t.Error("add-comment overlay should close")
	}
	if f.session.NewComment().Body != "" {
		t.Error("comment form should reset")
	}
}

func TestUpdateComment(t *testing.T) {
	f := newFixture(t)
	seedComments(f.store, 1, models.Comment{ID: 1, PostID: 1, Body: "old", Likes: 4}, models.Comment{ID: 2, PostID: 1})

	if _, err := f.pipeline.UpdateComment(context.Background(), 1, "new body"); err != nil {
		t.Fatalf("UpdateComment() error: %v", err)
	}

	page := commentsAt(t, f.store, 1)
	if page.Comments[0].Body != "new body" || page.Comments[0].Likes != 4 {
		t.Errorf("unexpected comment %+v", page.Comments[0])
	}
}

func TestDeleteComment(t *testing.T) {
	tests := []struct {
		name      string
		postID    int64
		wantStale bool
	}{
		{"known post", 1, false},
		{"unknown post", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			seedComments(f.store, 1, models.Comment{ID: 1, PostID: 1}, models.Comment{ID: 2, PostID: 1})
			seedComments(f.store, 2, models.Comment{ID: 4, PostID: 2})

			if err := f.pipeline.DeleteComment(context.Background(), 2, tt.postID); err != nil {
				t.Fatalf("DeleteComment() error: %v", err)
			}

			e, _ := f.store.Get(cache.Key{Kind: cache.KindComments, ID: 1})
			if e.Stale != tt.wantStale {
				t.Errorf("stale = %v, want %v", e.Stale, tt.wantStale)
			}
			page := e.Value.(*models.CommentPage)
			if tt.wantStale {
				if page.Total != 2 {
					t.Error("invalidation keeps the stale value")
				}
				return
			}
			if page.IndexOf(2) >= 0 || page.Total != 1 {
				t.Errorf("comment 2 should be removed, got %+v", page)
			}
		})
	}
}

func TestLikeComment_Accumulates(t *testing.T) {
	f := newFixture(t)
	seedComments(f.store, 1, models.Comment{ID: 2, PostID: 1, Likes: 1})

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// both likes start from the same rendered count
			if _, err := f.pipeline.LikeComment(context.Background(), 2, 1, 1); err != nil {
				t.Errorf("LikeComment() error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := commentsAt(t, f.store, 1).Comments[0].Likes; got != 3 {
		t.Errorf("likes = %d, want 3", got)
	}
	if hits := f.srv.Hits("PATCH /comments"); hits != 2 {
		t.Errorf("expected 2 backend calls, got %d", hits)
	}
	if len(f.journal.records) != 2 {
		t.Errorf("expected 2 journal rows, got %d", len(f.journal.records))
	}
}
