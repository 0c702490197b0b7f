package cache

import (
	"errors"
	"strings"
	"testing"
)

func TestHashKey(t *testing.T) {
	tests := []struct {
		name  string
		parts []string
	}{
		{
			name:  "single part",
			parts: []string{"test"},
		},
		{
			name:  "multiple parts",
			parts: []string{"posts", "tag", "love", "10"},
		},
		{
			name:  "empty parts",
			parts: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hashed1 := HashKey(tt.parts...)
			hashed2 := HashKey(tt.parts...)

			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}

	if HashKey("ab", "c") == HashKey("a", "bc") {
		t.Error("HashKey() must keep part boundaries")
	}
}

func TestRedis_NamespaceKey(t *testing.T) {
	mirror := &Redis{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			key:      "test",
			expected: "postsmanager:test",
		},
		{
			name:     "key with colon",
			key:      "posts:abc",
			expected: "postsmanager:posts:abc",
		},
		{
			name:     "empty key",
			key:      "",
			expected: "postsmanager:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := mirror.namespaceKey(tt.key)
			if result != tt.expected {
				t.Errorf("namespaceKey() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMirrorKey(t *testing.T) {
	a := mirrorKey(Key{Kind: KindPosts, Skip: 10, Limit: 10})
	b := mirrorKey(Key{Kind: KindPosts, Skip: 20, Limit: 10})

	if !strings.HasPrefix(a, "posts:") {
		t.Errorf("mirrorKey() = %q, want posts: prefix", a)
	}
	if a == b {
		t.Error("different keys must map to different mirror keys")
	}
}

func TestRedis_Disabled(t *testing.T) {
	var mirror *Redis

	if err := mirror.SetJSON("k", 1); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("SetJSON() error = %v, want ErrCacheDisabled", err)
	}
	var out int
	if err := mirror.GetJSON("k", &out); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("GetJSON() error = %v, want ErrCacheDisabled", err)
	}
	if _, err := mirror.DeletePrefix("posts:"); !errors.Is(err, ErrCacheDisabled) {
		t.Errorf("DeletePrefix() error = %v, want ErrCacheDisabled", err)
	}
	if err := mirror.Close(); err != nil {
		t.Errorf("Close() on disabled mirror should be nil, got %v", err)
	}
}
