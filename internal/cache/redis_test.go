package cache

import (
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
			parts: []string{"test", "key", "with", "many", "parts"},
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

			// Hash should be consistent
			if hashed1 != hashed2 {
				t.Errorf("HashKey() should be consistent, got %s and %s", hashed1, hashed2)
			}

			// Hash should be 32 characters (MD5 hex)
			if len(hashed1) != 32 {
				t.Errorf("HashKey() should return 32 character hex string, got length %d", len(hashed1))
			}
		})
	}
}

func TestHashKeyOrderSensitive(t *testing.T) {
	if HashKey("a", "b") == HashKey("b", "a") {
		t.Error("HashKey() should depend on part order")
	}
}

func TestCache_NamespaceKey(t *testing.T) {
	cache := &Cache{}

	tests := []struct {
		name     string
		key      string
		expected string
	}{
		{
			name:     "simple key",
			key:      "test",
			expected: "relations:test",
		},
		{
			name:     "key with colon",
			key:      "test:key",
			expected: "relations:test:key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cache.NamespaceKey(tt.key); got != tt.expected {
				t.Errorf("NamespaceKey(%q) = %q, want %q", tt.key, got, tt.expected)
			}
		})
	}
}

func TestFollowerCountKey(t *testing.T) {
	tests := []struct {
		name       string
		targetType string
		targetID   int64
		expected   string
	}{
		{"user target", "user", 42, "followers:user:42"},
		{"group target", "group", 7, "followers:group:7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FollowerCountKey(tt.targetType, tt.targetID); got != tt.expected {
				t.Errorf("FollowerCountKey(%q, %d) = %q, want %q", tt.targetType, tt.targetID, got, tt.expected)
			}
		})
	}
}

func TestNilCacheIsSafe(t *testing.T) {
	var cache *Cache

	if _, err := cache.Get("key"); err != ErrCacheDisabled {
		t.Errorf("Get() on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := cache.Set("key", "value", 0); err != ErrCacheDisabled {
		t.Errorf("Set() on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := cache.Delete("key"); err != ErrCacheDisabled {
		t.Errorf("Delete() on nil cache = %v, want ErrCacheDisabled", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("Close() on nil cache = %v, want nil", err)
	}
}
