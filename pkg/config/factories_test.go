package config

import (
	"context"
	"testing"
)

func TestCreateContentStore_Filesystem(t *testing.T) {
	cfg := &StaticConfig{
		Type: "filesystem",
		Filesystem: map[string]any{
			"root": t.TempDir(),
		},
	}

	store, err := CreateContentStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create filesystem store: %v", err)
	}
	if store == nil {
		t.Fatal("Expected store, got nil")
	}
}

func TestCreateContentStore_FilesystemMissingRoot(t *testing.T) {
	cfg := &StaticConfig{
		Type:       "filesystem",
		Filesystem: map[string]any{},
	}

	if _, err := CreateContentStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for missing root, got nil")
	}
}

func TestCreateContentStore_FilesystemNonexistentRoot(t *testing.T) {
	cfg := &StaticConfig{
		Type: "filesystem",
		Filesystem: map[string]any{
			"root": "/nonexistent/static/root",
		},
	}

	if _, err := CreateContentStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for nonexistent root, got nil")
	}
}

func TestCreateContentStore_Memory(t *testing.T) {
	cfg := &StaticConfig{Type: "memory"}

	store, err := CreateContentStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Failed to create memory store: %v", err)
	}
	if store == nil {
		t.Fatal("Expected store, got nil")
	}
}

func TestCreateContentStore_S3MissingBucket(t *testing.T) {
	cfg := &StaticConfig{
		Type: "s3",
		S3: map[string]any{
			"region": "us-east-1",
		},
	}

	if _, err := CreateContentStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for missing bucket, got nil")
	}
}

func TestCreateContentStore_UnknownType(t *testing.T) {
	cfg := &StaticConfig{Type: "gopher"}

	if _, err := CreateContentStore(context.Background(), cfg); err == nil {
		t.Fatal("Expected error for unknown store type, got nil")
	}
}
