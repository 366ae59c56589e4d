package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureFoldersExist(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "static")

	// 空目录名表示未配置，不应退出
	EnsureFoldersExist("", dir)

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Expected %s to be created: %v", dir, err)
	}
	if !info.IsDir() {
		t.Errorf("Expected %s to be a directory", dir)
	}
}
