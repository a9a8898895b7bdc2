package git

import "errors"

var (
	// ErrRepositoryNotFound is returned when no repository exists at the given root.
	ErrRepositoryNotFound = errors.New("repository not found")
	// ErrReferenceNotFound is returned when a reference cannot be resolved to a commit.
	ErrReferenceNotFound = errors.New("reference not found")
	// ErrPathNotFound is returned when a path has no file entry in a commit's tree.
	ErrPathNotFound = errors.New("path not found at commit")
	// ErrObjectFileMissing is returned when a blob has no loose object file on disk.
	ErrObjectFileMissing = errors.New("object file missing")
)
