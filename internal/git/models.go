package git

import (
	"strings"
	"time"
)

// DefaultMaxDepth is the number of commits inspected per file when no
// explicit bound is configured.
const DefaultMaxDepth = 1000

// CommitInfo represents the metadata of a Git commit read from the store.
type CommitInfo struct {
	SHA     string
	When    time.Time
	Author  AuthorInfo
	Message string
	Parents []string
}

// Subject returns the first line of the commit message.
func (c CommitInfo) Subject() string {
	if idx := strings.IndexByte(c.Message, '\n'); idx != -1 {
		return c.Message[:idx]
	}
	return c.Message
}

// IsRoot reports whether the commit has no parents.
func (c CommitInfo) IsRoot() bool {
	return len(c.Parents) == 0
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// ChangeKind represents how a path changed between a commit and its first parent.
type ChangeKind int

const (
	ChangeKindAdded ChangeKind = iota
	ChangeKindModified
	ChangeKindDeleted
	ChangeKindRenamed
)

// String returns a string representation of the change kind.
func (k ChangeKind) String() string {
	switch k {
	case ChangeKindAdded:
		return "added"
	case ChangeKindModified:
		return "modified"
	case ChangeKindDeleted:
		return "deleted"
	case ChangeKindRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// HistoryEntry is one commit that touched a tracked path.
type HistoryEntry struct {
	Commit  CommitInfo
	Kind    ChangeKind
	Path    string
	OldPath string // For renames
}

// RawBlob is the content of a file at one commit.
type RawBlob struct {
	Hash string
	Data []byte
}

// RawVersion pairs a commit with the blob of the tracked file at that commit.
type RawVersion struct {
	Commit CommitInfo
	Path   string
	Blob   RawBlob
}

// HistoryOptions configures a per-file history resolution.
type HistoryOptions struct {
	// MaxDepth bounds the number of commits inspected across the whole
	// rename chain. Zero means DefaultMaxDepth.
	MaxDepth int
	// BlobConcurrency bounds parallel blob fetches. Zero means 8.
	BlobConcurrency int
	RenameDetect    RenameDetectMode
	// OnSkip is called for every entry dropped because its blob could not
	// be read. It may be called from several goroutines at once.
	OnSkip func(entry HistoryEntry, err error)
	// OnWalkError is called for commits the walker could not classify.
	OnWalkError func(sha string, err error)
}

func (o HistoryOptions) maxDepth() int {
	if o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o HistoryOptions) blobConcurrency() int {
	if o.BlobConcurrency <= 0 {
		return 8
	}
	return o.BlobConcurrency
}
