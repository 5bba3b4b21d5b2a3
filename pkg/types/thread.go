// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the shared data model for the export pipeline.
package types

// ThreadMeta describes a Quip thread (document) as reported by the remote
// service. It carries no body content; the orchestrator fetches HTML
// separately and only for documents that need export.
type ThreadMeta struct {
	// ID is the globally unique thread identifier.
	ID string `json:"id" yaml:"id"`

	// Title is the document title as shown in Quip.
	Title string `json:"title" yaml:"title"`

	// UpdatedUsec is the remote last-modified timestamp in microseconds.
	// It is monotonically non-decreasing per thread and assigned by the
	// service. Zero means the service reported no timestamp; change
	// detection then falls back to a content hash.
	UpdatedUsec int64 `json:"updated_usec" yaml:"updated_usec"`

	// Link is the thread's web URL, when reported.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`

	// FolderPath is the "/"-joined slug path of folder titles below the
	// export root. Empty at the root or when structure preservation is off.
	FolderPath string `json:"folder_path,omitempty" yaml:"folder_path,omitempty"`
}

// FolderNode is one folder in the remote folder graph with its direct
// children. Folders form a DAG, not a strict tree: a folder or thread may
// be placed under more than one parent, and cyclic references occur.
// Nodes are rebuilt from remote data on every run and never persisted.
type FolderNode struct {
	ID        string
	Title     string
	FolderIDs []string
	ThreadIDs []string
}
