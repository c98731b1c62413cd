package types

// FileDescriptor is what the route layer hands to ingestion for each
// transferred file. Direct uploads carry the opaque staging name assigned by
// the upload server; HPC moves carry the path fragment under the transfer
// root where the cluster-side mover left the file.
type FileDescriptor struct {
	Name         string `json:"name"`
	OriginalName string `json:"original_name"`
	MD5          string `json:"md5,omitempty"`

	// Direct upload only.
	UploadName string `json:"upload_name,omitempty"`

	// HPC move only.
	RelativePath string `json:"relative_path,omitempty"`

	// Pairing. HPC descriptors name their mate file outright; direct-upload
	// descriptors share a client-assigned group key, two per group.
	Paired      bool   `json:"paired,omitempty"`
	SiblingName string `json:"sibling_name,omitempty"`
	PairGroup   string `json:"pair_group,omitempty"`
}
