package primary

// AddAttachmentRequest contains parameters for uploading an attachment.
// ParentID is a universe project ID or a finding ID depending on the service.
type AddAttachmentRequest struct {
	ParentID    string
	Kind        string // finding or response; ignored for universe projects
	Filename    string
	ContentType string
	Data        []byte
}

// Attachment is an uploaded file. Data is only populated by single-item reads.
type Attachment struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	ParentID    string `json:"parent_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size"`
	Data        []byte `json:"-"`
	UploadedBy  string `json:"uploaded_by,omitempty"`
	UploadedAt  string `json:"uploaded_at,omitempty"`
}
