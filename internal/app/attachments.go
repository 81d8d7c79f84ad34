package app

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/example/auditplus/internal/core/universe"
	"github.com/example/auditplus/internal/ctxutil"
	"github.com/example/auditplus/internal/ports/primary"
	"github.com/example/auditplus/internal/ports/secondary"
)

// validateAttachment checks the file name and content of an upload.
func validateAttachment(req primary.AddAttachmentRequest) error {
	if result := universe.ValidateAttachmentName(req.Filename); !result.Allowed {
		return invalid(result.Reason)
	}
	if len(req.Data) == 0 {
		return invalid(fmt.Sprintf("attachment %s is empty", req.Filename))
	}
	return nil
}

// storeAttachment validates and persists a file for a project or finding.
func storeAttachment(ctx context.Context, repo secondary.AttachmentRepository, kind string, req primary.AddAttachmentRequest) (*secondary.AttachmentRecord, error) {
	if err := validateAttachment(req); err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(req.Data)
	}

	id, err := repo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate attachment ID: %w", err)
	}

	record := &secondary.AttachmentRecord{
		ID:          id,
		Kind:        kind,
		ParentID:    req.ParentID,
		Filename:    filepath.Base(req.Filename),
		ContentType: contentType,
		Size:        int64(len(req.Data)),
		Data:        req.Data,
		UploadedBy:  ctxutil.ActorID(ctx),
	}
	if err := repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store attachment: %w", err)
	}
	return record, nil
}

func listAttachments(ctx context.Context, repo secondary.AttachmentRepository, kind, parentID string) ([]*primary.Attachment, error) {
	records, err := repo.List(ctx, kind, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	result := make([]*primary.Attachment, len(records))
	for i, r := range records {
		result[i] = recordToAttachment(r)
	}
	return result, nil
}

func recordToAttachment(r *secondary.AttachmentRecord) *primary.Attachment {
	return &primary.Attachment{
		ID:          r.ID,
		Kind:        r.Kind,
		ParentID:    r.ParentID,
		Filename:    r.Filename,
		ContentType: r.ContentType,
		Size:        r.Size,
		Data:        r.Data,
		UploadedBy:  r.UploadedBy,
		UploadedAt:  r.UploadedAt,
	}
}
