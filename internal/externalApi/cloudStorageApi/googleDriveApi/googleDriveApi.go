package googleDriveApi

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path/filepath"
	"time"

	"github.com/KotFed0t/portfolio_tracker/config"
	"github.com/KotFed0t/portfolio_tracker/utils"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const downloadLinkTemplate = "https://drive.google.com/file/d/%s/view"

// GoogleDriveApi stores exports that are too large to be sent through telegram.
type GoogleDriveApi struct {
	srv *drive.Service
	cfg *config.Config
}

// New creates the Drive client. opts are appended after the credentials from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...option.ClientOption) (*GoogleDriveApi, error) {
	if cfg.GoogleDrive.CredentialsFile != "" {
		opts = append([]option.ClientOption{option.WithCredentialsFile(cfg.GoogleDrive.CredentialsFile)}, opts...)
	}

	srv, err := drive.NewService(ctx, opts...)
	if err != nil {
		slog.Error("failed on drive.NewService", slog.String("err", err.Error()))
		return nil, fmt.Errorf("drive.NewService: %w", err)
	}
	return &GoogleDriveApi{srv: srv, cfg: cfg}, nil
}

// UploadFile uploads the file and shares it with anyone holding the link.
func (a *GoogleDriveApi) UploadFile(ctx context.Context, reader io.Reader, filename string) (downloadLink string, err error) {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.UploadFile"

	slog.Debug("UploadFile start", slog.String("rqID", rqID), slog.String("op", op), slog.String("filename", filename))

	fileMeta := &drive.File{
		Name:     filename,
		MimeType: mime.TypeByExtension(filepath.Ext(filename)),
	}

	// Media uploads in chunks and retries failed chunks on its own.
	uploadedFile, err := a.srv.Files.
		Create(fileMeta).
		Media(reader).
		Context(ctx).
		Do()
	if err != nil {
		slog.Error("failed on uploading file to google drive", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	perm := &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}

	_, err = a.srv.Permissions.Create(uploadedFile.Id, perm).Context(ctx).Do()
	if err != nil {
		slog.Error("failed on sharing uploaded file", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return "", err
	}

	slog.Debug("UploadFile completed", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", uploadedFile.Id))

	return fmt.Sprintf(downloadLinkTemplate, uploadedFile.Id), nil
}

// DeleteOldFiles removes exports older than GoogleDrive.FileTTL.
func (a *GoogleDriveApi) DeleteOldFiles(ctx context.Context) error {
	rqID := utils.GetRequestIDFromCtx(ctx)
	op := "GoogleDriveApi.DeleteOldFiles"

	slog.Debug("DeleteOldFiles start", slog.String("rqID", rqID), slog.String("op", op))

	deadline := time.Now().Add(-a.cfg.GoogleDrive.FileTTL)
	var oldFileIDs []string
	total := 0

	err := a.srv.Files.List().
		Fields("nextPageToken, files(id, createdTime)").
		Pages(ctx, func(page *drive.FileList) error {
			total += len(page.Files)
			for _, f := range page.Files {
				createdTime, err := time.Parse(time.RFC3339, f.CreatedTime)
				if err != nil {
					slog.Error("failed parse createdTime", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", f.Id), slog.String("createdTime", f.CreatedTime))
					continue
				}
				if createdTime.Before(deadline) {
					oldFileIDs = append(oldFileIDs, f.Id)
				}
			}
			return nil
		})
	if err != nil {
		slog.Error("failed on listing files", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
		return err
	}

	// deleting while paging would shift the listing
	deleted := 0
	for _, id := range oldFileIDs {
		if err = a.srv.Files.Delete(id).Context(ctx).Do(); err != nil {
			slog.Error("failed delete file", slog.String("rqID", rqID), slog.String("op", op), slog.String("fileID", id), slog.String("err", err.Error()))
			continue
		}
		deleted++
	}

	if err = a.srv.Files.EmptyTrash().Context(ctx).Do(); err != nil {
		slog.Error("failed empty trash", slog.String("rqID", rqID), slog.String("op", op), slog.String("err", err.Error()))
	}

	slog.Info("delete old files done", slog.String("rqID", rqID), slog.Int("deletedFiles", deleted), slog.Int("remainingFiles", total-deleted))

	return nil
}
