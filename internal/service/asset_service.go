package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/thegymcollege/reelflow/internal/transfer"
)

type AssetService interface {
	Upload(ctx context.Context, ownerID string, file *multipart.FileHeader) (*transfer.UploadedAsset, error)
}

type assetService struct {
	r2 *R2Service
}

func NewAssetService(r2 *R2Service) AssetService {
	return &assetService{r2: r2}
}

// Upload validates the artifact by magic bytes, stores it under a
// generated key, and returns the public locator used in content refs.
func (s *assetService) Upload(ctx context.Context, ownerID string, file *multipart.FileHeader) (*transfer.UploadedAsset, error) {
	allowedTypes := map[string]struct{}{
		"mp4": {}, "mov": {}, "jpeg": {}, "png": {}, "jpg": {},
	}

	fileContent, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer fileContent.Close()

	fileBytes, err := io.ReadAll(fileContent)
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}

	fileType, err := filetype.Match(fileBytes)
	if err != nil || fileType == types.Unknown {
		return nil, fmt.Errorf("unsupported file type: %w", err)
	}
	if _, ok := allowedTypes[fileType.Extension]; !ok {
		return nil, fmt.Errorf("file type %s is not allowed", fileType.Extension)
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	key := fmt.Sprintf("%s/%s.%s", ownerID, id, fileType.Extension)
	if err := s.r2.UploadToR2(ctx, key, fileBytes, fileType.MIME.Value); err != nil {
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	return &transfer.UploadedAsset{
		Key:         key,
		URL:         s.r2.PublicURL(key),
		ContentType: fileType.MIME.Value,
	}, nil
}
