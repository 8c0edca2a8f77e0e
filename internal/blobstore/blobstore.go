// internal/blobstore/blobstore.go
package blobstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go_5_replay_keep/internal/model"

	"github.com/google/uuid"
)

// Store はメディアファイルをローカルディスクに保存する
// 書き込みは一時ファイル + rename で行い、途中失敗時に中途半端なファイルを残しません
type Store interface {
	// SaveFile はリーダーの内容を保存し、書き込んだバイト数を返します
	SaveFile(videoID uuid.UUID, r io.Reader) (int64, error)
	// GetFile は保存済みファイルのパスを返します。存在しない場合は model.ErrNotFound
	GetFile(videoID uuid.UUID) (string, error)
	// DeleteFile はファイルを削除します。存在しない場合もエラーにしません
	DeleteFile(videoID uuid.UUID) error
}

type fileStore struct {
	dir string
}

// NewFileStore はディレクトリを作成してストアを初期化します
func NewFileStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("メディアディレクトリの作成に失敗しました: %w", err)
	}
	return &fileStore{dir: dir}, nil
}

func (s *fileStore) path(videoID uuid.UUID) string {
	return filepath.Join(s.dir, videoID.String()+".bin")
}

func (s *fileStore) SaveFile(videoID uuid.UUID, r io.Reader) (int64, error) {
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("一時ファイルの作成に失敗しました: %w", err)
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, fmt.Errorf("ファイルの書き込みに失敗しました: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return 0, err
	}
	if err := os.Rename(tmpName, s.path(videoID)); err != nil {
		os.Remove(tmpName)
		return 0, fmt.Errorf("ファイルの差し替えに失敗しました: %w", err)
	}
	return n, nil
}

func (s *fileStore) GetFile(videoID uuid.UUID) (string, error) {
	p := s.path(videoID)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", model.ErrNotFound
		}
		return "", err
	}
	return p, nil
}

func (s *fileStore) DeleteFile(videoID uuid.UUID) error {
	err := os.Remove(s.path(videoID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
