package service

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"qbank_backend/internal/config"
	"qbank_backend/internal/model"
	"qbank_backend/internal/util"
	"strings"
	"testing"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func fileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("ParseMultipartForm: %v", err)
	}
	return req.MultipartForm.File["file"][0]
}

func newLocalStorage(t *testing.T) (*StorageService, string) {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{Storage: config.StorageConfig{Type: util.StorageLocal, LocalPath: dir, Folder: "questions"}}
	return NewStorageService(cfg), dir
}

func TestUploadImageLocal(t *testing.T) {
	svc, dir := newLocalStorage(t)
	ctx := context.Background()

	img, err := svc.UploadImage(ctx, fileHeader(t, "Heart.PNG", pngHeader))
	if err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
	if !strings.HasPrefix(img.PublicID, "questions/") || !strings.HasSuffix(img.PublicID, ".png") {
		t.Errorf("unexpected object key %q", img.PublicID)
	}
	if img.URL != "/uploads/"+img.PublicID {
		t.Errorf("url = %q", img.URL)
	}

	stored := filepath.Join(dir, filepath.FromSlash(img.PublicID))
	data, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(data, pngHeader) {
		t.Error("stored content differs from upload")
	}

	svc.DeleteImages(ctx, []model.Image{img, {URL: "/uploads/gone.png", PublicID: "questions/gone.png"}, {}})
	if _, err := os.Stat(stored); !os.IsNotExist(err) {
		t.Errorf("image not deleted: %v", err)
	}
}

func TestUploadImageRejectsNonImages(t *testing.T) {
	svc, _ := newLocalStorage(t)
	ctx := context.Background()

	if _, err := svc.UploadImage(ctx, fileHeader(t, "notes.txt", []byte("hello"))); !errors.Is(err, util.ErrInvalidFileType) {
		t.Errorf("text extension: got %v", err)
	}
	// 扩展名伪装成图片
	if _, err := svc.UploadImage(ctx, fileHeader(t, "fake.png", []byte("plain text pretending"))); !errors.Is(err, util.ErrInvalidFileType) {
		t.Errorf("disguised text: got %v", err)
	}
}
