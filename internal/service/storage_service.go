package service

import (
	"context"
	"english_edu_backend/internal/config"
	"english_edu_backend/internal/model"
	"english_edu_backend/internal/util"
	"english_edu_backend/pkg/monitoring"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 定义通用存储接口
type StorageProvider interface {
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete 删除对象，对象不存在时不返回错误
	Delete(ctx context.Context, key string) error
	URL(key string) string
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// UploadResult 上传结果
type UploadResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// LocalStorageProvider 本地存储实现
type LocalStorageProvider struct {
	Root    string
	BaseURL string
}

func (p *LocalStorageProvider) fullPath(key string) string {
	return filepath.Join(p.Root, filepath.FromSlash(key))
}

func (p *LocalStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	dst := p.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, reader); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}

func (p *LocalStorageProvider) Delete(ctx context.Context, key string) error {
	err := os.Remove(p.fullPath(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (p *LocalStorageProvider) URL(key string) string {
	return joinURL(p.BaseURL, key)
}

func (p *LocalStorageProvider) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	err := filepath.WalkDir(p.Root, func(name string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(p.Root, name)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if !strings.HasPrefix(key, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		objects = append(objects, ObjectInfo{Key: key, Size: info.Size(), LastModified: info.ModTime()})
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return objects, err
}

// S3StorageProvider 通过 S3 协议访问 Cloudflare R2 或 MinIO
type S3StorageProvider struct {
	Client  *minio.Client
	Bucket  string
	BaseURL string
}

func NewS3StorageProvider(cfg *config.StorageConfig) (*S3StorageProvider, error) {
	endpoint := cfg.Endpoint
	secure := cfg.UseSSL
	// R2 给出的 endpoint 通常带协议头
	if rest, ok := strings.CutPrefix(endpoint, "https://"); ok {
		endpoint, secure = rest, true
	} else if rest, ok := strings.CutPrefix(endpoint, "http://"); ok {
		endpoint, secure = rest, false
	}
	endpoint = strings.TrimRight(endpoint, "/")

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	}
	if cfg.Type == util.StorageMinio {
		opts.BucketLookup = minio.BucketLookupPath
	}

	client, err := minio.New(endpoint, opts)
	if err != nil {
		return nil, err
	}

	base := cfg.PublicURLBase
	if base == "" {
		scheme := "http"
		if secure {
			scheme = "https"
		}
		base = fmt.Sprintf("%s://%s/%s", scheme, endpoint, cfg.Bucket)
	}
	return &S3StorageProvider{Client: client, Bucket: cfg.Bucket, BaseURL: base}, nil
}

func (p *S3StorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := p.Client.PutObject(ctx, p.Bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

// Delete 遵循 S3 语义，删除不存在的键视为成功
func (p *S3StorageProvider) Delete(ctx context.Context, key string) error {
	return p.Client.RemoveObject(ctx, p.Bucket, key, minio.RemoveObjectOptions{})
}

func (p *S3StorageProvider) URL(key string) string {
	return joinURL(p.BaseURL, key)
}

func (p *S3StorageProvider) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	for obj := range p.Client.ListObjects(ctx, p.Bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		objects = append(objects, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
	}
	return objects, nil
}

// OSSStorageProvider 阿里云OSS存储实现
type OSSStorageProvider struct {
	Bucket  *oss.Bucket
	BaseURL string
}

func NewOSSStorageProvider(cfg *config.StorageConfig) (*OSSStorageProvider, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}

	base := cfg.PublicURLBase
	if base == "" {
		host := strings.TrimPrefix(strings.TrimPrefix(cfg.OSSEndpoint, "https://"), "http://")
		base = fmt.Sprintf("https://%s.%s", cfg.OSSBucket, host)
	}
	return &OSSStorageProvider{Bucket: bucket, BaseURL: base}, nil
}

func (p *OSSStorageProvider) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	return p.Bucket.PutObject(key, reader, oss.ContentType(contentType), oss.WithContext(ctx))
}

// Delete OSS 删除不存在的键同样返回成功
func (p *OSSStorageProvider) Delete(ctx context.Context, key string) error {
	return p.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (p *OSSStorageProvider) URL(key string) string {
	return joinURL(p.BaseURL, key)
}

func (p *OSSStorageProvider) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	token := ""
	for {
		opts := []oss.Option{oss.Prefix(prefix), oss.MaxKeys(1000), oss.WithContext(ctx)}
		if token != "" {
			opts = append(opts, oss.ContinuationToken(token))
		}
		res, err := p.Bucket.ListObjectsV2(opts...)
		if err != nil {
			return nil, err
		}
		for _, obj := range res.Objects {
			objects = append(objects, ObjectInfo{Key: obj.Key, Size: obj.Size, LastModified: obj.LastModified})
		}
		if !res.IsTruncated {
			return objects, nil
		}
		token = res.NextContinuationToken
	}
}

// NewStorageProvider 按 cfg.Type 创建存储实现
func NewStorageProvider(cfg *config.StorageConfig) (StorageProvider, error) {
	switch cfg.Type {
	case "", util.StorageLocal:
		base := cfg.PublicURLBase
		if base == "" {
			base = "/uploads"
		}
		return &LocalStorageProvider{Root: cfg.LocalPath, BaseURL: base}, nil
	case util.StorageR2, util.StorageMinio:
		return NewS3StorageProvider(cfg)
	case util.StorageOSS:
		return NewOSSStorageProvider(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}

// StorageService 存储服务
type StorageService struct {
	Provider StorageProvider
	NewID    func() string
}

func NewStorageService(cfg *config.StorageConfig) (*StorageService, error) {
	p, err := NewStorageProvider(cfg)
	if err != nil {
		return nil, err
	}
	return &StorageService{Provider: p, NewID: uuid.NewString}, nil
}

// ObjectKey 生成 "<目录>/<随机ID><扩展名>"，保留原扩展名
func (s *StorageService) ObjectKey(folder, originalName string) (string, error) {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return "", util.Validationf("folder is required")
	}
	for _, seg := range strings.Split(folder, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", util.Validationf("invalid folder %q", folder)
		}
	}
	return path.Join(folder, s.NewID()+util.NormalizedExt(originalName)), nil
}

func (s *StorageService) UploadObject(ctx context.Context, reader io.Reader, size int64, originalName, folder, contentType string) (*UploadResult, error) {
	key, err := s.ObjectKey(folder, originalName)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = util.MimeOctetStream
	}

	err = s.Provider.Upload(ctx, key, reader, size, contentType)
	monitoring.ObserveStorage("upload", err)
	if err != nil {
		return nil, util.Upstream("storage upload", err)
	}
	return &UploadResult{Key: key, URL: s.Provider.URL(key)}, nil
}

// UploadAllowed 通用上传允许的类型
var UploadAllowed = []string{util.MimeImage, util.MimeVideo, util.MimeAudio, util.MimePDF}

// UploadMultipart 识别表单文件的类型后上传到 folder
func (s *StorageService) UploadMultipart(ctx context.Context, file *multipart.FileHeader, folder string) (*UploadResult, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, UploadAllowed)
	if err != nil {
		return nil, err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return s.UploadObject(ctx, src, file.Size, file.Filename, folder, mimeType)
}

// UserFolder 通用上传按用户隔离的根目录
func UserFolder(userID uint) string {
	return fmt.Sprintf("uploads/%d", userID)
}

// UploadForUser 通用上传存到调用者自己的目录
func (s *StorageService) UploadForUser(ctx context.Context, owner *util.Claims, file *multipart.FileHeader, folder string) (*UploadResult, error) {
	if owner == nil {
		return nil, util.ErrUnauthorized
	}
	folder = strings.Trim(folder, "/")
	if folder == "" {
		return nil, util.Validationf("folder is required")
	}
	return s.UploadMultipart(ctx, file, path.Join(UserFolder(owner.UserID), folder))
}

// DeleteForUser 只允许删除自己目录下的对象，管理员不受限
func (s *StorageService) DeleteForUser(ctx context.Context, owner *util.Claims, key string) error {
	if owner == nil {
		return util.ErrUnauthorized
	}
	key = strings.TrimLeft(key, "/")
	if owner.Role != model.Admin && !strings.HasPrefix(key, UserFolder(owner.UserID)+"/") {
		return util.Forbiddenf("object %q is not yours", key)
	}
	return s.Delete(ctx, key)
}

func (s *StorageService) Delete(ctx context.Context, key string) error {
	key = strings.TrimLeft(key, "/")
	if key == "" || strings.Contains(key, "..") {
		return util.Validationf("invalid object key %q", key)
	}
	err := s.Provider.Delete(ctx, key)
	monitoring.ObserveStorage("delete", err)
	return util.Upstream("storage delete", err)
}

func (s *StorageService) URL(key string) string {
	return s.Provider.URL(key)
}

func (s *StorageService) ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objects, err := s.Provider.ListObjects(ctx, prefix)
	monitoring.ObserveStorage("list", err)
	if err != nil {
		return nil, util.Upstream("storage list", err)
	}
	return objects, nil
}
