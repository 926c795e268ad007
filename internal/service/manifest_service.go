package service

import (
	"context"
	"encoding/json"
	"english_edu_backend/pkg/logger"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ObjectInfo 存储桶列举返回的单个对象
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

type ObjectLister interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// ManifestEntry 存储桶中的一个课程文件
type ManifestEntry struct {
	Exam         string `json:"exam"`
	Teacher      string `json:"teacher"`
	Course       string `json:"course"`
	Section      string `json:"section"`
	File         string `json:"file"`
	Ext          string `json:"ext"`
	Path         string `json:"path"`
	URLPath      string `json:"urlPath"`
	URL          string `json:"url"`
	SizeBytes    int64  `json:"sizeBytes"`
	LastModified string `json:"lastModified"`
}

const manifestRoot = "courses"

var manifestExts = map[string]bool{"pdf": true, "mp3": true, "mp4": true}

// ParseManifestKey 匹配 courses/<分类>/<教师>/<课程>/[<章节>/]<文件>.<扩展名>，
// 不符合约定的键返回 ok=false
func ParseManifestKey(key string) (entry ManifestEntry, ok bool) {
	segs := strings.Split(key, "/")
	if len(segs) != 5 && len(segs) != 6 {
		return entry, false
	}
	if segs[0] != manifestRoot {
		return entry, false
	}
	for _, s := range segs {
		if s == "" || strings.HasPrefix(s, ".") {
			return entry, false
		}
	}

	name := segs[len(segs)-1]
	dot := strings.LastIndex(name, ".")
	if dot <= 0 {
		return entry, false
	}
	ext := strings.ToLower(name[dot+1:])
	if !manifestExts[ext] {
		return entry, false
	}

	entry = ManifestEntry{
		Exam:    segs[1],
		Teacher: segs[2],
		Course:  segs[3],
		File:    name[:dot],
		Ext:     ext,
		Path:    key,
	}
	if len(segs) == 6 {
		entry.Section = segs[4]
	}

	escaped := make([]string, len(segs))
	for i, s := range segs {
		escaped[i] = url.PathEscape(s)
	}
	entry.URLPath = strings.Join(escaped, "/")
	return entry, true
}

// BuildManifest 保留符合约定的键并按路径排序
func BuildManifest(objects []ObjectInfo, publicBase string) []ManifestEntry {
	entries := make([]ManifestEntry, 0, len(objects))
	for _, obj := range objects {
		e, ok := ParseManifestKey(obj.Key)
		if !ok {
			logger.Log.Debug("skip object", zap.String("key", obj.Key))
			continue
		}
		e.URL = joinURL(publicBase, e.URLPath)
		e.SizeBytes = obj.Size
		e.LastModified = obj.LastModified.UTC().Format(time.RFC3339)
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// GenerateManifest 列举 prefix 下全部对象，列举出错时整体失败，不返回部分结果
func GenerateManifest(ctx context.Context, lister ObjectLister, prefix, publicBase string) ([]ManifestEntry, error) {
	objects, err := lister.ListObjects(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list objects under %q: %w", prefix, err)
	}

	entries := BuildManifest(objects, publicBase)
	logger.Log.Info("manifest built",
		zap.Int("objects", len(objects)),
		zap.Int("entries", len(entries)),
	)
	return entries, nil
}

// WriteManifest 以缩进 JSON 数组写出清单，先写临时文件再原子替换
func WriteManifest(path string, entries []ManifestEntry) error {
	if entries == nil {
		entries = []ManifestEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".manifest-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
