package service

import (
	"context"
	"encoding/json"
	"english_edu_backend/internal/model"
	"english_edu_backend/pkg/logger"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	publishedExamsKeyPrefix = "exams:published:"
	publishedExamsTTL       = 5 * time.Minute
)

// PublishedExamPage 公开考试列表的一页缓存
type PublishedExamPage struct {
	List  []PublicExam `json:"list"`
	Total int64        `json:"total"`
}

// ExamCache 缓存公开考试列表，未命中或缓存异常时回源数据库
type ExamCache interface {
	GetPublished(ctx context.Context, page, limit int) (*PublishedExamPage, bool)
	SetPublished(ctx context.Context, page, limit int, p *PublishedExamPage)
	Invalidate(ctx context.Context)
}

// NewExamCache rdb 为 nil 时返回空缓存
func NewExamCache(rdb *redis.Client) ExamCache {
	if rdb == nil {
		return noopExamCache{}
	}
	return &redisExamCache{client: rdb, ttl: publishedExamsTTL}
}

type noopExamCache struct{}

func (noopExamCache) GetPublished(context.Context, int, int) (*PublishedExamPage, bool) {
	return nil, false
}
func (noopExamCache) SetPublished(context.Context, int, int, *PublishedExamPage) {}
func (noopExamCache) Invalidate(context.Context)                                {}

type redisExamCache struct {
	client *redis.Client
	ttl    time.Duration
}

func (c *redisExamCache) key(page, limit int) string {
	return fmt.Sprintf("%s%d:%d", publishedExamsKeyPrefix, page, limit)
}

func (c *redisExamCache) GetPublished(ctx context.Context, page, limit int) (*PublishedExamPage, bool) {
	data, err := c.client.Get(ctx, c.key(page, limit)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Log.Warn("exam cache read failed", zap.Error(err))
		return nil, false
	}

	var p PublishedExamPage
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	return &p, true
}

func (c *redisExamCache) SetPublished(ctx context.Context, page, limit int, p *PublishedExamPage) {
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(page, limit), data, c.ttl).Err(); err != nil {
		logger.Log.Warn("exam cache write failed", zap.Error(err))
	}
}

func (c *redisExamCache) Invalidate(ctx context.Context) {
	iter := c.client.Scan(ctx, 0, publishedExamsKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.Warn("exam cache scan failed", zap.Error(err))
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Log.Warn("exam cache invalidation failed", zap.Error(err))
	}
}

// PublicExam 面向学员和匿名访问的考试结构
type PublicExam struct {
	ID            uint                `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Duration      int                 `json:"duration"`
	PassScore     int                 `json:"passScore"`
	GradingMethod model.GradingMethod `json:"gradingMethod"`
	QuestionCount int                 `json:"questionCount"`
}

func toPublicExam(e *model.Exam) PublicExam {
	return PublicExam{
		ID:            e.ID,
		Title:         e.Title,
		Description:   e.Description,
		Duration:      e.Duration,
		PassScore:     e.PassScore,
		GradingMethod: e.GradingMethod,
		QuestionCount: len(e.QuestionIDs),
	}
}
