package backup

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/trian/landing/backend/wishes-service/pkg/logger"
	"github.com/trian/landing/backend/wishes-service/pkg/metrics"
)

// Objects is the slice of object storage the backups need.
type Objects interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, error)
}

// Snapshotter produces the serialized wishes document.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]byte, error)
}

// Result describes one uploaded snapshot.
type Result struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
	URL  string `json:"url,omitempty"`
}

// Service copies the wishes document into object storage.
type Service struct {
	src     Snapshotter
	objects Objects
	prefix  string
	now     func() time.Time
}

func NewService(src Snapshotter, objects Objects) *Service {
	return &Service{src: src, objects: objects, prefix: "wishes/", now: time.Now}
}

// Run uploads the document once and reports where it went.
func (s *Service) Run(ctx context.Context) (Result, error) {
	data, err := s.src.Snapshot(ctx)
	if err != nil {
		metrics.Backups.WithLabelValues("error").Inc()
		return Result{}, err
	}
	key := s.prefix + s.now().UTC().Format("20060102T150405Z") + ".json"
	if err := s.objects.Put(ctx, key, data, "application/json"); err != nil {
		metrics.Backups.WithLabelValues("error").Inc()
		return Result{}, fmt.Errorf("upload snapshot: %w", err)
	}
	metrics.Backups.WithLabelValues("ok").Inc()
	res := Result{Key: key, Size: len(data)}
	if u, err := s.objects.PresignGet(ctx, key, 15*time.Minute); err == nil {
		res.URL = u
	} else {
		logger.Warnf("backup %s uploaded but presign failed: %v", key, err)
	}
	return res, nil
}

// Schedule runs a backup every interval until ctx is done.
func (s *Service) Schedule(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			res, err := s.Run(ctx)
			if err != nil {
				logger.Errorf("scheduled backup failed: %v", err)
				continue
			}
			logger.Infof("scheduled backup stored as %s (%d bytes)", res.Key, res.Size)
		}
	}
}

// RegisterRoutes mounts POST /admin/backup behind mw.
func RegisterRoutes(rg gin.IRouter, s *Service, mw ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, mw...), func(c *gin.Context) {
		res, err := s.Run(c.Request.Context())
		if err != nil {
			logger.Errorf("manual backup failed: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "backup failed"})
			return
		}
		c.JSON(http.StatusCreated, res)
	})
	rg.POST("/admin/backup", handlers...)
}
