package api

import (
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mediagen/gkectl/internal/media"
)

// TimelineClip is one entry of the composition timeline in a
// process_media request. URL names the clip file; GCSPath, when set,
// overrides the source_path/url join.
type TimelineClip struct {
	URL       string  `json:"url"`
	StartTime float64 `json:"start_time"`
	Duration  float64 `json:"duration"`
	GCSPath   string  `json:"gcs_path"`
}

// ProcessMediaRequest is the payload of POST /api/process_media.
type ProcessMediaRequest struct {
	BucketName    string         `json:"bucket_name"`
	SourcePath    string         `json:"source_path"`
	FileNames     []string       `json:"file_names"`
	VclipTimeline []TimelineClip `json:"vclip_timeline"`
	AudioTrack    string         `json:"demo_track_gcs_path"`
}

// SignedURLRequest is the payload of POST /api/signed_url.
type SignedURLRequest struct {
	FileName          string `json:"file_name"`
	FileType          string `json:"file_type"`
	ExpirationSeconds int    `json:"expiration"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Hello from GKE!",
		"service": "media-generator-api",
		"version": serviceVersion,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleMedia(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":             "Media Generator API",
		"available_endpoints": []string{"/api/process_media", "/api/signed_url"},
		"supported_formats":   []string{"mp4", "avi", "mov", "mp3", "wav"},
		"status":              "ready",
	})
}

// objectPath resolves the GCS object a clip refers to.
func (clip TimelineClip) objectPath(sourcePath string) string {
	if clip.GCSPath != "" {
		return clip.GCSPath
	}
	if clip.URL == "" {
		return ""
	}
	return path.Join(sourcePath, clip.URL)
}

func (s *Server) handleProcessMedia(c *gin.Context) {
	var req ProcessMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON: " + err.Error()})
		return
	}
	if len(req.VclipTimeline) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vclip_timeline cannot be empty"})
		return
	}
	for _, clip := range req.VclipTimeline {
		if clip.objectPath(req.SourcePath) == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "each clip in vclip_timeline must reference a source object",
				"clip":  clip,
			})
			return
		}
	}

	bucket := req.BucketName
	if bucket == "" {
		bucket = s.cfg.Bucket
	}
	if bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "no bucket requested and GCS_BUCKET is not set",
		})
		return
	}

	workDir, err := os.MkdirTemp("", "media_processing_")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to create scratch directory",
			"error":   err.Error(),
		})
		return
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			s.log.WithError(err).WithField("dir", workDir).Error("failed to clean scratch directory")
		}
	}()

	ctx := c.Request.Context()

	// One download per distinct object, shared across repeated clips.
	localByObject := make(map[string]string)
	objects := make([]string, 0, len(req.VclipTimeline)+len(req.FileNames))
	for _, clip := range req.VclipTimeline {
		objects = append(objects, clip.objectPath(req.SourcePath))
	}
	for _, name := range req.FileNames {
		objects = append(objects, path.Join(req.SourcePath, name))
	}
	for _, object := range objects {
		if _, seen := localByObject[object]; seen {
			continue
		}
		local, err := s.store.Download(ctx, bucket, object, workDir)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "failed to download media from bucket",
				"error":   err.Error(),
			})
			return
		}
		s.log.WithFields(map[string]interface{}{"object": object, "local": local}).Info("downloaded media object")
		localByObject[object] = local
	}

	var audioPath string
	if req.AudioTrack != "" {
		audioPath, err = s.store.Download(ctx, bucket, req.AudioTrack, workDir)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"status":  "error",
				"message": "failed to download audio track",
				"error":   err.Error(),
			})
			return
		}
	}

	clips := make([]media.Clip, 0, len(req.VclipTimeline))
	var totalDuration float64
	for _, clip := range req.VclipTimeline {
		clips = append(clips, media.Clip{
			Path:      localByObject[clip.objectPath(req.SourcePath)],
			StartTime: clip.StartTime,
			Duration:  clip.Duration,
		})
		totalDuration += clip.Duration
	}

	start := time.Now()
	result, err := s.combine(ctx, clips, audioPath, workDir)
	s.processingSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "failed to combine videos",
			"error":   err.Error(),
		})
		return
	}

	// Keep the finished file; the scratch directory is removed on return.
	outputPath := filepath.Join(s.cfg.OutputDir, result.OutputFile)
	if err := copyFile(result.OutputPath, outputPath); err != nil {
		s.log.WithError(err).Error("failed to copy output file")
	} else {
		result.OutputPath = outputPath
	}

	hostname, _ := os.Hostname()
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "media processing request completed",
		"timeline_info": gin.H{
			"total_clips":     len(req.VclipTimeline),
			"total_duration":  totalDuration,
			"unique_files":    len(localByObject),
			"has_audio_track": req.AudioTrack != "",
		},
		"video_creation": result,
		"processed_at":   hostname,
	})
}

func (s *Server) handleSignedURL(c *gin.Context) {
	var req SignedURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be JSON: " + err.Error()})
		return
	}

	var missing []string
	if req.FileName == "" {
		missing = append(missing, "file_name")
	}
	if req.FileType == "" {
		missing = append(missing, "file_type")
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "missing required fields",
			"missing_fields": missing,
		})
		return
	}

	if s.cfg.Bucket == "" {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "GCS_BUCKET is not set",
		})
		return
	}

	expiration := req.ExpirationSeconds
	if expiration <= 0 {
		expiration = 3600
	}

	url, err := s.store.SignedUploadURL(c.Request.Context(), s.cfg.Bucket, req.FileName, req.FileType,
		time.Duration(expiration)*time.Second)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "failed to generate signed URL",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "success",
		"signed_url":         url,
		"bucket_name":        s.cfg.Bucket,
		"file_path":          req.FileName,
		"content_type":       req.FileType,
		"expiration_seconds": expiration,
		"upload_method":      "PUT",
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
