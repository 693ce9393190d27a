package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nplaceworks/adrank_backend/models"
	"github.com/nplaceworks/adrank_backend/utils"
)

const maxUploadBytes = 20 << 20 // 20 MB

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// uploadAttachmentHandler stores a multipart file in GCS and records it.
// Images additionally get a thumbnail.
func uploadAttachmentHandler(c *gin.Context) {
	businessId, userId, _ := sessionIdentity(c)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	if fileHeader.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	kind := c.PostForm("kind")
	if kind == "" {
		kind = "general"
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if int64(len(data)) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	objectName := fmt.Sprintf("%s/%s/%s%s", businessId, time.Now().UTC().Format("2006/01"), uuid.NewString(), ext)

	attachment := &models.Attachment{
		BusinessId:  businessId,
		OwnerId:     userId,
		Kind:        kind,
		FileName:    fileHeader.Filename,
		ObjectName:  objectName,
		ContentType: http.DetectContentType(data),
		SizeBytes:   int64(len(data)),
	}

	ctx := c.Request.Context()
	if imageExtensions[ext] {
		if err := utils.UploadImageWithThumbnail(ctx, objectName, data, 320); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		attachment.ThumbnailUrl = utils.BuildObjectAccessURL(objectName + ".thumb.jpg")
	} else {
		if err := utils.UploadFileToGCS(ctx, objectName, bytes.NewReader(data)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	attachment.Url = utils.BuildObjectAccessURL(objectName)

	if err := models.CreateAttachment(ctx, attachment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

func listAttachmentsHandler(c *gin.Context) {
	businessId, userId, _ := sessionIdentity(c)

	attachments, err := models.ListAttachments(c.Request.Context(), businessId, userId, c.Query("kind"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attachments": attachments})
}

func deleteAttachmentHandler(c *gin.Context) {
	businessId, userId, _ := sessionIdentity(c)
	id, ok := pathId(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid attachment id"})
		return
	}

	if err := models.DeleteAttachment(c.Request.Context(), businessId, userId, id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
