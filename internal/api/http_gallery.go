package api

import (
	"artify/internal/entity"
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ListStyles 返回风格白名单，匿名可访问。
func (h *HTTPHandler) ListStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": entity.Styles()})
}

// GetCredits 查询当前身份的剩余额度，匿名身份通过 cookie 解析。
func (h *HTTPHandler) GetCredits(c *gin.Context) {
	identity := h.resolveIdentity(c)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	balance, err := h.orchestrator.CreditBalanceFor(ctx, identity)
	if err != nil {
		logrus.WithError(err).WithField("subject", identity.Subject()).Error("failed to load credit balance")
		ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to load credit balance")
		return
	}

	c.JSON(http.StatusOK, balance)
}

// ListGallery 分页列出当前用户的作品
func (h *HTTPHandler) ListGallery(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	var query entity.GalleryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid query parameters")
		return
	}
	query.UserID = user.ID

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	items, meta, err := h.repo.ListGalleryItems(ctx, &query)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("failed to list gallery items")
		ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to list gallery items")
		return
	}

	for i := range items {
		items[i].ArtworkPath = h.publicURL(items[i].ArtworkPath)
		items[i].ThumbnailPath = h.publicURL(items[i].ThumbnailPath)
	}

	c.JSON(http.StatusOK, entity.GalleryListResponse{
		Items: items,
		Meta:  meta,
	})
}

// GetGalleryItem 查询当前用户的单件作品
func (h *HTTPHandler) GetGalleryItem(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	projectID := strings.TrimSpace(c.Param("projectId"))
	if projectID == "" {
		ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "projectId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.repo.GetGalleryItem(ctx, user.ID, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, "gallery item not found")
			return
		}
		logrus.WithError(err).WithField("project_id", projectID).Error("failed to load gallery item")
		ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to load gallery item")
		return
	}

	item.ArtworkPath = h.publicURL(item.ArtworkPath)
	item.ThumbnailPath = h.publicURL(item.ThumbnailPath)
	c.JSON(http.StatusOK, item)
}

// DeleteGalleryItem 删除当前用户的单件作品
func (h *HTTPHandler) DeleteGalleryItem(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		ErrorResponse(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	}

	projectID := strings.TrimSpace(c.Param("projectId"))
	if projectID == "" {
		ErrorResponse(c, http.StatusBadRequest, ErrCodeInvalidRequest, "projectId is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.repo.DeleteGalleryItem(ctx, user.ID, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ErrorResponse(c, http.StatusNotFound, ErrCodeNotFound, "gallery item not found")
			return
		}
		logrus.WithError(err).WithField("project_id", projectID).Error("failed to delete gallery item")
		ErrorResponse(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to delete gallery item")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true, "project_id": projectID})
}
