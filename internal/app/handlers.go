package app

import (
	"context"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/chat"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/chunk"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/ctxutil"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/etl"
	"github.com/CodeBBakGoSu/kangnam-Unv-chatbot/internal/stringutil"
)

type chatRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Message   string `json:"message" binding:"required"`
}

type refreshRequest struct {
	StudentID string `json:"student_id" binding:"required"`
	Password  string `json:"password" binding:"required"`
}

// handleChat answers one chat message for a previously refreshed student.
func (a *Application) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.metrics.RecordHTTPError("bad_request", "chat")
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and message are required"})
		return
	}
	if !stringutil.IsNumeric(req.StudentID) {
		a.metrics.RecordHTTPError("bad_request", "chat")
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id must be numeric"})
		return
	}
	if utf8.RuneCountInString(req.Message) > a.cfg.Chat.MaxMessageLength {
		a.metrics.RecordHTTPError("message_too_long", "chat")
		c.JSON(http.StatusBadRequest, gin.H{"error": "message too long"})
		return
	}

	if !a.allow(c, req.StudentID, "chat") {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), a.cfg.Chat.ChatTimeout)
	defer cancel()
	ctx = ctxutil.WithStudentID(ctx, req.StudentID)

	user, err := a.pipeline.UserContext(ctx, req.StudentID)
	if err != nil {
		a.metrics.RecordHTTPError("unknown_user", "chat")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "사용자 정보를 찾을 수 없습니다. 먼저 강의 정보를 동기화해주세요.",
		})
		return
	}

	start := time.Now()
	reply := a.router.Handle(ctx, req.Message, user)

	status := "success"
	if reply.CurrentFlow == chat.FlowError {
		status = "error"
	}
	a.metrics.RecordChatRequest(string(reply.CurrentFlow), status, time.Since(start).Seconds())
	if reply.Usage != nil && a.generator != nil {
		a.metrics.RecordLLMTokens(a.generator.Provider().String(), reply.Usage.PromptTokens, reply.Usage.ResponseTokens)
	}

	c.JSON(http.StatusOK, reply)
}

// handleRefresh runs the full ETL pipeline for one student and reports
// the stages it went through.
func (a *Application) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.metrics.RecordHTTPError("bad_request", "refresh")
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id and password are required"})
		return
	}

	if !stringutil.IsNumeric(req.StudentID) {
		a.metrics.RecordHTTPError("bad_request", "refresh")
		c.JSON(http.StatusBadRequest, gin.H{"error": "student_id must be numeric"})
		return
	}

	if !a.allow(c, req.StudentID, "refresh") {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), a.cfg.Chat.RefreshTimeout)
	defer cancel()
	ctx = ctxutil.WithStudentID(ctx, req.StudentID)

	var stages []etl.Status
	start := time.Now()
	result, err := a.pipeline.Refresh(ctx, req.StudentID, req.Password, func(s etl.Status) {
		stages = append(stages, s)
	})
	if err != nil {
		a.metrics.RecordRefresh("error", time.Since(start).Seconds(), 0)
		a.logger.WithUser(req.StudentID).WithError(err).Error("Refresh failed")
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  "강의 정보를 가져오지 못했습니다. 학번과 비밀번호를 확인해주세요.",
			"stages": stages,
		})
		return
	}

	status := "success"
	if result.FromCache {
		status = "cached"
		a.metrics.RecordCacheHit("scrape")
	} else {
		a.metrics.RecordCacheMiss("scrape")
	}
	a.metrics.RecordRefresh(status, time.Since(start).Seconds(), result.Stored)

	c.JSON(http.StatusOK, gin.H{
		"result": result,
		"stages": stages,
	})
}

// handleChunkCount reports how many chunks are indexed for a student.
func (a *Application) handleChunkCount(c *gin.Context) {
	studentID := c.Param("student_id")
	owner := chunk.OwnerKey(studentID)

	count, err := a.searcher.Store().Count(c.Request.Context(), owner)
	if err != nil {
		a.metrics.RecordHTTPError("internal", "chunks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to count chunks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"student_id": studentID,
		"count":      count,
	})
}

// handleChunkDelete removes all indexed chunks for a student.
func (a *Application) handleChunkDelete(c *gin.Context) {
	studentID := c.Param("student_id")
	owner := chunk.OwnerKey(studentID)

	deleted, err := a.searcher.Delete(c.Request.Context(), owner)
	if err != nil {
		a.metrics.RecordHTTPError("internal", "chunks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete chunks"})
		return
	}

	a.logger.WithUser(studentID).WithField("deleted", deleted).Info("Chunks deleted")
	c.JSON(http.StatusOK, gin.H{
		"student_id": studentID,
		"deleted":    deleted,
	})
}

// allow enforces the global and per-student rate limits, answering 429
// on rejection.
func (a *Application) allow(c *gin.Context, studentID, module string) bool {
	if !a.globalLimiter.Allow() {
		a.metrics.RecordRateLimiterDrop("global")
		a.metrics.RecordHTTPError("rate_limit", module)
		c.Header("Retry-After", "1")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "잠시 후 다시 시도해주세요."})
		return false
	}
	if !a.userLimiter.Allow(studentID) {
		a.metrics.RecordRateLimiterDrop("user")
		a.metrics.RecordHTTPError("rate_limit", module)
		c.Header("Retry-After", "10")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "요청이 너무 많습니다. 잠시 후 다시 시도해주세요."})
		return false
	}
	return true
}
