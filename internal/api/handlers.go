package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ourworld/internal/models"
)

// ContentService はコンテンツの読み書きを提供します。*store.Content が実装します。
type ContentService interface {
	Home(ctx context.Context) (*models.Home, error)
	Posts(ctx context.Context) ([]models.Post, error)
	Dates(ctx context.Context) (*models.Dates, error)
	Special(ctx context.Context) (*models.Special, error)
	Fun(ctx context.Context) (*models.Fun, error)
	Notes(ctx context.Context) ([]models.Note, error)
	CreateNote(ctx context.Context, author, message string) (*models.Note, error)
	DeleteNote(ctx context.Context, id int64) error
	ToggleBucketItem(ctx context.Context, id int64) (*models.BucketItem, error)
	VotePoll(ctx context.Context, optionID int64) ([]models.PollOption, error)
}

type createNoteRequest struct {
	Message string `json:"message"`
	Author  string `json:"author"`
}

type voteRequest struct {
	OptionID *int64 `json:"optionId"`
}

// HomeHandler は GET /api/home のハンドラーを返します。
func HomeHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		home, err := svc.Home(c.Request.Context())
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, home)
	}
}

// BlogHandler は GET /api/blog のハンドラーを返します。
func BlogHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		posts, err := svc.Posts(c.Request.Context())
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"posts": posts})
	}
}

// DatesHandler は GET /api/dates のハンドラーを返します。
func DatesHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		dates, err := svc.Dates(c.Request.Context())
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, dates)
	}
}

// SpecialHandler は GET /api/special のハンドラーを返します。
func SpecialHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		special, err := svc.Special(c.Request.Context())
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, special)
	}
}

// FunHandler は GET /api/fun のハンドラーを返します。
func FunHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		fun, err := svc.Fun(c.Request.Context())
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, fun)
	}
}

// ListNotesHandler は GET /api/notes のハンドラーを返します。
func ListNotesHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		notes, err := svc.Notes(c.Request.Context())
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notes": notes})
	}
}

// CreateNoteHandler は POST /api/notes のハンドラーを返します。
func CreateNoteHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createNoteRequest
		// 読めない本文は空のメモとして扱う
		_ = c.ShouldBindJSON(&req)
		if strings.TrimSpace(req.Message) == "" {
			respondWithError(c, badRequest("Note message is required."))
			return
		}

		note, err := svc.CreateNote(c.Request.Context(), req.Author, req.Message)
		if err != nil {
			respondWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, note)
	}
}

// DeleteNoteHandler は DELETE /api/notes/:id のハンドラーを返します。
func DeleteNoteHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			respondWithError(c, badRequest("Invalid note."))
			return
		}

		if err := svc.DeleteNote(c.Request.Context(), id); err != nil {
			respondWithError(c, notFoundAs(err, "Note not found."))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// ToggleBucketHandler は POST /api/bucket/:id/toggle のハンドラーを返します。
func ToggleBucketHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			respondWithError(c, badRequest("Invalid bucket item."))
			return
		}

		item, err := svc.ToggleBucketItem(c.Request.Context(), id)
		if err != nil {
			respondWithError(c, notFoundAs(err, "Bucket item not found."))
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": item.ID, "completed": item.Completed})
	}
}

// VotePollHandler は POST /api/poll/vote のハンドラーを返します。
func VotePollHandler(svc ContentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req voteRequest
		// 整数以外の optionId はデコードに失敗するので未指定と同じ扱いになる
		if err := c.ShouldBindJSON(&req); err != nil || req.OptionID == nil {
			respondWithError(c, badRequest("Option id is required."))
			return
		}

		options, err := svc.VotePoll(c.Request.Context(), *req.OptionID)
		if err != nil {
			respondWithError(c, notFoundAs(err, "Poll option not found."))
			return
		}
		c.JSON(http.StatusOK, gin.H{"options": options})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
