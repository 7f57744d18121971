package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/techinvestorai/techinvestor-backend/internal/quiz"
)

type Handler struct {
	bank *quiz.Bank
}

func New(bank *quiz.Bank) *Handler {
	return &Handler{bank: bank}
}

type checkRequest struct {
	Option *int `json:"option"`
}

type gradeRequest struct {
	Answers map[int]int `json:"answers"`
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/quiz", h.GetQuestions)
	rg.POST("/quiz/answers", h.Grade)
	rg.POST("/quiz/questions/:id/answer", h.Check)
}

func (h *Handler) GetQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"questions": h.bank.Questions()})
}

// Check grades a single answer, as the quiz shows feedback per question.
func (h *Handler) Check(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}

	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Option == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "option is required"})
		return
	}

	res, err := h.bank.Check(id, *req.Option)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Grade(c *gin.Context) {
	var req gradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	score, err := h.bank.Grade(req.Answers)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, score)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, quiz.ErrUnknownQuestion):
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
	case errors.Is(err, quiz.ErrInvalidOption):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
