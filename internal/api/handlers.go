package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/example/cardlearn/internal/apierr"
	"github.com/example/cardlearn/internal/clock"
	"github.com/example/cardlearn/internal/learning"
	"github.com/example/cardlearn/pkg/models"
)

type DeckStore interface {
	ListVisible(ctx context.Context, userID string) ([]models.Deck, error)
	GetVisible(ctx context.Context, userID string, id int64) (*models.Deck, error)
}

type Enroller interface {
	AddToUser(ctx context.Context, deckID int64, userID string) (int, error)
}

type StatisticsSource interface {
	DeckStatistics(ctx context.Context, userID string, deckID int64, today models.Date, dayStart time.Time) (*models.DeckStatistics, error)
}

type Session interface {
	GetNext(ctx context.Context, userID string, deckID int64) (*learning.Next, error)
	SubmitAction(ctx context.Context, userID string, deckID, cardID int64, action string) (*learning.Next, error)
}

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type DeckHandler struct {
	decks  DeckStore
	enroll Enroller
	stats  StatisticsSource
	clock  clock.Clock
}

func NewDeckHandler(decks DeckStore, enroll Enroller, stats StatisticsSource, clk clock.Clock) *DeckHandler {
	return &DeckHandler{decks: decks, enroll: enroll, stats: stats, clock: clk}
}

// GET /api/decks
func (h *DeckHandler) List(c *gin.Context) {
	decks, err := h.decks.ListVisible(c.Request.Context(), userID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	if decks == nil {
		decks = []models.Deck{}
	}
	c.JSON(http.StatusOK, gin.H{"decks": decks})
}

// POST /api/decks/:id/enroll
func (h *DeckHandler) Enroll(c *gin.Context) {
	deckID, err := int64Param(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	created, err := h.enroll.AddToUser(c.Request.Context(), deckID, userID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"created": created})
}

// GET /api/decks/:id/stats
func (h *DeckHandler) Stats(c *gin.Context) {
	deckID, err := int64Param(c, "id")
	if err != nil {
		RespondError(c, err)
		return
	}
	ctx := c.Request.Context()
	uid := userID(c)
	if _, err := h.decks.GetVisible(ctx, uid, deckID); err != nil {
		RespondError(c, err)
		return
	}
	stats, err := h.stats.DeckStatistics(ctx, uid, deckID, clock.Today(h.clock), clock.StartOfDay(h.clock))
	if err != nil {
		RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type LearnHandler struct {
	session Session
}

func NewLearnHandler(session Session) *LearnHandler {
	return &LearnHandler{session: session}
}

type submitRequest struct {
	CardID int64  `json:"card_id"`
	Action string `json:"action"`
}

// GET /api/learn/:deck_id
func (h *LearnHandler) Next(c *gin.Context) {
	deckID, err := int64Param(c, "deck_id")
	if err != nil {
		RespondError(c, err)
		return
	}
	next, err := h.session.GetNext(c.Request.Context(), userID(c), deckID)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondNext(c, next)
}

// POST /api/learn/:deck_id
func (h *LearnHandler) Submit(c *gin.Context) {
	deckID, err := int64Param(c, "deck_id")
	if err != nil {
		RespondError(c, err)
		return
	}
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, apierr.InvalidRequest(fmt.Errorf("invalid body: %w", err)))
		return
	}
	next, err := h.session.SubmitAction(c.Request.Context(), userID(c), deckID, req.CardID, req.Action)
	if err != nil {
		RespondError(c, err)
		return
	}
	respondNext(c, next)
}

func int64Param(c *gin.Context, name string) (int64, error) {
	raw := c.Param(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierr.InvalidRequest(errors.New("invalid " + name + ": " + raw))
	}
	return id, nil
}
