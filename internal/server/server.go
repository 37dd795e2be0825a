package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Scrimzay/tacticsim/internal/archive"
	"github.com/Scrimzay/tacticsim/internal/rules"
	"github.com/Scrimzay/tacticsim/internal/world"
)

const maxPreviewSize = 128

func SetupRouter(broadcaster *Broadcaster, room *Room, gameRules *rules.Rules, store archive.Storage, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/healthz", healthHandler(broadcaster, room))
	r.GET("/state", stateHandler(room))
	r.GET("/map", mapHandler(gameRules))
	r.GET("/games/:id/log", logHandler(store))

	r.GET("/ws", HandleWebsocket(broadcaster, room, logger))

	return r
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

func healthHandler(broadcaster *Broadcaster, room *Room) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"game":    room.ID,
			"clients": broadcaster.ClientCount(),
		})
	}
}

func stateHandler(room *Room) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, room.Snapshot())
	}
}

type MapResponse struct {
	Size   int               `json:"size"`
	Seed   int64             `json:"seed"`
	Tiles  []rules.TerrainID `json:"tiles"` // row-major
	Legend []rules.Terrain   `json:"legend"`
}

// mapHandler previews a generated map without starting a game
func mapHandler(gameRules *rules.Rules) gin.HandlerFunc {
	return func(c *gin.Context) {
		size, err := strconv.Atoi(c.DefaultQuery("size", "40"))
		if err != nil || size < 1 || size > maxPreviewSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "size must be between 1 and 128"})
			return
		}
		seed, err := strconv.ParseInt(c.DefaultQuery("seed", "1"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "seed must be an integer"})
			return
		}

		m := world.GenerateMapSeeded(size, gameRules, seed)
		c.JSON(http.StatusOK, MapResponse{
			Size:   size,
			Seed:   seed,
			Tiles:  m.Tiles,
			Legend: gameRules.Terrain,
		})
	}
}

func logHandler(store archive.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		if store == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "battle log disabled"})
			return
		}

		entries, err := store.LoadLog(c.Request.Context(), c.Param("id"))
		if errors.Is(err, archive.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no log for that game"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load log"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"game": c.Param("id"), "turns": entries})
	}
}
