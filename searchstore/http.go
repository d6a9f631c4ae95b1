package searchstore

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"audiolib/activitylog"
	"audiolib/model"
)

// RegisterRoutes mounts the document-store pass-through routes. They do
// no analysis work themselves: everything here forwards to the index.
func (s *Store) RegisterRoutes(r gin.IRouter) {
	r.GET("/es-status", s.getESStatus)
	r.GET("/health", s.getHealth)
	r.POST("/reindex", s.postReindex)

	r.POST("/save", s.postSave)
	r.GET("/items", s.getItems)
	r.GET("/items/:id", s.getItem)
	r.PUT("/items/:id", s.putItem)
	r.DELETE("/items/:id", s.deleteItem)

	r.GET("/search", s.getSearch)
	r.GET("/stats", s.getStats)
	r.GET("/recommend", s.GetRecommend)
}

func (s *Store) getESStatus(c *gin.Context) {
	name, err := s.ClusterName(c)
	if err != nil {
		logger.WithError(err).Error("getESStatus: cluster info failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Connexion échouée"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": fmt.Sprintf("Connecté à %s", name)})
}

func (s *Store) getHealth(c *gin.Context) {
	up := s.Ping(c)
	c.JSON(http.StatusOK, gin.H{"success": up, "elastic": up})
}

// postReindex re-runs the index bootstrap. Idempotent.
func (s *Store) postReindex(c *gin.Context) {
	if err := s.EnsureIndex(c); err != nil {
		logger.WithError(err).Error("postReindex failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Reindex échouée"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// postSave handles: POST /api/save
//
// Body: the AnalysisDocument returned by /api/analyze, possibly with
// library metadata edited by the user. Store write failures propagate.
func (s *Store) postSave(c *gin.Context) {
	var doc model.AnalysisDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := s.Save(c, &doc)
	if err != nil {
		logger.WithError(err).Error("postSave: index failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	activitylog.Record(c, "info", "save", doc.FileName, id, "")
	c.JSON(http.StatusOK, gin.H{"success": true, "id": id})
}

func (s *Store) getItems(c *gin.Context) {
	size := clampSize(c.DefaultQuery("size", "50"))

	hits, err := s.List(c, size)
	if err != nil {
		logger.WithError(err).Error("getItems: list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Liste échouée"})
		return
	}
	c.JSON(http.StatusOK, hits)
}

func (s *Store) getItem(c *gin.Context) {
	hit, err := s.Get(c, c.Param("id"))
	if errors.Is(err, ErrNoDocument) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("getItem failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Récupération échouée"})
		return
	}
	c.JSON(http.StatusOK, hit)
}

func (s *Store) putItem(c *gin.Context) {
	var partial map[string]any
	if err := c.ShouldBindJSON(&partial); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := s.Update(c, c.Param("id"), partial)
	if errors.Is(err, ErrNoDocument) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("putItem failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Mise à jour échouée"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Store) deleteItem(c *gin.Context) {
	id := c.Param("id")

	err := s.Delete(c, id)
	if errors.Is(err, ErrNoDocument) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("deleteItem failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Suppression échouée"})
		return
	}

	activitylog.Record(c, "info", "delete", "", id, "")
	c.Status(http.StatusNoContent)
}

func (s *Store) getSearch(c *gin.Context) {
	q := c.Query("q")
	size := clampSize(c.DefaultQuery("size", "25"))
	from, _ := strconv.Atoi(c.DefaultQuery("from", "0"))
	if from < 0 {
		from = 0
	}

	hits, total, err := s.Search(c, q, size, from)
	if err != nil {
		logger.WithError(err).Error("getSearch failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Recherche échouée"})
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(total))
	c.JSON(http.StatusOK, hits)
}

func (s *Store) getStats(c *gin.Context) {
	stats, err := s.LibraryStats(c)
	if err != nil {
		logger.WithError(err).Error("getStats failed")
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Stats échouées"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func clampSize(raw string) int {
	size, err := strconv.Atoi(raw)
	if err != nil || size < 1 {
		size = 50
	}
	if size > 200 {
		size = 200
	}
	return size
}
