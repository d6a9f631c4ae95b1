package audiofilestore

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
)

func (a *AudioFileStore) registerRoutes(r gin.IRouter) {
	r.GET("/audio/:filename", a.getAudio)
}

// getAudio handles: GET /api/audio/:filename
//
// Streams a retained original. Range requests are honored (the player
// seeks), via the file server's native range handling.
func (a *AudioFileStore) getAudio(c *gin.Context) {
	filename := c.Param("filename")
	if !validFilename(filename) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid filename"})
		return
	}

	path := a.Path(filename)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Not found"})
		return
	}

	c.Header("Accept-Ranges", "bytes")
	c.File(path)
}

// validFilename rejects anything that could escape FileDir.
func validFilename(name string) bool {
	if name == "" {
		return false
	}
	return !strings.ContainsAny(name, "/\\") && !strings.Contains(name, "..")
}
