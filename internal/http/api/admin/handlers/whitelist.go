package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/volt-campus/VoltRentalAPI/internal/http"
	"github.com/volt-campus/VoltRentalAPI/internal/whitelist"
)

// WhitelistHandler handles student whitelist management.
type WhitelistHandler struct {
	importer *whitelist.Importer
}

// NewWhitelistHandler constructs a WhitelistHandler.
func NewWhitelistHandler(importer *whitelist.Importer) *WhitelistHandler {
	return &WhitelistHandler{importer: importer}
}

// Import ingests an enrollment CSV and upserts the student whitelist.
func (h *WhitelistHandler) Import(c *gin.Context) {
	fileHeader, errFile := c.FormFile("file")
	if errFile != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing csv file"})
		return
	}

	file, errOpen := fileHeader.Open()
	if errOpen != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
		return
	}
	defer file.Close()

	count, err := h.importer.ImportCSV(c.Request.Context(), file)
	if err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "whitelist imported", "imported": count})
}

// Lookup returns a whitelist entry by student id.
func (h *WhitelistHandler) Lookup(c *gin.Context) {
	student, err := h.importer.Lookup(c.Request.Context(), c.Param("studentId"))
	if err != nil {
		httpapi.AbortWithFault(c, err)
		return
	}
	c.JSON(http.StatusOK, student)
}
