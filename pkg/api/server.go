// Package api provides the REST API server for the MTXT toolchain
package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/james-see/mtxt/pkg/midiconv"
	"github.com/james-see/mtxt/pkg/mtxt"
	"github.com/james-see/mtxt/pkg/transform"
)

// @title MTXT API
// @version 1.0
// @description API for converting between MTXT text and Standard MIDI Files
// @host localhost:8080
// @BasePath /api/v1

// NewRouter builds the API router.
func NewRouter() *gin.Engine {
	r := gin.Default()

	r.Use(corsMiddleware())

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/midi2mtxt", handleMIDIToMTXT)
		v1.POST("/convert/mtxt2midi", handleMTXTToMIDI)
		v1.POST("/transform", handleTransform)
		v1.GET("/formats", listFormats)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// StartServer starts the API server on the specified port.
func StartServer(port int) error {
	return NewRouter().Run(fmt.Sprintf(":%d", port))
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "mtxt",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns the supported formats and conversions
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"mtxt", "midi"},
		"conversions": []string{"midi -> mtxt", "mtxt -> midi"},
	})
}

// handleMIDIToMTXT godoc
// @Summary Convert MIDI to MTXT
// @Description Post SMF bytes and receive the MTXT text
// @Tags convert
// @Accept application/octet-stream
// @Produce text/plain
// @Success 200 {string} string
// @Failure 400 {object} map[string]string
// @Router /convert/midi2mtxt [post]
func handleMIDIToMTXT(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	file, err := midiconv.MIDIToMTXT(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(file.String()))
}

// handleMTXTToMIDI godoc
// @Summary Convert MTXT to MIDI
// @Description Post MTXT text and receive SMF bytes
// @Tags convert
// @Accept text/plain
// @Produce application/octet-stream
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Router /convert/mtxt2midi [post]
func handleMTXTToMIDI(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	file, err := mtxt.Parse(string(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	midiBytes, err := midiconv.MTXTToMIDI(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename=converted.mid")
	c.Data(http.StatusOK, "audio/midi", midiBytes)
}

// handleTransform godoc
// @Summary Transform an MTXT document
// @Description Post MTXT text and receive the transformed MTXT text
// @Tags transform
// @Accept text/plain
// @Produce text/plain
// @Param apply query bool false "Apply directives inline"
// @Param extract query bool false "Extract directives"
// @Param sort query bool false "Sort events by time"
// @Param group query bool false "Group events by channel"
// @Param merge query bool false "Merge note on/off pairs"
// @Param transpose query int false "Transpose by semitones"
// @Param offset query number false "Offset by beats"
// @Param quantize query int false "Quantize grid"
// @Param swing query number false "Swing amount (0.0 to 1.0)"
// @Param humanize query number false "Humanize amount (0.0 to 1.0)"
// @Param include query string false "Comma-separated channels to include"
// @Param exclude query string false "Comma-separated channels to exclude"
// @Success 200 {string} string
// @Failure 400 {object} map[string]string
// @Router /transform [post]
func handleTransform(c *gin.Context) {
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	file, err := mtxt.Parse(string(data))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	desc, err := descriptorFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file.Records = transform.ApplyAll(file.Records, desc)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(file.String()))
}

func descriptorFromQuery(c *gin.Context) (*transform.Descriptor, error) {
	desc := &transform.Descriptor{
		ApplyDirectives:   c.Query("apply") == "true",
		ExtractDirectives: c.Query("extract") == "true",
		SortByTime:        c.Query("sort") == "true",
		GroupChannels:     c.Query("group") == "true",
		MergeNotes:        c.Query("merge") == "true",
	}

	var err error
	if v := c.Query("transpose"); v != "" {
		desc.TransposeAmount, err = strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid transpose amount: %s", v)
		}
	}
	if v := c.Query("offset"); v != "" {
		desc.OffsetAmount, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid offset amount: %s", v)
		}
	}
	if v := c.Query("quantize"); v != "" {
		grid, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid quantize grid: %s", v)
		}
		desc.QuantizeGrid = uint32(grid)
	}
	if v := c.Query("swing"); v != "" {
		desc.QuantizeSwing, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid swing amount: %s", v)
		}
	}
	if v := c.Query("humanize"); v != "" {
		desc.QuantizeHumanize, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid humanize amount: %s", v)
		}
	}
	if desc.IncludeChannels, err = channelSet(c.Query("include")); err != nil {
		return nil, err
	}
	if desc.ExcludeChannels, err = channelSet(c.Query("exclude")); err != nil {
		return nil, err
	}

	return desc, nil
}

func channelSet(query string) (map[uint16]bool, error) {
	if query == "" {
		return nil, nil
	}
	set := make(map[uint16]bool)
	for _, part := range strings.Split(query, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ch, err := strconv.ParseUint(part, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid channel: %s", part)
		}
		set[uint16(ch)] = true
	}
	return set, nil
}
