package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akagup/go-emergency-response/internal/geo"
	"github.com/akagup/go-emergency-response/internal/models"
	"github.com/akagup/go-emergency-response/internal/notify"
	"github.com/akagup/go-emergency-response/internal/observability"
	"github.com/akagup/go-emergency-response/internal/pipeline"
	"github.com/akagup/go-emergency-response/internal/repository"
	"github.com/akagup/go-emergency-response/internal/stream"
)

const (
	defaultRadiusKM = 10.0
	defaultLimit    = 20
	maxLimit        = 100
)

// Geocoder resolves a free-text location label to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, label string) (models.Coordinate, error)
}

type Handler struct {
	store       repository.Store
	intake      *pipeline.Intake
	geocoder    Geocoder
	broadcaster *stream.Broadcaster
	metrics     *observability.Metrics
}

func NewHandler(store repository.Store, intake *pipeline.Intake, geocoder Geocoder, broadcaster *stream.Broadcaster, metrics *observability.Metrics) *Handler {
	return &Handler{
		store:       store,
		intake:      intake,
		geocoder:    geocoder,
		broadcaster: broadcaster,
		metrics:     metrics,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/reports", h.postReport)
	r.POST("/api/reports/document", h.postDocumentReport)
	r.GET("/api/emergencies/nearby", h.getEmergenciesNearby)
	r.GET("/api/resources/nearby", h.getResourcesNearby)
	r.GET("/api/volunteers/nearby", h.getVolunteersNearby)
	r.POST("/api/volunteers", h.postVolunteer)
	r.POST("/api/resources", h.postResource)
	r.GET("/api/volunteers/:id/dashboard", h.getVolunteerDashboard)
	r.GET("/api/stats", h.getStats)
	r.GET("/api/stream", h.streamEmergencies)
	r.GET("/health", h.health)
}

type emergencyPayload struct {
	ID         int64               `json:"id"`
	Location   string              `json:"location"`
	Latitude   float64             `json:"latitude"`
	Longitude  float64             `json:"longitude"`
	Narrative  string              `json:"narrative"`
	Type       string              `json:"type"`
	Confidence float64             `json:"confidence"`
	Entities   models.EntityBundle `json:"entities"`
	CreatedAt  time.Time           `json:"created_at"`
}

type reportResponse struct {
	emergencyPayload
	Dispatch notify.Receipt `json:"dispatch"`
}

func toPayload(e *models.Emergency) emergencyPayload {
	return emergencyPayload{
		ID:         e.ID,
		Location:   e.LocationLabel,
		Latitude:   e.Coordinate.Latitude,
		Longitude:  e.Coordinate.Longitude,
		Narrative:  e.Narrative,
		Type:       e.Type,
		Confidence: e.Confidence,
		Entities:   e.Entities,
		CreatedAt:  e.CreatedAt,
	}
}

func (h *Handler) postReport(c *gin.Context) {
	location := c.PostForm("location")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}

	audio, err := formFileBytes(c, "audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable audio upload"})
		return
	}
	image, err := formFileBytes(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable image upload"})
		return
	}

	coord, ok := h.geocode(c, location)
	if !ok {
		return
	}

	result, err := h.intake.Process(c.Request.Context(), pipeline.Submission{
		LocationLabel:   location,
		Coordinate:      coord,
		ReporterContact: c.PostForm("reporter_contact"),
		Input: pipeline.RawInput{
			Text:  c.PostForm("text"),
			Audio: audio,
			Image: image,
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reportResponse{
		emergencyPayload: toPayload(result.Record),
		Dispatch:         result.Dispatch,
	})
}

func (h *Handler) postDocumentReport(c *gin.Context) {
	var req struct {
		Location        string `json:"location"`
		Text            string `json:"text"`
		ReporterContact string `json:"reporter_contact"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "location is required"})
		return
	}

	coord, ok := h.geocode(c, req.Location)
	if !ok {
		return
	}

	result, err := h.intake.ProcessDocument(c.Request.Context(), pipeline.Submission{
		LocationLabel:   req.Location,
		Coordinate:      coord,
		ReporterContact: req.ReporterContact,
	}, req.Text)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reportResponse{
		emergencyPayload: toPayload(result.Record),
		Dispatch:         result.Dispatch,
	})
}

func (h *Handler) getEmergenciesNearby(c *gin.Context) {
	origin, radius, limit, ok := parseNearbyQuery(c)
	if !ok {
		return
	}

	filter := repository.Filter{}
	if t := c.Query("type"); t != "" {
		filter.Type = t
	}
	emergencies, err := h.store.ListEmergencies(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch emergencies"})
		return
	}

	byID := make(map[int64]models.Emergency, len(emergencies))
	candidates := make([]geo.Candidate, 0, len(emergencies))
	for _, e := range emergencies {
		byID[e.ID] = e
		candidates = append(candidates, geo.Candidate{ID: e.ID, Coordinate: e.Coordinate})
	}

	matches := h.nearest(origin, candidates, radius, limit)
	writeGeoJSON(c, newFeatureCollection(emergencyFeatures(matches, byID)))
}

func (h *Handler) getResourcesNearby(c *gin.Context) {
	origin, radius, limit, ok := parseNearbyQuery(c)
	if !ok {
		return
	}

	resources, err := h.store.ListResources(c.Request.Context(), repository.Filter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch resources"})
		return
	}

	byID := make(map[int64]models.Resource, len(resources))
	candidates := make([]geo.Candidate, 0, len(resources))
	for _, r := range resources {
		byID[r.ID] = r
		candidates = append(candidates, geo.Candidate{ID: r.ID, Coordinate: r.Coordinate})
	}

	matches := h.nearest(origin, candidates, radius, limit)
	writeGeoJSON(c, newFeatureCollection(resourceFeatures(matches, byID)))
}

func (h *Handler) getVolunteersNearby(c *gin.Context) {
	origin, radius, limit, ok := parseNearbyQuery(c)
	if !ok {
		return
	}

	volunteers, err := h.store.ListVolunteers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch volunteers"})
		return
	}

	byID := make(map[int64]models.Volunteer, len(volunteers))
	candidates := make([]geo.Candidate, 0, len(volunteers))
	for _, v := range volunteers {
		byID[v.ID] = v
		candidates = append(candidates, geo.Candidate{ID: v.ID, Coordinate: v.Coordinate})
	}

	matches := h.nearest(origin, candidates, radius, limit)
	writeGeoJSON(c, newFeatureCollection(volunteerFeatures(matches, byID)))
}

func (h *Handler) postVolunteer(c *gin.Context) {
	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		Location   string `json:"location"`
		Speciality string `json:"speciality"`
		Phone      string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, password, and location are required"})
		return
	}

	coord, ok := h.geocode(c, req.Location)
	if !ok {
		return
	}

	volunteer := &models.Volunteer{
		Name:           req.Name,
		Email:          req.Email,
		CredentialHash: hashCredential(req.Password),
		LocationLabel:  req.Location,
		Coordinate:     coord,
		Speciality:     req.Speciality,
		Phone:          req.Phone,
	}
	id, err := h.store.RegisterVolunteer(c.Request.Context(), volunteer)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) postResource(c *gin.Context) {
	var req struct {
		Amenity   string  `json:"amenity"`
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		OwnerID   int64   `json:"owner_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Amenity == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amenity and name are required"})
		return
	}

	resource := &models.Resource{
		Amenity:    req.Amenity,
		Name:       req.Name,
		Coordinate: models.Coordinate{Latitude: req.Latitude, Longitude: req.Longitude},
		OwnerID:    req.OwnerID,
	}
	id, err := h.store.AddResource(c.Request.Context(), resource)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) getVolunteerDashboard(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid volunteer id"})
		return
	}

	ctx := c.Request.Context()
	volunteer, err := h.store.GetVolunteer(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}

	emergencies, err := h.store.ListEmergencies(ctx, repository.Filter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch emergencies"})
		return
	}
	resources, err := h.store.ListResources(ctx, repository.Filter{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch resources"})
		return
	}
	owned, err := h.store.ResourcesByOwner(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch owned resources"})
		return
	}

	emergenciesByID := make(map[int64]models.Emergency, len(emergencies))
	emergencyCandidates := make([]geo.Candidate, 0, len(emergencies))
	for _, e := range emergencies {
		emergenciesByID[e.ID] = e
		emergencyCandidates = append(emergencyCandidates, geo.Candidate{ID: e.ID, Coordinate: e.Coordinate})
	}
	resourcesByID := make(map[int64]models.Resource, len(resources))
	resourceCandidates := make([]geo.Candidate, 0, len(resources))
	for _, r := range resources {
		resourcesByID[r.ID] = r
		resourceCandidates = append(resourceCandidates, geo.Candidate{ID: r.ID, Coordinate: r.Coordinate})
	}

	origin := volunteer.Coordinate
	nearbyEmergencies := h.nearest(origin, emergencyCandidates, defaultRadiusKM, defaultLimit)
	nearbyResources := h.nearest(origin, resourceCandidates, defaultRadiusKM, defaultLimit)

	ownedOut := make([]gin.H, 0, len(owned))
	for _, r := range owned {
		ownedOut = append(ownedOut, gin.H{
			"id":        r.ID,
			"amenity":   r.Amenity,
			"name":      r.Name,
			"latitude":  r.Coordinate.Latitude,
			"longitude": r.Coordinate.Longitude,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"volunteer": gin.H{
			"id":         volunteer.ID,
			"name":       volunteer.Name,
			"location":   volunteer.LocationLabel,
			"speciality": volunteer.Speciality,
		},
		"nearby_emergencies": newFeatureCollection(emergencyFeatures(nearbyEmergencies, emergenciesByID)),
		"nearby_resources":   newFeatureCollection(resourceFeatures(nearbyResources, resourcesByID)),
		"own_resources":      ownedOut,
	})
}

func (h *Handler) getStats(c *gin.Context) {
	counts, err := h.store.Counts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch counts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"emergencies": counts.Emergencies,
		"resources":   counts.Resources,
		"volunteers":  counts.Volunteers,
	})
}

// streamEmergencies serves the SSE feed. Each newly classified emergency is
// written as one "emergency" event; the stream ends when the client
// disconnects or the broadcaster shuts down.
func (h *Handler) streamEmergencies(c *gin.Context) {
	if h.broadcaster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "streaming disabled"})
		return
	}

	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case e, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent("emergency", toPayload(e))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// geocode resolves the label and writes the error response itself when the
// lookup fails.
func (h *Handler) geocode(c *gin.Context, label string) (models.Coordinate, bool) {
	coord, err := h.geocoder.Geocode(c.Request.Context(), label)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "location could not be resolved"})
		} else {
			writeError(c, err)
		}
		return models.Coordinate{}, false
	}
	return coord, true
}

func (h *Handler) nearest(origin models.Coordinate, candidates []geo.Candidate, radiusKM float64, limit int) []models.ProximityMatch {
	if h.metrics != nil {
		h.metrics.ProximityQueries.Inc()
	}
	return geo.Nearest(origin, candidates, radiusKM, limit)
}

func parseNearbyQuery(c *gin.Context) (models.Coordinate, float64, int, bool) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat is required"})
		return models.Coordinate{}, 0, 0, false
	}
	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lon is required"})
		return models.Coordinate{}, 0, 0, false
	}

	origin := models.Coordinate{Latitude: lat, Longitude: lon}
	if !origin.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coordinates out of range"})
		return models.Coordinate{}, 0, 0, false
	}

	radius := defaultRadiusKM
	if r := c.Query("radius_km"); r != "" {
		if parsed, err := strconv.ParseFloat(r, 64); err == nil {
			radius = parsed
		}
	}
	limit := defaultLimit
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxLimit {
			limit = parsed
		}
	}

	return origin, radius, limit, true
}

func writeGeoJSON(c *gin.Context, fc FeatureCollection) {
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNoInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "no report content provided"})
	case errors.Is(err, models.ErrInsufficientInput):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "report content yielded no usable narrative"})
	case errors.Is(err, models.ErrInvalidCoordinate):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "coordinates out of range"})
	case errors.Is(err, models.ErrDuplicateIdentity):
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, models.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "an upstream service is unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func hashCredential(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func formFileBytes(c *gin.Context, field string) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
