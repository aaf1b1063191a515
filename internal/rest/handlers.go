package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/KilimcininKorOglu/obaschema/internal/config"
	"github.com/KilimcininKorOglu/obaschema/internal/ingest"
	"github.com/KilimcininKorOglu/obaschema/internal/schema"
)

// Reloader rebuilds the published schema on demand.
type Reloader interface {
	Reload(ctx context.Context) (bool, error)
}

// Handlers serves the registry held by an ingest.Holder. Every request
// reads the schema current at its start.
type Handlers struct {
	holder    *ingest.Holder
	reloader  Reloader
	manager   *config.Manager
	version   string
	startTime time.Time
}

// NewHandlers creates handlers for holder.
func NewHandlers(holder *ingest.Holder, version string) *Handlers {
	return &Handlers{holder: holder, version: version, startTime: time.Now()}
}

// SetReloader enables POST /api/v1/schema/reload.
func (h *Handlers) SetReloader(r Reloader) {
	h.reloader = r
}

// SetConfigManager enables GET /api/v1/config.
func (h *Handlers) SetConfigManager(m *config.Manager) {
	h.manager = m
}

// HandleHealth handles GET /health
func (h *Handlers) HandleHealth(c *gin.Context) {
	s := h.holder.Load()
	c.JSON(http.StatusOK, HealthResponse{
		Status:         "ok",
		Version:        h.version,
		Uptime:         time.Since(h.startTime).Round(time.Second).String(),
		StartTime:      h.startTime,
		SchemaLoadedAt: s.LoadedAt,
		PassID:         s.Report.PassID,
		AttributeTypes: s.Registry.NumAttributeTypes(),
		ObjectClasses:  s.Registry.NumObjectClasses(),
	})
}

// ListObjectClasses handles GET /api/v1/schema/objectclasses
func (h *Handlers) ListObjectClasses(c *gin.Context) {
	classes := h.holder.Load().Registry.ObjectClasses()
	out := make([]ObjectClassJSON, len(classes))
	for i, oc := range classes {
		out[i] = convertObjectClass(oc)
	}
	success(c, out)
}

// GetObjectClass handles GET /api/v1/schema/objectclasses/:name
func (h *Handlers) GetObjectClass(c *gin.Context) {
	name := c.Param("name")
	oc, ok := h.holder.Load().Registry.ObjectClass(name)
	if !ok {
		fail(c, http.StatusNotFound, "object class not found", ErrorItem{
			Field:   name,
			Code:    schema.CodeObjectClassNotFound.String(),
			Message: "no object class with this name or OID",
		})
		return
	}
	success(c, convertObjectClass(oc))
}

// ListAttributeTypes handles GET /api/v1/schema/attributetypes
// ?usage=user limits the list to user attributes.
func (h *Handlers) ListAttributeTypes(c *gin.Context) {
	userOnly := c.Query("usage") == "user"
	types := h.holder.Load().Registry.AttributeTypes()
	out := make([]AttributeTypeJSON, 0, len(types))
	for _, at := range types {
		if userOnly && at.IsOperational() {
			continue
		}
		out = append(out, convertAttributeType(at))
	}
	success(c, out)
}

// GetAttributeType handles GET /api/v1/schema/attributetypes/:name
func (h *Handlers) GetAttributeType(c *gin.Context) {
	name := c.Param("name")
	at, ok := h.holder.Load().Registry.AttributeType(name)
	if !ok {
		fail(c, http.StatusNotFound, "attribute type not found", ErrorItem{
			Field:   name,
			Code:    schema.CodeAttributeTypeNotFound.String(),
			Message: "no attribute type with this name or OID",
		})
		return
	}
	success(c, convertAttributeType(at))
}

// ListMatchingRules handles GET /api/v1/schema/matchingrules
func (h *Handlers) ListMatchingRules(c *gin.Context) {
	rules := h.holder.Load().Catalog.MatchingRules()
	out := make([]MatchingRuleJSON, len(rules))
	for i, mr := range rules {
		out[i] = MatchingRuleJSON{OID: mr.OID, Names: mr.Names, Syntax: mr.Syntax}
	}
	success(c, out)
}

// ListSyntaxes handles GET /api/v1/schema/syntaxes
func (h *Handlers) ListSyntaxes(c *gin.Context) {
	syntaxes := h.holder.Load().Catalog.Syntaxes()
	out := make([]SyntaxJSON, len(syntaxes))
	for i, s := range syntaxes {
		out[i] = SyntaxJSON{OID: s.OID, Description: s.Description, Validated: s.Validator != nil}
	}
	success(c, out)
}

// GetReport handles GET /api/v1/schema/report
func (h *Handlers) GetReport(c *gin.Context) {
	success(c, convertReport(h.holder.Load().Report))
}

// ValidateEntry handles POST /api/v1/schema/validate-entry
func (h *Handlers) ValidateEntry(c *gin.Context) {
	var req ValidateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body", ErrorItem{Message: err.Error()})
		return
	}

	entry := schema.NewEntry(req.DN)
	for name, values := range req.Attributes {
		entry.SetStringAttribute(name, values...)
	}

	validator := schema.NewValidator(h.holder.Load().Registry)
	if err := validator.ValidateEntry(entry); err != nil {
		status, item := mapSchemaError(err)
		fail(c, status, "entry violates the schema", item)
		return
	}
	success(c, ValidateEntryResponse{DN: req.DN, Valid: true})
}

// Reload handles POST /api/v1/schema/reload
func (h *Handlers) Reload(c *gin.Context) {
	if h.reloader == nil {
		fail(c, http.StatusNotImplemented, "reload is not enabled")
		return
	}
	swapped, err := h.reloader.Reload(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, "reload failed", ErrorItem{Message: err.Error()})
		return
	}
	success(c, ReloadResponse{Swapped: swapped, PassID: h.holder.Load().Report.PassID})
}
