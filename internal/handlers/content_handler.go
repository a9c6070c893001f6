package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"siteforge/internal/models"
	"siteforge/internal/repository"
)

// ContentHandler serves CRUD routes for one tenant-scoped content
// collection. T is the concrete document type; the pointer constraint gives
// access to the shared Meta methods for ids and timestamps.
//
// Which tenant database a request addresses is decided by the store's
// resolver: the shared platform server honours the `tenant` query
// parameter, a dedicated tenant server ignores it and always serves its
// fixed database.
type ContentHandler[T any, P interface {
	*T
	models.Entity
}] struct {
	store      repository.ContentStore
	collection string
}

// NewContentHandler creates a handler bound to one collection.
func NewContentHandler[T any, P interface {
	*T
	models.Entity
}](store repository.ContentStore, collection string) *ContentHandler[T, P] {
	return &ContentHandler[T, P]{
		store:      store,
		collection: collection,
	}
}

// Mount registers the CRUD routes on a router group. Reads are always open;
// writes go through the auth middleware when one is given.
func (h *ContentHandler[T, P]) Mount(group *gin.RouterGroup, auth gin.HandlerFunc) {
	group.GET("", h.List)
	group.GET("/:docId", h.Get)

	writes := group.Group("")
	if auth != nil {
		writes.Use(auth)
	}
	writes.POST("", h.Create)
	writes.PUT("/:docId", h.Update)
	writes.DELETE("/:docId", h.Delete)
}

// Create inserts a new document.
func (h *ContentHandler[T, P]) Create(c *gin.Context) {
	var doc T
	if err := c.ShouldBindJSON(&doc); err != nil {
		ValidationErrorResponse(c, bindingErrors(err))
		return
	}
	P(&doc).Stamp(time.Now().UTC(), true)

	id, err := h.store.Create(c.Request.Context(), tenantOf(c), h.collection, &doc)
	if err != nil {
		HandleServiceError(c, err)
		return
	}
	P(&doc).SetID(id)

	SuccessResponse(c, http.StatusCreated, "Created", &doc)
}

// List returns all documents of the collection ordered by their ordering
// field.
func (h *ContentHandler[T, P]) List(c *gin.Context) {
	var docs []T
	if err := h.store.List(c.Request.Context(), tenantOf(c), h.collection, &docs); err != nil {
		HandleServiceError(c, err)
		return
	}
	if docs == nil {
		docs = []T{}
	}
	SuccessResponse(c, http.StatusOK, "Retrieved", docs)
}

// Get returns one document by id. A malformed id is indistinguishable from
// a missing document to the caller: both are 404.
func (h *ContentHandler[T, P]) Get(c *gin.Context) {
	id, ok := h.parseDocID(c)
	if !ok {
		return
	}

	var doc T
	if err := h.store.Get(c.Request.Context(), tenantOf(c), h.collection, id, &doc); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Retrieved", &doc)
}

// Update overwrites a document's fields. Last writer wins.
func (h *ContentHandler[T, P]) Update(c *gin.Context) {
	id, ok := h.parseDocID(c)
	if !ok {
		return
	}

	var doc T
	if err := c.ShouldBindJSON(&doc); err != nil {
		ValidationErrorResponse(c, bindingErrors(err))
		return
	}
	P(&doc).Stamp(time.Now().UTC(), false)

	if err := h.store.Update(c.Request.Context(), tenantOf(c), h.collection, id, &doc); err != nil {
		HandleServiceError(c, err)
		return
	}
	P(&doc).SetID(id)

	SuccessResponse(c, http.StatusOK, "Updated", &doc)
}

// Delete removes one document by id.
func (h *ContentHandler[T, P]) Delete(c *gin.Context) {
	id, ok := h.parseDocID(c)
	if !ok {
		return
	}

	if err := h.store.Delete(c.Request.Context(), tenantOf(c), h.collection, id); err != nil {
		HandleServiceError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "Deleted", nil)
}

func (h *ContentHandler[T, P]) parseDocID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("docId"))
	if err != nil {
		HandleServiceError(c, repository.ErrNotFound)
		return primitive.NilObjectID, false
	}
	return id, true
}

// tenantOf extracts the tenant identifier a CRUD request addresses. Empty
// means "resolver default": the fallback tenant in shared mode, the fixed
// database in dedicated mode.
func tenantOf(c *gin.Context) string {
	return c.Query("tenant")
}
