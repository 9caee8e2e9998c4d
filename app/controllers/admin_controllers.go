package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gtera/thiwa/app/models"
	"github.com/gtera/thiwa/internal/archive"
	"github.com/gtera/thiwa/internal/remote"
	"github.com/gtera/thiwa/internal/shop"
	"github.com/gtera/thiwa/pkg/cache"
	"github.com/gtera/thiwa/pkg/ctx"
	"github.com/gtera/thiwa/pkg/logger"
	"github.com/gtera/thiwa/pkg/middleware"
	"github.com/gtera/thiwa/pkg/response"
	"github.com/gtera/thiwa/pkg/storage"
)

// AdminController serves the token-guarded admin API: catalogue and gallery
// management, order views, settings, image uploads, and the archive report.
type AdminController struct {
	store   *shop.Store
	archive *archive.Archive
}

func NewAdminController(store *shop.Store, a *archive.Archive) *AdminController {
	return &AdminController{store: store, archive: a}
}

// ─── Catalogue management ─────────────────────────────────────────────────────

func (ac *AdminController) CreateProduct(c *ctx.Context) {
	var p models.Product
	if !c.BindJSON(&p) {
		return
	}
	id, err := ac.store.AddProduct(c.Context(), p)
	if err != nil {
		respondShopError(c, err)
		return
	}
	c.Created(map[string]string{"id": id})
}

func (ac *AdminController) UpdateProduct(c *ctx.Context) {
	raw, err := c.Body()
	if err != nil {
		c.Error(http.StatusBadRequest, "unreadable body")
		return
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		c.Error(http.StatusBadRequest, "invalid JSON")
		return
	}
	delete(fields, "id")

	if err := ac.store.UpdateProduct(c.Context(), c.Param("id"), fields); err != nil {
		if errors.Is(err, remote.ErrNotFound) {
			c.NotFound("product not found")
			return
		}
		respondShopError(c, err)
		return
	}
	c.Success(map[string]string{"id": c.Param("id")})
}

func (ac *AdminController) DeleteProduct(c *ctx.Context) {
	if err := ac.store.RemoveProduct(c.Context(), c.Param("id")); err != nil {
		respondShopError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ─── Gallery management ───────────────────────────────────────────────────────

type galleryInput struct {
	Image string `json:"image" validate:"required"`
}

func (ac *AdminController) AddGalleryImage(c *ctx.Context) {
	var in galleryInput
	if !c.BindJSON(&in) {
		return
	}
	id, err := ac.store.AddGalleryImage(c.Context(), in.Image)
	if err != nil {
		respondShopError(c, err)
		return
	}
	c.Created(map[string]string{"id": id})
}

func (ac *AdminController) DeleteGalleryImage(c *ctx.Context) {
	if err := ac.store.RemoveGalleryImage(c.Context(), c.Param("id")); err != nil {
		respondShopError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ─── Orders ───────────────────────────────────────────────────────────────────

// Orders returns the live order list from the synced collection, newest first.
func (ac *AdminController) Orders(c *ctx.Context) {
	c.Success(ac.store.Orders())
}

// Report serves one page of the relational order archive. Pages are cached
// briefly so a dashboard polling the report does not hammer the database.
func (ac *AdminController) Report(c *ctx.Context) {
	if ac.archive == nil {
		c.Error(http.StatusServiceUnavailable, "report unavailable")
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "20"))

	type cached struct {
		Records    []archive.OrderRecord `json:"records"`
		Pagination response.Pagination   `json:"pagination"`
	}
	key := fmt.Sprintf("archive:report:%d:%d", page, perPage)

	var hit cached
	if cache.Get(key, &hit) {
		response.Paginated(c.W, hit.Records, hit.Pagination)
		return
	}

	records, total, err := ac.archive.Report(page, perPage)
	if err != nil {
		c.Error(http.StatusInternalServerError, "report unavailable")
		return
	}
	p := response.NewPagination(page, perPage, total)
	_ = cache.Set(key, cached{Records: records, Pagination: p}, 30*time.Second)
	response.Paginated(c.W, records, p)
}

// Revenue sums archived order totals, optionally since ?from=RFC3339.
func (ac *AdminController) Revenue(c *ctx.Context) {
	if ac.archive == nil {
		c.Error(http.StatusServiceUnavailable, "revenue unavailable")
		return
	}
	var since time.Time
	if from := c.Query("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			c.Error(http.StatusBadRequest, "from must be RFC3339")
			return
		}
		since = t
	}

	sum, err := ac.archive.Revenue(since)
	if err != nil {
		c.Error(http.StatusInternalServerError, "revenue unavailable")
		return
	}
	c.Success(map[string]int64{"revenue": sum})
}

// ─── Settings ─────────────────────────────────────────────────────────────────

type paymentInput struct {
	Text string `json:"text" validate:"required"`
}

func (ac *AdminController) UpdatePaymentInstructions(c *ctx.Context) {
	var in paymentInput
	if !c.BindJSON(&in) {
		return
	}
	if err := ac.store.UpdatePaymentInstructions(c.Context(), in.Text); err != nil {
		respondShopError(c, err)
		return
	}
	c.Success(map[string]string{"text": in.Text})
}

type credentialsInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

func (ac *AdminController) UpdateCredentials(c *ctx.Context) {
	var in credentialsInput
	if !c.BindJSON(&in) {
		return
	}
	if err := ac.store.UpdateAdminCredentials(c.Context(), in.Username, in.Password); err != nil {
		respondShopError(c, err)
		return
	}
	if claims, ok := middleware.ClaimsFrom(c.Context()); ok {
		logger.WithCtx(c.Context()).Info("admin credentials rotated",
			"by", claims.Username, "username", in.Username)
	}
	c.Success(map[string]string{"username": in.Username})
}

// ─── Uploads ──────────────────────────────────────────────────────────────────

const maxUploadBytes = 8 << 20 // 8 MB

// Upload stores a product or gallery image on the configured storage disk
// and returns the path and public URL to attach to a document.
func (ac *AdminController) Upload(c *ctx.Context) {
	if err := c.R.ParseMultipartForm(maxUploadBytes); err != nil {
		c.Error(http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := c.R.FormFile("image")
	if err != nil {
		c.Error(http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		c.Error(http.StatusUnsupportedMediaType, "unsupported image type")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		c.Error(http.StatusBadRequest, "unreadable upload")
		return
	}

	path := fmt.Sprintf("uploads/%d%s", time.Now().UnixNano(), ext)
	if err := storage.Put(path, data); err != nil {
		c.Error(http.StatusInternalServerError, "could not store image")
		return
	}

	c.Created(map[string]string{
		"path": path,
		"url":  storage.URL(path),
	})
}
