package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/bookwormhq/bookworm-api/internal/config"
	"github.com/bookwormhq/bookworm-api/internal/queue"
	"github.com/bookwormhq/bookworm-api/internal/repository"
	queue_publisher "github.com/bookwormhq/bookworm-api/internal/service"
)

// ImageHost is the slice of the image store the book handlers need: upload
// a payload for a permanent URL, best-effort delete, and URL ownership
// checks so externally hosted images are never touched.
type ImageHost interface {
	Upload(ctx context.Context, payload string) (string, error)
	Delete(ctx context.Context, imageURL string) error
	Owns(imageURL string) bool
	Key(imageURL string) (string, bool)
}

// BookHandler bundles dependencies for the book post endpoints.
type BookHandler struct {
	Cfg    config.Config
	Books  *repository.BookRepo
	Images ImageHost

	// publishCleanup is swappable in tests; the default publishes to the
	// image.cleanup queue.
	publishCleanup func(ctx context.Context, ev queue.ImageCleanupEvent) error
}

func NewBookHandler(cfg config.Config, books *repository.BookRepo, images ImageHost) *BookHandler {
	return &BookHandler{
		Cfg:            cfg,
		Books:          books,
		Images:         images,
		publishCleanup: queue_publisher.PublishImageCleanup,
	}
}

type createBookReq struct {
	Title   string `json:"title"`
	Caption string `json:"caption"`
	Rating  int    `json:"rating"`
	Image   string `json:"image"` // base64 payload or data URI
}

type feedResp struct {
	Books       interface{} `json:"books"`
	CurrentPage int         `json:"currentPage"`
	TotalBooks  int64       `json:"totalBooks"`
	TotalPages  int64       `json:"totalPages"`
}

// Create handles POST /api/books.  The image payload is uploaded to the
// object store first; only the resulting permanent URL is persisted.
func (h *BookHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var req createBookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if req.Title == "" || req.Caption == "" || req.Rating == 0 || req.Image == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "please provide all fields"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "rating must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	imageURL, err := h.Images.Upload(ctx, req.Image)
	if err != nil {
		log.Printf("book create: image upload failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "image upload failed"})
	}

	book, err := h.Books.Create(ctx, req.Title, req.Caption, req.Rating, imageURL, userID)
	if err != nil {
		log.Printf("book create: insert failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	return c.JSON(http.StatusCreated, book)
}

// List handles GET /api/books?page&limit — the shared feed, newest first,
// each item carrying the owner's username and avatar.  A page past the end
// yields an empty list with the totals unchanged.
func (h *BookHandler) List(c echo.Context) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 5)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, total, err := h.Books.ListPage(ctx, page, limit)
	if err != nil {
		log.Printf("book list: query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}

	totalPages := (total + int64(limit) - 1) / int64(limit)
	return c.JSON(http.StatusOK, feedResp{
		Books:       items,
		CurrentPage: page,
		TotalBooks:  total,
		TotalPages:  totalPages,
	})
}

// ListMine handles GET /api/books/user — all posts of the authenticated
// user, newest first, without pagination.
func (h *BookHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	books, err := h.Books.ListByOwner(ctx, userID)
	if err != nil {
		log.Printf("book list mine: query failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	return c.JSON(http.StatusOK, books)
}

// Delete handles DELETE /api/books/:id.  Only the owner may delete a post.
// If the stored cover lives on our image host it is deleted best-effort: a
// failure is logged and handed to the cleanup queue, and never blocks the
// deletion of the post record itself.
func (h *BookHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	book, err := h.Books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		log.Printf("book delete: load failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	if book.UserID != userID {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized access"})
	}

	if h.Images.Owns(book.Image) {
		if err := h.Images.Delete(ctx, book.Image); err != nil {
			log.Printf("book delete: image cleanup failed for book %d: %v", book.ID, err)
			if key, ok := h.Images.Key(book.Image); ok {
				_ = h.publishCleanup(ctx, queue.ImageCleanupEvent{
					BookID:      book.ID,
					ObjectKey:   key,
					ImageURL:    book.Image,
					RequestedAt: time.Now().UTC().Format(time.RFC3339),
				})
			}
		}
	}

	if err := h.Books.DeleteByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrBookNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		}
		log.Printf("book delete: delete failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "book deleted successfully"})
}

// queryInt parses an integer query parameter, returning def when the
// parameter is absent or malformed.
func queryInt(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
