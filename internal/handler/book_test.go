package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookwormhq/bookworm-api/internal/queue"
	"github.com/bookwormhq/bookworm-api/internal/repository"
)

const imageBase = "https://img.test"

type fakeImages struct {
	uploadURL string
	uploadErr error
	deleteErr error
	deleted   []string
}

func (f *fakeImages) Upload(_ context.Context, _ string) (string, error) {
	return f.uploadURL, f.uploadErr
}

func (f *fakeImages) Delete(_ context.Context, imageURL string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, imageURL)
	return nil
}

func (f *fakeImages) Owns(imageURL string) bool {
	return strings.HasPrefix(imageURL, imageBase+"/")
}

func (f *fakeImages) Key(imageURL string) (string, bool) {
	if !f.Owns(imageURL) {
		return "", false
	}
	return strings.TrimPrefix(imageURL, imageBase+"/"), true
}

func newBookHandler(t *testing.T, images *fakeImages) (*BookHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	h := NewBookHandler(testConfig(), repository.NewBookRepo(db), images)
	h.publishCleanup = func(context.Context, queue.ImageCleanupEvent) error { return nil }
	return h, mock
}

// bookRequest builds an authenticated request context the way the JWT
// middleware leaves it: user_id stashed on the echo context.
func bookRequest(t *testing.T, method, target, body string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	return c, rec
}

func TestCreateBookMissingFields(t *testing.T) {
	h, _ := newBookHandler(t, &fakeImages{})

	for _, body := range []string{
		`{"caption":"c","rating":4,"image":"aGk="}`,
		`{"title":"t","rating":4,"image":"aGk="}`,
		`{"title":"t","caption":"c","image":"aGk="}`,
		`{"title":"t","caption":"c","rating":4}`,
	} {
		c, rec := bookRequest(t, http.MethodPost, "/api/books", body, 1)
		require.NoError(t, h.Create(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "please provide all fields", message(t, rec))
	}
}

func TestCreateBookRatingRange(t *testing.T) {
	h, _ := newBookHandler(t, &fakeImages{})

	c, rec := bookRequest(t, http.MethodPost, "/api/books", `{"title":"t","caption":"c","rating":6,"image":"aGk="}`, 1)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookUploadsThenPersists(t *testing.T) {
	images := &fakeImages{uploadURL: imageBase + "/books/2026/09/01/abc"}
	h, mock := newBookHandler(t, images)

	mock.ExpectExec("INSERT INTO books").
		WithArgs("Dune", "a classic", 5, images.uploadURL, uint64(3), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(11, 1))

	c, rec := bookRequest(t, http.MethodPost, "/api/books",
		`{"title":"Dune","caption":"a classic","rating":5,"image":"aGVsbG8="}`, 3)
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var book struct {
		ID     uint64 `json:"id"`
		Title  string `json:"title"`
		Image  string `json:"image"`
		UserID uint64 `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &book))
	assert.Equal(t, uint64(11), book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, images.uploadURL, book.Image, "stored record must reference the hosted URL")
	assert.Equal(t, uint64(3), book.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookUploadFailure(t *testing.T) {
	h, _ := newBookHandler(t, &fakeImages{uploadErr: errors.New("bucket down")})

	c, rec := bookRequest(t, http.MethodPost, "/api/books",
		`{"title":"Dune","caption":"a classic","rating":5,"image":"aGVsbG8="}`, 3)
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func feedRows(n int, start int) *sqlmock.Rows {
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "title", "caption", "rating", "image", "user_id", "created_at", "updated_at", "username", "profile_image"})
	for i := 0; i < n; i++ {
		id := start - i
		rows.AddRow(id, "title", "caption", 4, imageBase+"/k", 1, now.Add(-time.Duration(i)*time.Minute), now, "reader", "https://avatars.test/reader")
	}
	return rows
}

func TestListFirstPageDefaults(t *testing.T) {
	h, mock := newBookHandler(t, &fakeImages{})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM books")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("SELECT b.id, b.title").
		WithArgs(5, 0).
		WillReturnRows(feedRows(5, 12))

	c, rec := bookRequest(t, http.MethodGet, "/api/books", "", 1)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Books       []map[string]any `json:"books"`
		CurrentPage int              `json:"currentPage"`
		TotalBooks  int64            `json:"totalBooks"`
		TotalPages  int64            `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Books, 5)
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Equal(t, int64(12), resp.TotalBooks)
	assert.Equal(t, int64(3), resp.TotalPages)

	owner, ok := resp.Books[0]["user"].(map[string]any)
	require.True(t, ok, "feed items must embed the owner projection")
	assert.Equal(t, "reader", owner["username"])
	assert.Equal(t, "https://avatars.test/reader", owner["profileImage"])
	assert.Len(t, owner, 2, "owner projection must expose only username and avatar")
}

func TestListPagePastEnd(t *testing.T) {
	h, mock := newBookHandler(t, &fakeImages{})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM books")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("SELECT b.id, b.title").
		WithArgs(5, 15).
		WillReturnRows(feedRows(0, 0))

	c, rec := bookRequest(t, http.MethodGet, "/api/books?page=4&limit=5", "", 1)
	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Books      []any `json:"books"`
		TotalBooks int64 `json:"totalBooks"`
		TotalPages int64 `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Books)
	assert.Equal(t, int64(12), resp.TotalBooks)
	assert.Equal(t, int64(3), resp.TotalPages, "totalPages must not change past the end")
}

func TestListMine(t *testing.T) {
	h, mock := newBookHandler(t, &fakeImages{})
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id,title,caption,rating,image,user_id,created_at,updated_at").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "caption", "rating", "image", "user_id", "created_at", "updated_at"}).
			AddRow(5, "mine", "c", 4, imageBase+"/k5", 3, now, now))

	c, rec := bookRequest(t, http.MethodGet, "/api/books/user", "", 3)
	require.NoError(t, h.ListMine(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var books []struct {
		Title  string `json:"title"`
		UserID uint64 `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &books))
	require.Len(t, books, 1)
	assert.Equal(t, "mine", books[0].Title)
	assert.Equal(t, uint64(3), books[0].UserID)
}

func deleteRequest(t *testing.T, h *BookHandler, bookID string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	c, rec := bookRequest(t, http.MethodDelete, "/api/books/"+bookID, "", userID)
	c.SetParamNames("id")
	c.SetParamValues(bookID)
	return c, rec
}

func expectBookRow(mock sqlmock.Sqlmock, id, ownerID uint64, image string) {
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,title,caption,rating,image,user_id,created_at,updated_at FROM books WHERE id=? LIMIT 1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "caption", "rating", "image", "user_id", "created_at", "updated_at"}).
			AddRow(id, "t", "c", 4, image, ownerID, now, now))
}

func TestDeleteBookNotFound(t *testing.T) {
	h, mock := newBookHandler(t, &fakeImages{})

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id,title,caption,rating,image,user_id,created_at,updated_at FROM books WHERE id=? LIMIT 1")).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	c, rec := deleteRequest(t, h, "99", 3)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteBookNonOwner(t *testing.T) {
	images := &fakeImages{}
	h, mock := newBookHandler(t, images)

	// Owned by user 7, requested by user 3: the post and its image must
	// both survive (no DELETE statement is expected on the mock).
	expectBookRow(mock, 11, 7, imageBase+"/k11")

	c, rec := deleteRequest(t, h, "11", 3)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, images.deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookByOwner(t *testing.T) {
	images := &fakeImages{}
	h, mock := newBookHandler(t, images)

	expectBookRow(mock, 11, 3, imageBase+"/k11")
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id=?")).
		WithArgs(uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := deleteRequest(t, h, "11", 3)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{imageBase + "/k11"}, images.deleted)
}

func TestDeleteBookExternalImageLeftAlone(t *testing.T) {
	images := &fakeImages{}
	h, mock := newBookHandler(t, images)

	expectBookRow(mock, 11, 3, "https://elsewhere.example/pic.png")
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id=?")).
		WithArgs(uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := deleteRequest(t, h, "11", 3)
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, images.deleted, "images hosted elsewhere are never touched")
}

func TestDeleteBookImageCleanupFailureIsNonFatal(t *testing.T) {
	images := &fakeImages{deleteErr: errors.New("bucket down")}
	h, mock := newBookHandler(t, images)

	var published []queue.ImageCleanupEvent
	h.publishCleanup = func(_ context.Context, ev queue.ImageCleanupEvent) error {
		published = append(published, ev)
		return nil
	}

	expectBookRow(mock, 11, 3, imageBase+"/k11")
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM books WHERE id=?")).
		WithArgs(uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := deleteRequest(t, h, "11", 3)
	require.NoError(t, h.Delete(c))

	// The record deletion succeeds with a single 200 response; the failed
	// image delete is handed to the cleanup queue instead of aborting.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "book deleted successfully", message(t, rec))
	require.Len(t, published, 1)
	assert.Equal(t, uint64(11), published[0].BookID)
	assert.Equal(t, "k11", published[0].ObjectKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}
