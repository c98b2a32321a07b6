package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/exhibit-hub/booking-api/internal/core/ports"
)

// imageField is the multipart field carrying exhibit pictures.
const imageField = "image"

// PostHandler handles the catalog routes.
type PostHandler struct {
	service ports.CatalogService
}

func NewPostHandler(service ports.CatalogService) *PostHandler {
	return &PostHandler{service: service}
}

// List handles GET /posts.
//
// @Summary      List exhibits
// @Tags         posts
// @Produce      json
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Param        search  query     string  false  "Case-insensitive match on title or content"
// @Success      200     {object}  exhibitPageResponse
// @Failure      400     {object}  map[string]string
// @Router       /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	page, err := pageParams(c)
	if err != nil {
		return err
	}

	out, err := h.service.List(c.Request().Context(), ports.PostFilter{Search: c.QueryParam("search"), Page: page})
	if err != nil {
		return err
	}

	exhibits := make([]exhibitResponse, 0, len(out.Items))
	for _, p := range out.Items {
		exhibits = append(exhibits, toExhibit(p))
	}
	return c.JSON(http.StatusOK, exhibitPageResponse{Exhibits: exhibits, Total: out.Total, Page: out.Page, Limit: out.Limit})
}

// Get handles GET /posts/:id.
//
// @Summary      Get an exhibit
// @Tags         posts
// @Produce      json
// @Param        id   path      string  true  "Post id"
// @Success      200  {object}  exhibitEnvelope
// @Failure      404  {object}  map[string]string
// @Router       /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	post, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exhibitEnvelope{Exhibit: toExhibit(post)})
}

// Create handles POST /admin/posts.
//
// @Summary      Create an exhibit
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        title    formData  string  true  "Title"
// @Param        content  formData  string  true  "Description"
// @Param        image    formData  file    true  "Up to 3 images"
// @Success      201      {object}  exhibitEnvelope
// @Failure      400      {object}  map[string]string
// @Failure      403      {object}  map[string]string
// @Router       /admin/posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	uploads, closeAll, err := formImages(c)
	if err != nil {
		return err
	}
	defer closeAll()

	post, err := h.service.Create(c.Request().Context(), user, ports.CreatePostInput{
		Title:   c.FormValue("title"),
		Content: c.FormValue("content"),
		Images:  uploads,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, exhibitEnvelope{Message: "Post created successfully", Exhibit: toExhibit(post)})
}

// Update handles PUT /admin/posts/:id.
//
// @Summary      Update an exhibit
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        id       path      string  true   "Post id"
// @Param        title    formData  string  false  "Title"
// @Param        content  formData  string  false  "Description"
// @Param        image    formData  file    false  "Replacement images (up to 3)"
// @Success      200      {object}  exhibitEnvelope
// @Failure      403      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Router       /admin/posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}

	uploads, closeAll, err := formImages(c)
	if err != nil {
		return err
	}
	defer closeAll()

	in := ports.UpdatePostInput{Images: uploads}
	if v := c.FormValue("title"); v != "" {
		in.Title = &v
	}
	if v := c.FormValue("content"); v != "" {
		in.Content = &v
	}

	post, err := h.service.Update(c.Request().Context(), user, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, exhibitEnvelope{Message: "Post updated successfully", Exhibit: toExhibit(post)})
}

// Delete handles DELETE /admin/posts/:id.
//
// @Summary      Delete an exhibit
// @Tags         admin
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Post id"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /admin/posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	user, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), user, c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Post deleted successfully"})
}

// formImages opens every file sent under imageField. The returned func closes
// them. A request without a multipart body yields no uploads.
func formImages(c echo.Context) ([]ports.Upload, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, nil, invalidInput("malformed multipart form")
	}

	var (
		uploads []ports.Upload
		files   []io.Closer
	)
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	for _, fh := range form.File[imageField] {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, nil, invalidInput("unreadable image " + fh.Filename)
		}
		files = append(files, f)
		uploads = append(uploads, ports.Upload{
			Filename:    fh.Filename,
			ContentType: contentType(fh),
			Body:        f,
		})
	}
	return uploads, closeAll, nil
}

func contentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get(echo.HeaderContentType); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
