package server

import (
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListCategories handles GET /api/categories
// @Summary List categories
// @Tags posts
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (s *Server) ListCategories(c *fiber.Ctx) error {
	categories, err := s.posts.ListCategories(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(categories)
}

// ListPosts handles GET /api/posts
// @Summary List posts
// @Description Pinned posts first, then newest first
// @Tags posts
// @Produce json
// @Param category query string false "Category slug"
// @Param page query int false "Page number (1-based)"
// @Param limit query int false "Page size (default 20)"
// @Success 200 {object} service.PostPage
// @Failure 404 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) ListPosts(c *fiber.Ctx) error {
	page, err := s.posts.ListPosts(c.UserContext(), actorFrom(c), service.ListPostsInput{
		CategorySlug: c.Query("category"),
		Page:         c.QueryInt("page", 1),
		Limit:        c.QueryInt("limit", 0),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// GetPost handles GET /api/posts/:id
// @Summary Get a post
// @Description Returns the post and counts a view
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	post, err := s.posts.GetPost(c.UserContext(), actorFrom(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "Post"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req service.CreatePostInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	post, err := s.posts.CreatePost(c.UserContext(), actorFrom(c), req, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// UpdatePost handles PUT /api/posts/:id
// @Summary Edit a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body service.UpdatePostInput true "Changes"
// @Success 200 {object} models.Post
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [put]
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req service.UpdatePostInput
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	post, err := s.posts.UpdatePost(c.UserContext(), actorFrom(c), id, req, clientIP(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete a post
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} object{message=string}
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.posts.DeletePost(c.UserContext(), actorFrom(c), id, clientIP(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

type pinRequest struct {
	Pinned bool `json:"pinned"`
}

// PinPost handles PUT /api/admin/posts/:id/pin
// @Summary Pin or unpin a post
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Param request body pinRequest true "Pin state"
// @Success 200 {object} object{message=string,pinned=bool}
// @Failure 403 {object} models.ErrorResponse
// @Router /admin/posts/{id}/pin [put]
func (s *Server) PinPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}
	var req pinRequest
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := s.posts.SetPinned(c.UserContext(), actorFrom(c), id, req.Pinned, clientIP(c)); err != nil {
		return respondError(c, err)
	}
	msg := "Post unpinned"
	if req.Pinned {
		msg = "Post pinned"
	}
	return c.JSON(fiber.Map{"message": msg, "pinned": req.Pinned})
}
