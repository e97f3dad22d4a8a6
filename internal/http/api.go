package http

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/Manidoux41/blog-next/internal/auth"
	"github.com/Manidoux41/blog-next/internal/domain"
	"github.com/Manidoux41/blog-next/internal/service"
	"github.com/Manidoux41/blog-next/internal/storage"
)

const claimsKey = "session_claims"

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	posts   service.PostService
	users   service.UserService
	tokens  *auth.TokenManager
	storage storage.Service
	logger  *logrus.Logger
}

func NewHandler(posts service.PostService, users service.UserService, tokens *auth.TokenManager, store storage.Service, logger *logrus.Logger) *Handler {
	return &Handler{
		posts:   posts,
		users:   users,
		tokens:  tokens,
		storage: store,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.register)
		api.POST("/auth/login", h.login)
		api.POST("/auth/logout", h.logout)

		api.GET("/posts", h.listPosts)
		api.GET("/posts/slug/:slug", h.getPostBySlug)
		api.GET("/categories", h.listCategories)
		api.GET("/categories/:slug/posts", h.listPostsByCategory)
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		authed := api.Group("", h.requireSession)
		{
			authed.POST("/posts", h.createPost)
			authed.PUT("/posts/:id", h.updatePost)
			authed.PATCH("/posts", h.reorderPosts)
			authed.POST("/upload", h.upload)
		}

		admin := api.Group("/admin", h.requireSession, h.requireAdmin)
		{
			admin.GET("/posts", h.listAllPosts)
		}
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requireSession fails closed: no resolvable, unexpired token means no
// operation proceeds. It does not check resource ownership; any
// authenticated user may mutate any post.
func (h *Handler) requireSession(c *gin.Context) {
	token := bearerToken(c)
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope("Unauthorized"))
		return
	}

	claims, err := h.tokens.Resolve(token)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorEnvelope("Unauthorized"))
		return
	}

	c.Set(claimsKey, claims)
	c.Next()
}

func (h *Handler) requireAdmin(c *gin.Context) {
	claims := sessionClaims(c)
	if claims.Role != domain.RoleAdmin {
		c.AbortWithStatusJSON(http.StatusForbidden, errorEnvelope("Forbidden"))
		return
	}
	c.Next()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
}

func sessionClaims(c *gin.Context) auth.Claims {
	value, ok := c.Get(claimsKey)
	if !ok {
		return auth.Claims{}
	}
	claims, _ := value.(auth.Claims)
	return claims
}

func (h *Handler) register(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")

	userID, err := h.users.Register(c.Request.Context(), name, email, password)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "userId": userID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Missing credentials"))
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	token, err := h.tokens.Issue(auth.Claims{
		UserID:      user.ID,
		Role:        user.Role,
		IsConnected: user.IsConnected,
	})
	if err != nil {
		h.logger.Errorf("issue token: %v", err)
		c.JSON(http.StatusInternalServerError, errorEnvelope("Internal server error"))
		return
	}

	c.JSON(http.StatusOK, dataEnvelope(gin.H{
		"token": token,
		"user":  userToResponse(user),
	}))
}

// logout clears the connected flag when the token still resolves. Signing
// out twice, or with an expired token, is not an error.
func (h *Handler) logout(c *gin.Context) {
	if token := bearerToken(c); token != "" {
		if claims, err := h.tokens.Resolve(token); err == nil {
			if err := h.users.Disconnect(c.Request.Context(), claims.UserID); err != nil {
				h.logger.Warnf("disconnect user %s: %v", claims.UserID, err)
			}
		}
	}
	c.JSON(http.StatusOK, dataEnvelope(nil))
}

func postInputFromForm(c *gin.Context) service.PostInput {
	return service.PostInput{
		Title:       c.PostForm("title"),
		Slug:        c.PostForm("slug"),
		Content:     c.PostForm("content"),
		ImageURL:    c.PostForm("imageUrl"),
		Published:   c.PostForm("published") == "true",
		Featured:    c.PostForm("featured") == "true",
		CategoryIDs: c.PostFormArray("categories"),
	}
}

func (h *Handler) createPost(c *gin.Context) {
	claims := sessionClaims(c)

	post, err := h.posts.CreatePost(c.Request.Context(), claims.UserID, postInputFromForm(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dataEnvelope(postToResponse(*post)))
}

func (h *Handler) updatePost(c *gin.Context) {
	id := c.Param("id")

	post, err := h.posts.UpdatePost(c.Request.Context(), id, postInputFromForm(c))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataEnvelope(postToResponse(*post)))
}

type reorderRequest struct {
	Items []service.OrderItem `json:"items" binding:"required"`
}

func (h *Handler) reorderPosts(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid reorder payload"))
		return
	}

	if err := h.posts.ReorderPosts(c.Request.Context(), req.Items); err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataEnvelope(nil))
}

func (h *Handler) listPosts(c *gin.Context) {
	featured := c.Query("featured") == "true"

	posts, err := h.posts.ListPosts(c.Request.Context(), featured)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataEnvelope(postsToResponse(posts)))
}

func (h *Handler) listAllPosts(c *gin.Context) {
	posts, err := h.posts.ListPosts(c.Request.Context(), false)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataEnvelope(postsToResponse(posts)))
}

func (h *Handler) getPostBySlug(c *gin.Context) {
	post, err := h.posts.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataEnvelope(postToResponse(*post)))
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.posts.ListCategories(c.Request.Context())
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	resp := make([]CategoryResponse, len(categories))
	for i := range categories {
		resp[i] = categoryToResponse(categories[i], true)
	}
	c.JSON(http.StatusOK, dataEnvelope(resp))
}

func (h *Handler) listPostsByCategory(c *gin.Context) {
	posts, err := h.posts.ListPostsByCategory(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dataEnvelope(postsToResponse(posts)))
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorEnvelope("No file provided"))
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if _, ok := allowedImageTypes[contentType]; !ok {
		c.JSON(http.StatusBadRequest, errorEnvelope("Invalid file type"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Errorf("open upload: %v", err)
		c.JSON(http.StatusInternalServerError, errorEnvelope("Failed to save file"))
		return
	}
	defer file.Close()

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(fileHeader.Filename))
	url, err := h.storage.Upload(c.Request.Context(), name, contentType, file)
	if err != nil {
		h.logger.Errorf("store upload %s: %v", name, err)
		c.JSON(http.StatusInternalServerError, errorEnvelope("Failed to save file"))
		return
	}

	c.JSON(http.StatusOK, dataEnvelope(gin.H{"url": url}))
}

// respondServiceError translates the service error taxonomy into the
// response envelope. Unknown errors are logged with their cause and
// reported generically.
func (h *Handler) respondServiceError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	var partialErr *service.PartialFailure

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, errorEnvelope(validationErr.Error()))
	case errors.As(err, &partialErr):
		c.JSON(http.StatusInternalServerError, errorEnvelope(partialErr.Error()))
	case errors.Is(err, service.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, errorEnvelope("Missing credentials"))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, errorEnvelope("Invalid credentials"))
	case errors.Is(err, service.ErrDuplicateEmail):
		c.JSON(http.StatusBadRequest, errorEnvelope("Email already registered"))
	case errors.Is(err, service.ErrDuplicateSlug):
		c.JSON(http.StatusBadRequest, errorEnvelope("Slug already in use"))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorEnvelope("Not found"))
	default:
		h.logger.Errorf("service error: %v", err)
		c.JSON(http.StatusInternalServerError, errorEnvelope("Internal server error"))
	}
}

type apiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func dataEnvelope(data any) apiResponse {
	return apiResponse{Success: true, Data: data}
}

func errorEnvelope(msg string) apiResponse {
	return apiResponse{Success: false, Error: msg}
}

type UserResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	Name        string `json:"name"`
	Image       string `json:"image,omitempty"`
	Role        string `json:"role"`
	IsConnected bool   `json:"isConnected"`
}

type CategoryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	PostCount   *int   `json:"postCount,omitempty"`
}

type PostResponse struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Slug       string             `json:"slug"`
	Content    string             `json:"content"`
	ImageURL   string             `json:"imageUrl,omitempty"`
	Published  bool               `json:"published"`
	Featured   bool               `json:"featured"`
	Order      int                `json:"order"`
	AuthorID   string             `json:"authorId"`
	CreatedAt  string             `json:"createdAt"`
	UpdatedAt  string             `json:"updatedAt"`
	Author     *UserResponse      `json:"author,omitempty"`
	Categories []CategoryResponse `json:"categories"`
}

func userToResponse(user *domain.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Image:       user.Image,
		Role:        string(user.Role),
		IsConnected: user.IsConnected,
	}
}

func categoryToResponse(category domain.Category, withCount bool) CategoryResponse {
	resp := CategoryResponse{
		ID:          category.ID,
		Name:        category.Name,
		Slug:        category.Slug,
		Description: category.Description,
	}
	if withCount {
		count := category.PostCount
		resp.PostCount = &count
	}
	return resp
}

func postToResponse(post domain.Post) PostResponse {
	resp := PostResponse{
		ID:         post.ID,
		Title:      post.Title,
		Slug:       post.Slug,
		Content:    post.Content,
		ImageURL:   post.ImageURL,
		Published:  post.Published,
		Featured:   post.Featured,
		Order:      post.Order,
		AuthorID:   post.AuthorID,
		CreatedAt:  post.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  post.UpdatedAt.Format(time.RFC3339),
		Author:     userToResponse(post.Author),
		Categories: make([]CategoryResponse, len(post.Categories)),
	}
	for i := range post.Categories {
		resp.Categories[i] = categoryToResponse(post.Categories[i], false)
	}
	return resp
}

func postsToResponse(posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = postToResponse(posts[i])
	}
	return resp
}
