package web

import (
	"embed"
	"errors"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pevans/newsgrab/articles"
	"github.com/pevans/newsgrab/collector"
	"github.com/pevans/newsgrab/extractor"
	"go.uber.org/zap"
)

//go:embed templates/index.html
var templateFS embed.FS

const indexTemplate = "index.html"

// Message is a notice shown above the form. Category is "error", "info" or
// "success".
type Message struct {
	Category string
	Text     string
}

// indexPage is the data rendered by index.html.
type indexPage struct {
	Submitted string
	Messages  []Message
	Result    *extractor.Draft
	Articles  []articles.Summary
}

// Options configures a Server.
type Options struct {
	// TemplatesDir may hold an index.html that replaces the embedded one.
	TemplatesDir string
	StaticDir    string
	Logger       *zap.Logger
}

// Server serves the collection form and the read-only article API.
type Server struct {
	store     *articles.ArticleStore
	collector *collector.Collector
	opts      Options
	log       *zap.Logger
}

// NewServer creates a new web server.
func NewServer(store *articles.ArticleStore, coll *collector.Collector, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		store:     store,
		collector: coll,
		opts:      opts,
		log:       log,
	}
}

// SetupRouter configures the Gin router with the form and API routes.
func (s *Server) SetupRouter() (*gin.Engine, error) {
	tmpl, err := s.loadTemplate()
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.accessLog())
	router.SetHTMLTemplate(tmpl)

	router.GET("/", s.HandleIndex)
	router.POST("/", s.HandleIndex)

	if s.opts.StaticDir != "" {
		router.Static("/static", s.opts.StaticDir)
	}

	api := router.Group("/api/v1")
	{
		api.GET("/articles", s.HandleListArticles)
		api.GET("/articles/:id", s.HandleGetArticle)
	}

	return router, nil
}

// loadTemplate prefers index.html from the templates directory and falls
// back to the embedded copy.
func (s *Server) loadTemplate() (*template.Template, error) {
	if s.opts.TemplatesDir != "" {
		path := filepath.Join(s.opts.TemplatesDir, indexTemplate)
		if _, err := os.Stat(path); err == nil {
			return template.ParseFiles(path)
		}
	}
	return template.ParseFS(templateFS, "templates/"+indexTemplate)
}

// HandleIndex handles GET and POST /. POST collects the submitted url
// before the history is rendered.
func (s *Server) HandleIndex(c *gin.Context) {
	if err := s.store.InitSchema(); err != nil {
		s.internalError(c, err)
		return
	}

	page := indexPage{}

	if c.Request.Method == http.MethodPost {
		result, err := s.collector.Collect(c.Request.Context(), c.PostForm("url"))
		if err != nil {
			s.internalError(c, err)
			return
		}

		page.Submitted = result.URL
		page.Messages = messagesFor(result)
		page.Result = result.Draft

		s.log.Info("collection finished",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("url", result.URL),
			zap.Stringer("outcome", result.Outcome),
		)
	}

	list, err := s.store.ListAll()
	if err != nil {
		s.internalError(c, err)
		return
	}
	page.Articles = list

	c.HTML(http.StatusOK, indexTemplate, page)
}

// messagesFor turns a collection result into form notices.
func messagesFor(result collector.Result) []Message {
	switch result.Outcome {
	case collector.OutcomeInvalidURL:
		return []Message{{Category: "error", Text: result.Outcome.Message()}}
	case collector.OutcomeSuccess:
		return []Message{
			{Category: "info", Text: "Collecting, please wait..."},
			{Category: "success", Text: result.Outcome.Message()},
		}
	default:
		return []Message{
			{Category: "info", Text: "Collecting, please wait..."},
			{Category: "error", Text: result.Outcome.Message()},
		}
	}
}

// ListArticlesResponse represents the response for GET /api/v1/articles.
type ListArticlesResponse struct {
	Articles []articles.Summary `json:"articles"`
	Total    int                `json:"total"`
}

// HandleListArticles handles GET /api/v1/articles.
func (s *Server) HandleListArticles(c *gin.Context) {
	list, err := s.store.ListAll()
	if err != nil {
		s.log.Error("failed to list articles", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to list articles"))
		return
	}

	c.JSON(http.StatusOK, ListArticlesResponse{Articles: list, Total: len(list)})
}

// HandleGetArticle handles GET /api/v1/articles/:id.
func (s *Server) HandleGetArticle(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Invalid article ID"))
		return
	}

	article, err := s.store.Get(id)
	if errors.Is(err, articles.ErrArticleNotFound) {
		c.JSON(http.StatusNotFound, errorResponse("not_found", "Article not found"))
		return
	}
	if err != nil {
		s.log.Error("failed to get article", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse("internal_error", "Failed to retrieve article"))
		return
	}

	c.JSON(http.StatusOK, article)
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// internalError reports a storage failure. These are not recoverable for
// the current request.
func (s *Server) internalError(c *gin.Context, err error) {
	s.log.Error("request failed",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Error(err),
	)
	c.String(http.StatusInternalServerError, "Internal Server Error")
}

const requestIDKey = "request_id"

// requestID tags each request with a UUID, echoed in X-Request-ID.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// accessLog writes one structured line per request.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
