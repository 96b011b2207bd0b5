package main

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bmohaisen/report-portfolio/internal/chart"
	"github.com/bmohaisen/report-portfolio/internal/report"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	cfg      *Config
	log      *zap.Logger
	page     report.Page
	tmpl     *template.Template
	store    *visitStore // nil when tracking is disabled
	notifier Notifier
	contact  *clientLimiter
	logins   *clientLimiter
	admin    *adminAuth
}

func newApp(cfg *Config, log *zap.Logger, page report.Page) (*app, error) {
	tmpl, err := loadTemplates(cfg.Server.TemplatesDir)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		page:     page,
		tmpl:     tmpl,
		notifier: newNotifier(cfg.Contact, log),
		contact:  newClientLimiter(cfg.Contact.RatePerMinute, cfg.Contact.Burst),
		logins:   newClientLimiter(5, 5),
		admin:    newAdminAuth(cfg.Admin, log),
	}

	if cfg.Tracking.Enabled {
		a.store, err = openVisitStore(cfg.Database.Path, log)
		if err != nil {
			return nil, err
		}
	}

	logViolations(log, page)
	return a, nil
}

func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// logViolations reports content problems once at startup. Rendering carries
// on regardless.
func logViolations(log *zap.Logger, page report.Page) int {
	violations := report.Validate(page)
	for _, v := range violations {
		log.Warn("Section validation warning", zap.String("path", v.Path), zap.String("problem", v.Message))
	}
	return len(violations)
}

func (a *app) chartSize() int {
	if a.cfg.Server.ChartSize > 0 {
		return a.cfg.Server.ChartSize
	}
	return defaultChartSize
}

func setupRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(a.log))
	if a.store != nil {
		r.Use(visitorTrackingMiddleware(a.store))
	}
	r.SetHTMLTemplate(a.tmpl)

	r.Static("/static", a.cfg.Server.StaticDir)

	// Home page route
	r.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", buildPageView(a.page, a.chartSize(), time.Now()))
	})

	// HTMX fragment for a single section card
	r.GET("/sections/:id", func(c *gin.Context) {
		s, ok := a.page.Section(c.Param("id"))
		if !ok {
			c.HTML(http.StatusNotFound, "not-found.html", gin.H{
				"what": "section " + c.Param("id"),
			})
			return
		}
		c.HTML(http.StatusOK, "section.html", buildSectionView(s, a.chartSize()))
	})

	// Raster version of a section's pie chart
	r.GET("/charts/:file", func(c *gin.Context) {
		id, ok := strings.CutSuffix(c.Param("file"), ".png")
		s, found := a.page.Section(id)
		if !ok || !found || s.Chart == nil {
			c.String(http.StatusNotFound, "no chart")
			return
		}
		size := a.chartSize()
		if q := c.Query("size"); q != "" {
			if n, err := strconv.Atoi(q); err == nil {
				size = chart.ClampSize(n)
			}
		}
		c.Header("Content-Type", "image/png")
		c.Header("Cache-Control", "public, max-age=3600")
		if err := chart.WritePiePNG(c.Writer, s.Chart.Data, size); err != nil {
			a.log.Error("Error rendering chart", zap.String("section", id), zap.Error(err))
		}
	})

	// Figures; a missing file degrades to a placeholder image
	r.GET("/images/*filepath", a.serveFigure)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "ok",
			"sections":   len(a.page.Sections),
			"violations": len(report.Validate(a.page)),
		})
	})

	// HTMX Contact form endpoint - returns just the form HTML
	r.GET("/contact-form", func(c *gin.Context) {
		c.HTML(http.StatusOK, "contact.html", gin.H{
			"title": "Contact Me",
			"email": a.page.Profile.Email,
		})
	})

	// Handle contact form submission with HTMX
	r.POST("/contact", a.handleContact)

	setupAdminRoutes(r, a)
	return r
}

func (a *app) serveFigure(c *gin.Context) {
	name := strings.TrimPrefix(path.Clean("/"+c.Param("filepath")), "/")
	if name == "" {
		c.Status(http.StatusNotFound)
		return
	}

	full := filepath.Join(a.cfg.Server.ImagesDir, filepath.FromSlash(name))
	if info, err := os.Stat(full); err == nil && !info.IsDir() {
		c.File(full)
		return
	}

	label := name
	for _, s := range a.page.Sections {
		for _, f := range s.Figures {
			if f.Src == "/images/"+name {
				label = f.Label
			}
		}
	}
	c.Header("Content-Type", "image/png")
	c.Header("X-Placeholder", "1")
	c.Header("Cache-Control", "no-store")
	if err := chart.WritePlaceholderPNG(c.Writer, label, name, 640, 360); err != nil {
		a.log.Error("Error rendering placeholder", zap.String("file", name), zap.Error(err))
	}
}

func (a *app) handleContact(c *gin.Context) {
	if !a.contact.Allow(c.ClientIP()) {
		c.HTML(http.StatusTooManyRequests, "contact-error.html", gin.H{
			"error": ContactThrottled,
		})
		return
	}

	msg := ContactMessage{
		Name:    strings.TrimSpace(c.PostForm("fullName")),
		Email:   strings.TrimSpace(c.PostForm("email")),
		Message: strings.TrimSpace(c.PostForm("message")),
	}
	if err := msg.validate(); err != nil {
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": ContactInvalid,
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()
	if err := a.notifier.Notify(ctx, msg); err != nil {
		a.log.Error("Error sending contact message", zap.Error(err))
		// Return error message HTML fragment
		c.HTML(http.StatusOK, "contact-error.html", gin.H{
			"error": ContactFailure,
		})
		return
	}

	a.log.Info("Contact message delivered", zap.String("from", msg.Email))
	// Return success message HTML fragment
	c.HTML(http.StatusOK, "contact-success.html", gin.H{
		"success": ContactSuccess,
	})
}

func runServer(cfg *Config, log *zap.Logger) error {
	gin.SetMode(cfg.Server.Mode)

	a, err := newApp(cfg, log, report.Default())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.store != nil {
		go a.retentionLoop(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           setupRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Portfolio listening", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// retentionLoop prunes old visitor rows at startup and once a day after.
func (a *app) retentionLoop(ctx context.Context) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		if _, err := a.store.Cleanup(ctx, a.cfg.Tracking.RetentionMonths); err != nil {
			a.log.Warn("Error cleaning up old visitor data", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
