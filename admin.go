// admin.go - privacy-conscious admin pages over the visit store
package main

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const adminCookie = "admin_token"

type adminAuth struct {
	username string
	password string
	token    string
}

// Initialize admin system with a per-process session token
func newAdminAuth(cfg AdminConfig, log *zap.Logger) *adminAuth {
	a := &adminAuth{
		username: cfg.Username,
		password: cfg.Password,
		token:    randomToken(),
	}

	log.Info("Admin access available at: /admin/login")
	if a.password == "" {
		log.Warn("Admin login disabled. Set ADMIN_PASSWORD environment variable.")
	}
	if gin.Mode() == gin.DebugMode {
		log.Debug("Admin token (dev only)", zap.String("token", a.token))
	}
	return a
}

func (a *adminAuth) check(username, password string) bool {
	if a.password == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.password)) == 1
	return userOK && passOK
}

// Middleware to check admin authentication
func (a *adminAuth) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(adminCookie)
		if err != nil || subtle.ConstantTimeCompare([]byte(token), []byte(a.token)) != 1 {
			c.Redirect(http.StatusFound, "/admin/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// Privacy-conscious visitor tracking middleware
func visitorTrackingMiddleware(store *visitStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip tracking for assets, admin pages and probes
		path := c.Request.URL.Path
		if c.Request.Method != http.MethodGet ||
			strings.HasPrefix(path, "/static/") ||
			strings.HasPrefix(path, "/images/") ||
			strings.HasPrefix(path, "/charts/") ||
			strings.HasPrefix(path, "/admin") ||
			strings.HasPrefix(path, "/favicon") ||
			path == "/healthz" {
			c.Next()
			return
		}

		// Respect Do Not Track header
		if c.GetHeader("DNT") == "1" {
			c.Next()
			return
		}

		c.Next()

		if c.Writer.Status() < http.StatusBadRequest {
			store.RecordAsync(c.ClientIP(), c.GetHeader("User-Agent"), path)
		}
	}
}

func setupAdminRoutes(r *gin.Engine, a *app) {
	auth := a.admin

	r.GET("/admin/login", func(c *gin.Context) {
		c.HTML(http.StatusOK, "admin-login.html", gin.H{})
	})

	r.POST("/admin/login", func(c *gin.Context) {
		client := c.ClientIP()
		hashed := client
		if a.store != nil {
			hashed = a.store.hashIP(client)
		}

		if !a.logins.Allow(client) {
			a.log.Warn("Admin login throttled", zap.String("client", hashed))
			c.HTML(http.StatusTooManyRequests, "admin-login.html", gin.H{
				"error": "Too many attempts, try again shortly",
			})
			return
		}

		if !auth.check(c.PostForm("username"), c.PostForm("password")) {
			a.log.Warn("Failed admin login attempt", zap.String("client", hashed))
			c.HTML(http.StatusUnauthorized, "admin-login.html", gin.H{
				"error": "Invalid credentials",
			})
			return
		}

		// Secure cookie (24 hours)
		c.SetCookie(adminCookie, auth.token, 3600*24, "/admin", "", false, true)
		a.log.Info("Admin login successful", zap.String("client", hashed))
		c.Redirect(http.StatusFound, "/admin/dashboard")
	})

	r.GET("/admin/logout", func(c *gin.Context) {
		c.SetCookie(adminCookie, "", -1, "/admin", "", false, true)
		c.Redirect(http.StatusFound, "/admin/login")
	})

	// Protected admin routes group
	adminGroup := r.Group("/admin")
	adminGroup.Use(auth.middleware())

	adminGroup.GET("/dashboard", func(c *gin.Context) {
		if a.store == nil {
			c.HTML(http.StatusServiceUnavailable, "admin-error.html", gin.H{
				"error": "Visitor tracking is disabled",
			})
			return
		}
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			a.log.Error("Error loading admin stats", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load statistics",
			})
			return
		}

		var chart *pieView
		if len(stats.TopPaths) > 0 {
			chart = buildPieView("Page views by path", stats.Distribution(), a.chartSize(), "")
		}
		c.HTML(http.StatusOK, "admin-dashboard.html", gin.H{
			"stats": stats,
			"chart": chart,
		})
	})

	// Admin API endpoint for HTMX/AJAX
	adminGroup.GET("/api/stats", func(c *gin.Context) {
		if a.store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tracking disabled"})
			return
		}
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, stats)
	})

	adminGroup.GET("/visitors", func(c *gin.Context) {
		if a.store == nil {
			c.HTML(http.StatusServiceUnavailable, "admin-error.html", gin.H{
				"error": "Visitor tracking is disabled",
			})
			return
		}
		visitors, err := a.store.Recent(c.Request.Context(), 200)
		if err != nil {
			a.log.Error("Error loading visitors", zap.Error(err))
			c.HTML(http.StatusInternalServerError, "admin-error.html", gin.H{
				"error": "Failed to load visitors",
			})
			return
		}
		c.HTML(http.StatusOK, "admin-visitors.html", gin.H{
			"visitors": visitors,
		})
	})

	// Privacy compliance endpoint - prune data past the retention window now
	adminGroup.POST("/privacy/cleanup", func(c *gin.Context) {
		if a.store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tracking disabled"})
			return
		}
		n, err := a.store.Cleanup(c.Request.Context(), a.cfg.Tracking.RetentionMonths)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Privacy cleanup complete", "removed": n})
	})

	// Admin statistics export (for backups or analysis)
	adminGroup.GET("/export/stats", func(c *gin.Context) {
		if a.store == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "tracking disabled"})
			return
		}
		stats, err := a.store.Stats(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// Set headers for file download
		c.Header("Content-Disposition", "attachment; filename=admin-stats.json")
		c.JSON(http.StatusOK, stats)
	})
}
