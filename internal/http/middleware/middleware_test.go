package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func serve(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for key := range header {
		req.Header.Set(key, header.Get(key))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		handler gin.HandlerFunc
	}{
		{"panic from string", func(*gin.Context) { panic("test panic") }},
		{"panic from error", func(*gin.Context) { panic(errors.New("test error")) }},
		{"nil pointer dereference", func(*gin.Context) {
			var product *struct{ Name string }
			_ = product.Name
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Recovery())
			router.GET("/panic", tt.handler)

			w := serve(router, http.MethodGet, "/panic", nil)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Contains(t, w.Body.String(), "Internal Server Error")
		})
	}

	t.Run("normal requests pass through", func(t *testing.T) {
		router := gin.New()
		router.Use(Recovery())
		router.GET("/normal", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "success"})
		})

		w := serve(router, http.MethodGet, "/normal", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "success")
	})
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		method     string
		wantStatus int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodPost, http.StatusCreated},
		{http.MethodPatch, http.StatusOK},
		{http.MethodDelete, http.StatusOK},
		{http.MethodOptions, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			router := gin.New()
			router.Use(CORS())
			router.Handle(tt.method, "/prodotti", func(c *gin.Context) {
				status := http.StatusOK
				if c.Request.Method == http.MethodPost {
					status = http.StatusCreated
				}
				c.JSON(status, gin.H{})
			})

			w := serve(router, tt.method, "/prodotti", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "GET, POST, PUT, PATCH, DELETE, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
			assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
		})
	}

	t.Run("preflight without a route", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS())
		router.GET("/prodotti", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(router, http.MethodOptions, "/prodotti/1", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("keeps the handler status", func(t *testing.T) {
		router := gin.New()
		router.Use(Logger())
		router.GET("/error", func(c *gin.Context) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		})

		w := serve(router, http.MethodGet, "/error", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("generates a request id", func(t *testing.T) {
		router := gin.New()
		router.Use(Logger())

		var seen string
		router.GET("/test", func(c *gin.Context) {
			seen = c.GetString(RequestIDHeader)
			c.Status(http.StatusOK)
		})

		w := serve(router, http.MethodGet, "/test", nil)

		id := w.Header().Get(RequestIDHeader)
		_, err := uuid.Parse(id)
		assert.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("keeps the caller request id", func(t *testing.T) {
		router := gin.New()
		router.Use(Logger())
		router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

		w := serve(router, http.MethodGet, "/test", http.Header{http.CanonicalHeaderKey(RequestIDHeader): {"abc-123"}})

		assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
	})
}
