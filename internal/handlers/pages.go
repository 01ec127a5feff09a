package handlers

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prudhivi99/guitar-store/internal/models"
	"github.com/prudhivi99/guitar-store/internal/service"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	funcs := template.FuncMap{"lookup": lookup}
	return template.Must(template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl"))
}

// StaticFiles serves the embedded scripts under /scripts.
func StaticFiles() http.FileSystem {
	sub, err := fs.Sub(staticFS, "static/scripts")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// PageHandler renders the server-side pages.
type PageHandler struct {
	products   service.ProductService
	brands     service.BrandService
	categories service.CategoryService
	baseURL    string
}

func NewPageHandler(products service.ProductService, brands service.BrandService, categories service.CategoryService, baseURL string) *PageHandler {
	return &PageHandler{products: products, brands: brands, categories: categories, baseURL: baseURL}
}

// Index shows the first few products.
func (h *PageHandler) Index(c *gin.Context) {
	products, _, err := h.products.Paginate(c.Request.Context(), models.Page{Number: 1, Limit: 6})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.HTML(http.StatusOK, "index.tmpl", gin.H{"Title": "Guitar Store", "Products": products})
}

// Products lists the catalog one page at a time.
func (h *PageHandler) Products(c *gin.Context) {
	p, err := models.ParsePage(c.Query("page"), c.Query("limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	items, total, err := h.products.Paginate(c.Request.Context(), p)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.HTML(http.StatusOK, "products.tmpl", gin.H{
		"Title": "Guitars",
		"Page":  models.NewPaginated(items, total, p, listURL(c, h.baseURL)),
	})
}

// ProductDetails shows one product with its reviews.
func (h *PageHandler) ProductDetails(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	p, err := h.products.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.HTML(http.StatusOK, "product.tmpl", gin.H{"Title": p.Name, "Product": p})
}

// Shelf lists the products of one category, e.g. the electric guitars.
func (h *PageHandler) Shelf(title string, categoryID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := h.products.ByCategory(c.Request.Context(), categoryID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.HTML(http.StatusOK, "shelf.tmpl", gin.H{"Title": title, "Products": products})
	}
}

func (h *PageHandler) Brands(c *gin.Context) {
	brands, err := h.brands.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.HTML(http.StatusOK, "brands.tmpl", gin.H{"Title": "Brands", "Brands": brands})
}

func (h *PageHandler) Categories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.HTML(http.StatusOK, "categories.tmpl", gin.H{"Title": "Categories", "Categories": categories})
}

func (h *PageHandler) Login(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", gin.H{"Title": "Sign in"})
}

func (h *PageHandler) Register(c *gin.Context) {
	var msg string
	switch c.Query("error") {
	case "1":
		msg = "Check the form: the passwords must match."
	case "2":
		msg = "Registration failed, try again later."
	}
	c.HTML(http.StatusOK, "register.tmpl", gin.H{"Title": "Register", "Error": msg})
}
