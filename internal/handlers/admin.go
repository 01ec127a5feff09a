package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/prudhivi99/guitar-store/internal/models"
	"github.com/prudhivi99/guitar-store/internal/service"
)

// column is one cell of a management list. Key is a dotted path into the
// record's JSON form, e.g. "brand.name".
type column struct {
	Key   string
	Label string
}

type option struct {
	Value string
	Label string
}

// formField is one input of a management form. Name is the posted form key,
// Key the dotted JSON path the edit form is prefilled from.
type formField struct {
	Name     string
	Key      string
	Label    string
	Type     string // text, number, url, email, password, textarea or select
	Step     string
	Required bool
	// CreateOnly fields are left out of the edit form.
	CreateOnly bool
	Options    []option
}

// formInput is a formField resolved for one render.
type formInput struct {
	formField
	Value string
}

// adminPage describes the management pages of one resource.
type adminPage struct {
	Path    string // "/brands"
	Title   string
	Columns []column
	Fields  []formField
	// Lookups fills select options keyed by field name.
	Lookups func(ctx context.Context) (map[string][]option, error)
}

// AdminHandler serves the HTML management pages of one resource and the form
// posts behind them. Successful posts answer 303 to the list.
type AdminHandler[T, C, U any] struct {
	svc  service.CRUDService[T, C, U]
	page adminPage
}

func NewAdminHandler[T, C, U any](svc service.CRUDService[T, C, U], page adminPage) *AdminHandler[T, C, U] {
	return &AdminHandler[T, C, U]{svc: svc, page: page}
}

func (h *AdminHandler[T, C, U]) listPath() string { return h.page.Path + "/list" }

// List renders every record with edit and delete controls.
func (h *AdminHandler[T, C, U]) List(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	rows, err := asRows(items)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.HTML(http.StatusOK, "admin_list.tmpl", gin.H{
		"Title":   h.page.Title,
		"Path":    h.page.Path,
		"Columns": h.page.Columns,
		"Rows":    rows,
	})
}

// AddForm renders the empty creation form.
func (h *AdminHandler[T, C, U]) AddForm(c *gin.Context) {
	h.renderForm(c, "Add", h.page.Path, nil, true)
}

// EditForm renders the form prefilled with record :id.
func (h *AdminHandler[T, C, U]) EditForm(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	item, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	record, err := asRecord(item)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.renderForm(c, "Save", fmt.Sprintf("%s/%d/update", h.page.Path, id), record, false)
}

func (h *AdminHandler[T, C, U]) renderForm(c *gin.Context, submit, action string, record map[string]any, adding bool) {
	lookups := map[string][]option{}
	if h.page.Lookups != nil {
		var err error
		if lookups, err = h.page.Lookups(c.Request.Context()); err != nil {
			_ = c.Error(err)
			return
		}
	}

	inputs := make([]formInput, 0, len(h.page.Fields))
	for _, f := range h.page.Fields {
		if f.CreateOnly && !adding {
			continue
		}
		in := formInput{formField: f, Value: lookup(record, f.Key)}
		in.Required = f.Required && adding
		if opts, ok := lookups[f.Name]; ok {
			in.Options = opts
		}
		inputs = append(inputs, in)
	}

	c.HTML(http.StatusOK, "admin_form.tmpl", gin.H{
		"Title":  h.page.Title,
		"Back":   h.listPath(),
		"Action": action,
		"Submit": submit,
		"Inputs": inputs,
	})
}

// Create handles POST <path>.
func (h *AdminHandler[T, C, U]) Create(c *gin.Context) {
	var req C
	if err := bindForm(c, &req); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	if _, err := h.svc.Create(c.Request.Context(), req); err != nil {
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, h.listPath())
}

// Update handles POST <path>/:id/update.
func (h *AdminHandler[T, C, U]) Update(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req U
	if err := bindForm(c, &req); err != nil {
		_ = c.Error(bindError(err))
		return
	}
	if _, err := h.svc.Update(c.Request.Context(), id, req); err != nil {
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, h.listPath())
}

// Delete handles POST <path>/:id/delete.
func (h *AdminHandler[T, C, U]) Delete(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}
	c.Redirect(http.StatusSeeOther, h.listPath())
}

// routes lists the page and form routes of the resource.
func (h *AdminHandler[T, C, U]) routes() []Route {
	p := h.page.Path
	return []Route{
		{http.MethodGet, p + "/list", Admin, h.List},
		{http.MethodGet, p + "/add", Admin, h.AddForm},
		{http.MethodGet, p + "/:id/edit", Admin, h.EditForm},
		{http.MethodPost, p, Admin, h.Create},
		{http.MethodPost, p + "/:id/update", Admin, h.Update},
		{http.MethodPost, p + "/:id/delete", Admin, h.Delete},
	}
}

// bindForm binds a posted form. Blank inputs count as absent so the
// optional fields of an edit form stay untouched.
func bindForm(c *gin.Context, dst any) error {
	if err := c.Request.ParseForm(); err != nil {
		return err
	}
	for k, vs := range c.Request.PostForm {
		if len(vs) == 0 || strings.TrimSpace(vs[0]) == "" {
			delete(c.Request.PostForm, k)
		}
	}
	return c.ShouldBindWith(dst, binding.FormPost)
}

// asRows turns records into their JSON objects so templates can address
// fields by their API names.
func asRows(items any) ([]map[string]any, error) {
	var rows []map[string]any
	if err := roundTrip(items, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func asRecord(item any) (map[string]any, error) {
	var record map[string]any
	if err := roundTrip(item, &record); err != nil {
		return nil, err
	}
	return record, nil
}

func roundTrip(in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}
	return nil
}

// lookup resolves a dotted key in a JSON object. Missing values are "".
func lookup(record map[string]any, key string) string {
	if key == "" {
		return ""
	}
	var cur any = record
	for _, part := range strings.Split(key, ".") {
		m, ok := cur.(map[string]any)
		if !ok {
			return ""
		}
		cur = m[part]
	}
	if cur == nil {
		return ""
	}
	return fmt.Sprint(cur)
}

// options builds select options from records.
func options[T any](items []T, entry func(T) (int, string)) []option {
	out := make([]option, len(items))
	for i, it := range items {
		id, label := entry(it)
		out[i] = option{Value: strconv.Itoa(id), Label: label}
	}
	return out
}

var (
	statusOptions = []option{
		{models.OrderPending, "Pending"},
		{models.OrderCompleted, "Completed"},
		{models.OrderCancelled, "Cancelled"},
	}
	roleOptions = []option{
		{models.RoleUser, "User"},
		{models.RoleAdmin, "Admin"},
	}
)

func brandOption(b models.Brand) (int, string) { return b.ID, b.Name }
func categoryOption(c models.Category) (int, string) { return c.ID, c.Name }
func productOption(p models.Product) (int, string) { return p.ID, p.SKU + " " + p.Name }
func userOption(u models.User) (int, string) { return u.ID, u.Email }
func orderOption(o models.Order) (int, string) { return o.ID, fmt.Sprintf("#%d (%s)", o.ID, o.Status) }

// adminPages describes the management pages of every resource.
func adminPages(svc Services) map[string]adminPage {
	return map[string]adminPage{
		"brands": {
			Path:    "/brands",
			Title:   "Brands",
			Columns: []column{{"id", "ID"}, {"name", "Name"}, {"logoUrl", "Logo"}},
			Fields: []formField{
				{Name: "name", Key: "name", Label: "Name", Type: "text", Required: true},
				{Name: "logoUrl", Key: "logoUrl", Label: "Logo URL", Type: "url"},
			},
		},
		"categories": {
			Path:    "/categories",
			Title:   "Categories",
			Columns: []column{{"id", "ID"}, {"name", "Name"}, {"description", "Description"}},
			Fields: []formField{
				{Name: "name", Key: "name", Label: "Name", Type: "text", Required: true},
				{Name: "description", Key: "description", Label: "Description", Type: "textarea"},
			},
		},
		"products": {
			Path:  "/products",
			Title: "Products",
			Columns: []column{
				{"id", "ID"}, {"sku", "SKU"}, {"name", "Name"}, {"brand.name", "Brand"},
				{"category.name", "Category"}, {"price", "Price"}, {"stock", "Stock"},
			},
			Fields: []formField{
				{Name: "sku", Key: "sku", Label: "SKU", Type: "text", Required: true},
				{Name: "name", Key: "name", Label: "Name", Type: "text", Required: true},
				{Name: "description", Key: "description", Label: "Description", Type: "textarea"},
				{Name: "price", Key: "price", Label: "Price", Type: "number", Step: "0.01", Required: true},
				{Name: "stock", Key: "stock", Label: "Stock", Type: "number"},
				{Name: "imageUrl", Key: "imageUrl", Label: "Image URL", Type: "url"},
				{Name: "categoryId", Key: "categoryId", Label: "Category", Type: "select", Required: true},
				{Name: "brandId", Key: "brandId", Label: "Brand", Type: "select", Required: true},
			},
			Lookups: func(ctx context.Context) (map[string][]option, error) {
				brands, err := svc.Brands.List(ctx)
				if err != nil {
					return nil, err
				}
				categories, err := svc.Categories.List(ctx)
				if err != nil {
					return nil, err
				}
				return map[string][]option{
					"brandId":    options(brands, brandOption),
					"categoryId": options(categories, categoryOption),
				}, nil
			},
		},
		"orders": {
			Path:    "/orders",
			Title:   "Orders",
			Columns: []column{{"id", "ID"}, {"user.email", "Customer"}, {"total", "Total"}, {"status", "Status"}, {"createdAt", "Placed"}},
			Fields: []formField{
				{Name: "userId", Key: "userId", Label: "Customer", Type: "select", Required: true},
				{Name: "total", Key: "total", Label: "Total", Type: "number", Step: "0.01"},
				{Name: "status", Key: "status", Label: "Status", Type: "select", Options: statusOptions},
			},
			Lookups: func(ctx context.Context) (map[string][]option, error) {
				users, err := svc.Users.List(ctx)
				if err != nil {
					return nil, err
				}
				return map[string][]option{"userId": options(users, userOption)}, nil
			},
		},
		"order-items": {
			Path:    "/order-items",
			Title:   "Order items",
			Columns: []column{{"id", "ID"}, {"orderId", "Order"}, {"product.name", "Product"}, {"quantity", "Quantity"}, {"price", "Price"}},
			Fields: []formField{
				{Name: "orderId", Key: "orderId", Label: "Order", Type: "select", Required: true},
				{Name: "productId", Key: "productId", Label: "Product", Type: "select", Required: true},
				{Name: "quantity", Key: "quantity", Label: "Quantity", Type: "number", Required: true},
				{Name: "price", Key: "price", Label: "Price", Type: "number", Step: "0.01"},
			},
			Lookups: func(ctx context.Context) (map[string][]option, error) {
				orders, err := svc.Orders.List(ctx)
				if err != nil {
					return nil, err
				}
				products, err := svc.Products.List(ctx)
				if err != nil {
					return nil, err
				}
				return map[string][]option{
					"orderId":   options(orders, orderOption),
					"productId": options(products, productOption),
				}, nil
			},
		},
		"reviews": {
			Path:    "/reviews",
			Title:   "Reviews",
			Columns: []column{{"id", "ID"}, {"productId", "Product"}, {"rating", "Rating"}, {"comment", "Comment"}, {"createdAt", "Written"}},
			Fields: []formField{
				{Name: "productId", Key: "productId", Label: "Product", Type: "select", Required: true, CreateOnly: true},
				{Name: "userId", Key: "userId", Label: "Author", Type: "select", CreateOnly: true},
				{Name: "rating", Key: "rating", Label: "Rating", Type: "number", Required: true},
				{Name: "comment", Key: "comment", Label: "Comment", Type: "textarea", Required: true},
			},
			Lookups: func(ctx context.Context) (map[string][]option, error) {
				products, err := svc.Products.List(ctx)
				if err != nil {
					return nil, err
				}
				users, err := svc.Users.List(ctx)
				if err != nil {
					return nil, err
				}
				return map[string][]option{
					"productId": options(products, productOption),
					"userId":    options(users, userOption),
				}, nil
			},
		},
		"users": {
			Path:  "/users",
			Title: "Users",
			Columns: []column{
				{"id", "ID"}, {"email", "Email"}, {"profile.firstName", "First name"},
				{"profile.lastName", "Last name"}, {"role.name", "Role"},
			},
			Fields: []formField{
				{Name: "email", Key: "email", Label: "Email", Type: "email", Required: true},
				{Name: "password", Label: "Password", Type: "password", Required: true},
				{Name: "firstName", Key: "profile.firstName", Label: "First name", Type: "text"},
				{Name: "lastName", Key: "profile.lastName", Label: "Last name", Type: "text"},
				{Name: "role", Key: "role.name", Label: "Role", Type: "select", Options: roleOptions},
			},
		},
	}
}

// ReviewForm renders the review form for product :id.
func (h *AdminHandler[T, C, U]) ReviewForm(products service.ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		if _, err := products.Get(c.Request.Context(), id); err != nil {
			_ = c.Error(err)
			return
		}
		h.renderForm(c, "Add", h.page.Path, map[string]any{"productId": strconv.Itoa(id)}, true)
	}
}
