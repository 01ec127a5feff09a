package graphql

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/prudhivi99/guitar-store/internal/auth"
	"github.com/prudhivi99/guitar-store/internal/models"
	"github.com/prudhivi99/guitar-store/internal/service"
)

type access int

const (
	public access = iota
	admin
)

func (a access) check(ctx context.Context) error {
	if a == public {
		return nil
	}
	caller, ok := auth.FromContext(ctx)
	if !ok {
		return auth.ErrNoToken
	}
	if !caller.HasRole(models.RoleAdmin) {
		return service.ErrForbidden
	}
	return nil
}

// request carries the arguments of a field and the names of its selected
// subfields, so resolvers can load only the relations asked for.
type request struct {
	args     map[string]any
	selected map[string]bool
}

func (r request) id(name string) (int, error) {
	return toInt(r.args[name])
}

type field struct {
	access  access
	resolve func(ctx context.Context, req request) (any, error)
}

// Services is what the resolvers read and write through.
type Services struct {
	Brands     service.BrandService
	Categories service.CategoryService
	Products   service.ProductService
	Orders     service.OrderService
	OrderItems service.OrderItemService
	Reviews    service.ReviewService
	Users      service.UserService
}

func resolverTable(svc Services) (queries, mutations map[string]field) {
	queries = make(map[string]field)
	mutations = make(map[string]field)

	crud(queries, mutations, "brand", "brands", public, svc.Brands)
	crud(queries, mutations, "category", "categories", public, svc.Categories)
	crud(queries, mutations, "product", "products", public, svc.Products)
	crud(queries, mutations, "order", "orders", admin, svc.Orders)
	crud(queries, mutations, "orderItem", "orderItems", admin, svc.OrderItems)
	crud(queries, mutations, "review", "reviews", public, svc.Reviews)
	crud(queries, mutations, "user", "users", admin, svc.Users)

	queries["brand"] = field{public, func(ctx context.Context, req request) (any, error) {
		id, err := req.id("id")
		if err != nil {
			return nil, err
		}
		if req.selected[models.RelProducts] {
			return svc.Brands.GetWithProducts(ctx, id)
		}
		return svc.Brands.Get(ctx, id)
	}}
	queries["user"] = field{admin, func(ctx context.Context, req request) (any, error) {
		id, err := req.id("id")
		if err != nil {
			return nil, err
		}
		u, err := svc.Users.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if req.selected[models.RelOrders] {
			if u.Orders, err = svc.Users.Orders(ctx, id); err != nil {
				return nil, err
			}
		}
		return u, nil
	}}
	queries["productsByCategory"] = field{public, func(ctx context.Context, req request) (any, error) {
		id, err := req.id("categoryId")
		if err != nil {
			return nil, err
		}
		return svc.Products.ByCategory(ctx, id)
	}}
	return queries, mutations
}

// crud registers the list, get, page, create, update and remove fields of
// one resource. Mutations always require the admin role.
func crud[T, C, U any](queries, mutations map[string]field, name, plural string, read access, svc service.CRUDService[T, C, U]) {
	title := strings.ToUpper(name[:1]) + name[1:]

	queries[plural] = field{read, func(ctx context.Context, _ request) (any, error) {
		items, err := svc.List(ctx)
		if items == nil && err == nil {
			items = []T{}
		}
		return items, err
	}}
	queries[name] = field{read, func(ctx context.Context, req request) (any, error) {
		id, err := req.id("id")
		if err != nil {
			return nil, err
		}
		return svc.Get(ctx, id)
	}}
	queries[plural+"Page"] = field{read, func(ctx context.Context, req request) (any, error) {
		p, err := page(req)
		if err != nil {
			return nil, err
		}
		items, total, err := svc.Paginate(ctx, p)
		if err != nil {
			return nil, err
		}
		return models.NewPaginated(items, total, p, ""), nil
	}}

	mutations["create"+title] = field{admin, func(ctx context.Context, req request) (any, error) {
		var in C
		if err := decodeInput(req.args["input"], &in); err != nil {
			return nil, err
		}
		return svc.Create(ctx, in)
	}}
	mutations["update"+title] = field{admin, func(ctx context.Context, req request) (any, error) {
		id, err := req.id("id")
		if err != nil {
			return nil, err
		}
		var in U
		if err := decodeInput(req.args["input"], &in); err != nil {
			return nil, err
		}
		return svc.Update(ctx, id, in)
	}}
	mutations["remove"+title] = field{admin, func(ctx context.Context, req request) (any, error) {
		id, err := req.id("id")
		if err != nil {
			return nil, err
		}
		if err := svc.Delete(ctx, id); err != nil {
			return nil, err
		}
		return true, nil
	}}
}

func page(req request) (models.Page, error) {
	p := models.Page{Number: models.DefaultPage, Limit: models.DefaultLimit}
	if v, ok := req.args["page"]; ok && v != nil {
		n, err := toInt(v)
		if err != nil || n < 1 {
			return p, &models.PageError{Param: "page"}
		}
		p.Number = n
	}
	if v, ok := req.args["limit"]; ok && v != nil {
		n, err := toInt(v)
		if err != nil || n < 1 {
			return p, &models.PageError{Param: "limit"}
		}
		p.Limit = n
	}
	return p, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Input structs share the binding tags used by the REST layer.
	v.SetTagName("binding")
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// decodeInput converts a GraphQL input object into a request struct and
// validates it.
func decodeInput(raw any, dst any) error {
	data, err := json.Marshal(raw)
	if err != nil {
		return &service.ValidationError{Field: "input", Message: err.Error()}
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &service.ValidationError{Field: "input", Message: err.Error()}
	}
	return validate.Struct(dst)
}

func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on the '%s' rule", fe.Field(), rule))
	}
	return strings.Join(msgs, "; ")
}

func toInt(v any) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		return int(i), err
	}
	return 0, &service.ValidationError{Message: fmt.Sprintf("expected an integer, got %T", v)}
}
