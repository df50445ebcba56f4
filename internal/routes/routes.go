package routes

import (
	"time"

	"github.com/fathima-sithara/contacts-service/internal/handlers"
	"github.com/fathima-sithara/contacts-service/internal/metrics"
	"github.com/fathima-sithara/contacts-service/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

type AppOptions struct {
	Name         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  string
}

// NewApp builds the Fiber app with the shared middleware chain.
func NewApp(opts AppOptions, logger *zap.Logger, m *metrics.Metrics) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      opts.Name,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		ErrorHandler: handlers.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: opts.CORSOrigins,
		AllowHeaders: "Content-Type, Authorization, Access-Control-Allow-Origin",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))
	app.Use(middleware.ZapLogger(logger, m))
	return app
}

type Deps struct {
	Accounts *handlers.AccountHandler
	Contacts *handlers.ContactHandler
	Trash    *handlers.TrashHandler
	Labels   *handlers.LabelHandler
	Metrics  *metrics.Metrics

	Auth      fiber.Handler
	UserLimit fiber.Handler // optional
	IPLimit   fiber.Handler // optional
}

func Setup(app *fiber.App, d Deps) {
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"status": "ok"}) })
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}

	api := app.Group("/api/v2")
	api.Get("/", d.Accounts.Index)

	public := chain(d.IPLimit)
	api.Post("/signup", public(d.Accounts.Signup)...)
	api.Post("/signin", public(d.Accounts.Signin)...)
	api.Post("/check_username", public(d.Accounts.CheckUsername)...)

	auth := chain(d.Auth, d.UserLimit)
	p := &guarded{r: api, with: auth}

	p.Post("/logout", d.Accounts.Logout)
	p.Get("/user", d.Accounts.Profile)
	p.Put("/user/update", d.Accounts.UpdateProfile)
	p.Post("/user/photo", d.Accounts.UploadPhoto)

	p.Get("/contacts", d.Contacts.List)
	p.Get("/contacts/search", d.Contacts.Search)
	p.Get("/contacts/export", d.Contacts.Export)
	p.Post("/contacts/remove", d.Contacts.RemoveMany)
	p.Post("/create_contact", d.Contacts.Create)
	p.Get("/edit_contact/:id", d.Contacts.Get)
	p.Put("/edit_contact/:id", d.Contacts.Update)
	p.Get("/contact/:id", d.Contacts.Get)
	p.Post("/merge_contacts", d.Contacts.Merge)
	p.Delete("/remove_contact/:id", d.Contacts.MoveToTrash)

	p.Get("/trash", d.Trash.List)
	p.Post("/restore_contact/:id", d.Trash.Restore)
	p.Delete("/delete_permanently/:id", d.Trash.DeletePermanently)
	p.Delete("/empty_trash", d.Trash.Empty)

	p.Post("/create_label", d.Labels.Create)
	p.Get("/get_labels", d.Labels.List)
	p.Delete("/delete_label", d.Labels.Delete)
	p.Put("/edit_label", d.Labels.Edit)
}

// chain returns a function prefixing a handler with the non-nil middleware.
func chain(mw ...fiber.Handler) func(fiber.Handler) []fiber.Handler {
	var pre []fiber.Handler
	for _, h := range mw {
		if h != nil {
			pre = append(pre, h)
		}
	}
	return func(h fiber.Handler) []fiber.Handler {
		out := make([]fiber.Handler, 0, len(pre)+1)
		return append(append(out, pre...), h)
	}
}

// guarded registers each route behind the same middleware without a
// prefix-wide Use, so unknown paths still 404 instead of 401.
type guarded struct {
	r    fiber.Router
	with func(fiber.Handler) []fiber.Handler
}

func (g *guarded) Get(path string, h fiber.Handler)    { g.r.Get(path, g.with(h)...) }
func (g *guarded) Post(path string, h fiber.Handler)   { g.r.Post(path, g.with(h)...) }
func (g *guarded) Put(path string, h fiber.Handler)    { g.r.Put(path, g.with(h)...) }
func (g *guarded) Delete(path string, h fiber.Handler) { g.r.Delete(path, g.with(h)...) }
