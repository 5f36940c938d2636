package router

import (
	authsvc "codmsocial-backend/internal/application/auth"
	emailsvc "codmsocial-backend/internal/application/emails"
	invsvc "codmsocial-backend/internal/application/invitations"
	membersvc "codmsocial-backend/internal/application/members"
	orgsvc "codmsocial-backend/internal/application/org"
	presencesvc "codmsocial-backend/internal/application/presence"
	"codmsocial-backend/internal/config"
	authhandler "codmsocial-backend/internal/interfaces/handlers/auth"
	healthhandler "codmsocial-backend/internal/interfaces/handlers/health"
	invhandler "codmsocial-backend/internal/interfaces/handlers/invitations"
	memberhandler "codmsocial-backend/internal/interfaces/handlers/members"
	orghandler "codmsocial-backend/internal/interfaces/handlers/org"
	presencehandler "codmsocial-backend/internal/interfaces/handlers/presence"
	"codmsocial-backend/internal/middleware"
	"codmsocial-backend/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with global middleware and every route.
// db and rdb must be open.
func CreateApp(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.NewErrorHandler(rdb),
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
		AllowLocalhost: !cfg.IsProduction(),
	}))
	app.Use(middleware.Session(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.HealthMarker(rdb))

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &gormDBPinger{db: db},
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Post("/health/reset", hh.Reset)

	sessionCfg := middleware.SessionConfig{
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}

	var emailSender emailsvc.Sender
	if cfg.SendinblueAPIKey != "" {
		emailSender = &emailsvc.BrevoClient{APIKey: cfg.SendinblueAPIKey, MailFrom: cfg.MailFrom}
	}

	as := &authsvc.Service{DB: db}
	os := &orgsvc.Service{DB: db, DefaultMaxMembers: cfg.DefaultMaxMembers}
	ms := &membersvc.Service{DB: db}
	is := &invsvc.Service{DB: db, EmailSender: emailSender, InviteBaseURL: cfg.InviteBaseURL}
	ps := &presencesvc.Service{Rdb: rdb, TTL: cfg.PresenceTTL, TypingTTL: cfg.TypingTTL}

	api := app.Group("/api/v1")

	// Auth
	ah := &authhandler.Handlers{UserFinder: as, Registrar: as, Rdb: rdb, Config: sessionCfg}
	authGroup := api.Group("/auth")
	authGroup.Post("/register", ah.Register)
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)
	authGroup.Delete("/sessions", ah.LogoutAll)

	member := middleware.LoadMembership(db)

	// Orgs
	oh := &orghandler.Handlers{Service: os, Members: ms}
	og := api.Group("/orgs", middleware.RequireAuth())
	og.Post("/", oh.CreateOrg)
	og.Get("/", oh.ListOrgs)
	og.Get("/slug/:slug", oh.GetOrgBySlug)
	og.Get("/:orgID", oh.GetOrg)
	og.Patch("/:orgID/settings", member, middleware.AuthorizePermission(constants.ManageOrganization), oh.UpdateSettings)
	og.Post("/:orgID/transfer-ownership", member, oh.TransferOwnership)

	// Members
	mh := &memberhandler.Handlers{Service: ms}
	og.Post("/:orgID/join", mh.Join)
	og.Post("/:orgID/withdraw", mh.Withdraw)
	og.Post("/:orgID/leave", member, mh.Leave)
	og.Get("/:orgID/members", member, mh.ListMembers)
	og.Get("/:orgID/members/me", mh.MyMembership)
	og.Post("/:orgID/members/approve", member, mh.Approve)
	og.Post("/:orgID/members/reject", member, mh.Reject)
	og.Patch("/:orgID/members/role", member, middleware.AuthorizePermission(constants.ChangeRoles), mh.ChangeRole)
	og.Delete("/:orgID/members", member, middleware.AuthorizePermission(constants.RemoveMembers), mh.Remove)
	og.Get("/:orgID/members/:userID/history", member, mh.History)

	// Invitations
	ih := &invhandler.Handlers{Service: is}
	canInvite := middleware.AuthorizePermission(constants.InviteMembers)
	og.Post("/:orgID/invites", member, canInvite, ih.SendInvite)
	og.Get("/:orgID/invites", member, canInvite, ih.ListInvites)
	og.Patch("/:orgID/invites/:inviteID/cancel", member, canInvite, ih.CancelInvite)
	api.Post("/invitations/public/check-token", ih.CheckToken)
	api.Post("/invitations/accept", middleware.RequireAuth(), ih.AcceptInvite)

	// Presence
	ph := &presencehandler.Handlers{Service: ps}
	pg := api.Group("/presence", middleware.RequireAuth())
	pg.Post("/heartbeat", ph.Heartbeat)
	pg.Post("/disconnect", ph.Disconnect)
	pg.Get("/", ph.ListPresence)
	pg.Get("/:userID", ph.GetPresence)
	cg := api.Group("/chats/:chatID", middleware.RequireAuth())
	cg.Post("/typing", ph.StartTyping)
	cg.Delete("/typing", ph.StopTyping)
	cg.Get("/typing", ph.Typing)

	return app
}
