package router

import (
	"time"

	"github.com/delta/research-portal/internal/handlers"
	"github.com/delta/research-portal/internal/middleware"
	"github.com/delta/research-portal/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter() *gin.Engine {
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		user := api.Group("/user")
		{
			user.POST("/login", handlers.Login)
			user.POST("/logout", middleware.RequireSession(), handlers.Logout)
			user.POST("/register", handlers.Register)
			user.GET("/verify", handlers.VerifyEmail)
			user.POST("/pass_reset", handlers.RequestPasswordReset)
			user.POST("/pass_update", handlers.SubmitNewPassword)
			user.GET("/is_staff", middleware.AnnotateStaff(), handlers.GetIsStaff)
			user.GET("/admin_level", middleware.RequireSession(), handlers.GetAdminLevel)
		}

		api.GET("/projects", handlers.ListProjects)

		project := api.Group("/project")
		{
			project.GET("/id", middleware.OptionalSession(), middleware.ResolveProjectAccess(), handlers.GetProject)
			project.GET("/privilege", middleware.OptionalSession(), middleware.ResolveProjectAccess(), handlers.GetPrivilege)
			project.GET("/search", handlers.SearchProjects)
			project.POST("/create", middleware.AnnotateStaff(), handlers.CreateProject)
			project.POST("/write", middleware.RequireSession(), middleware.ResolveProjectAccess(), handlers.WriteProject)
			project.POST("/edit", middleware.RequireSession(), middleware.ResolveProjectAccess(), handlers.EditProject)
		}

		api.GET("/admin_users", handlers.ListStaff)

		adminUser := api.Group("/admin_user")
		{
			adminUser.GET("/search", handlers.SearchStaff)
			adminUser.GET("/profile", handlers.GetProfile)
			adminUser.POST("/update_roles", middleware.RequireSession(), middleware.ResolveProjectAccess(), handlers.AssignRole)
			adminUser.POST("/add_members", middleware.RequireSession(), middleware.ResolveProjectAccess(), handlers.AddMember)
		}

		api.GET("/department", handlers.ListDepartments)
		api.GET("/aor", handlers.ListAreasOfResearch)
		api.GET("/center", handlers.ListLabs)
		api.GET("/coe", handlers.ListCoes)
	}

	return r
}
