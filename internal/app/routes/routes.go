package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/yeegr/singular/internal/app/controllers"
	"github.com/yeegr/singular/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	actionController *controllers.ActionController,
	commentController *controllers.CommentController,
	contentController *controllers.ContentController,
	groupController *controllers.GroupController,
	processController *controllers.ProcessController,
	consumerController *controllers.ConsumerController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// --- Public routes ---
	// Published content is readable without a token; the view counter still
	// moves on every read.
	content := v1.Group("/content/:kind")
	{
		content.GET("", contentController.ListContent)
		content.GET("/:slug", contentController.GetContent)
	}

	groups := v1.Group("/groups")
	{
		groups.GET("/:slug", groupController.GetGroup)
	}

	consumers := v1.Group("/consumers")
	{
		consumers.GET("/:id", consumerController.GetConsumer)
	}

	// Comments and ledger entries against a target are public reads
	targets := v1.Group("/targets/:kind/:id")
	{
		targets.GET("/comments", commentController.ListComments)
		targets.GET("/actions/:action", actionController.ListActions)
	}

	// --- Authenticated routes ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())
	{
		// Interaction ledger
		targetsAuth := authenticated.Group("/targets/:kind/:id")
		{
			targetsAuth.POST("/actions/:action", actionController.RecordAction)
			targetsAuth.DELETE("/actions/:action", actionController.RetractAction)
			targetsAuth.GET("/actions/:action/status", actionController.GetActionStatus)
			targetsAuth.POST("/comments", commentController.CreateComment)
		}

		comments := authenticated.Group("/comments")
		{
			comments.PUT("/:id", commentController.UpdateComment)
			comments.DELETE("/:id", commentController.DeleteComment)
		}

		// Content lifecycle
		contentAuth := authenticated.Group("/content/:kind")
		{
			contentAuth.POST("", contentController.CreateContent)
			contentAuth.GET("/:slug/own", contentController.GetOwnContent)
			contentAuth.POST("/:slug/submit", contentController.SubmitContent)
			contentAuth.DELETE("/:slug", contentController.DeleteContent)
		}

		// Groups
		groupsAuth := authenticated.Group("/groups")
		{
			groupsAuth.POST("", groupController.CreateGroup)
			groupsAuth.PUT("/:slug", groupController.UpdateGroup)
			groupsAuth.DELETE("/:slug", groupController.DeleteGroup)
			groupsAuth.POST("/:slug/members", groupController.JoinGroup)
			groupsAuth.POST("/:slug/members/add", groupController.AddMember)
			groupsAuth.DELETE("/:slug/members/me", groupController.LeaveGroup)
			groupsAuth.DELETE("/:slug/members/:userKind/:userId", groupController.KickMember)
			groupsAuth.POST("/:slug/manager", groupController.TransferManager)
		}

		// Workflow; decisions are platform-side operations
		processes := authenticated.Group("/processes")
		{
			processes.GET("/:id", processController.GetProcess)
			processes.POST("/:id/cancel", processController.CancelProcess)

			platformOnly := processes.Group("")
			platformOnly.Use(authMiddleware.PlatformOnly())
			{
				platformOnly.POST("/:id/activities", processController.AddActivity)
				platformOnly.POST("/:id/finalize", processController.FinalizeProcess)
			}
		}

		activities := authenticated.Group("/activities")
		activities.Use(authMiddleware.PlatformOnly())
		{
			activities.POST("/:id/claim", processController.ClaimActivity)
			activities.POST("/:id/complete", processController.CompleteActivity)
		}
	}
}
