package router

import (
	"reelgo/internal/api/handler"
	"reelgo/internal/api/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers 路由装配需要的全部 handler
// Admin 是管理员校验中间件，挂在需要管理员身份的子路由上
type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Relation *handler.RelationHandler
	Feed     *handler.FeedHandler
	Video    *handler.VideoHandler
	Comment  *handler.CommentHandler
	Ad       *handler.AdHandler
	Search   *handler.SearchHandler
	Admin    gin.HandlerFunc
}

// Setup 注册 /api/v1 下的全部业务路由
func Setup(r *gin.Engine, h Handlers) {
	v1 := r.Group("/api/v1")

	registerAuth(v1, h.Auth)
	registerUsers(v1, h.User, h.Admin)
	registerRelations(v1, h.Relation)
	registerVideos(v1, h.Feed, h.Video)
	registerComments(v1, h.Comment)
	registerAds(v1, h.Ad, h.Admin)
	registerSearch(v1, h.Search, h.Admin)
}

func registerAuth(v1 *gin.RouterGroup, h *handler.AuthHandler) {
	auth := v1.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)

	authed := auth.Group("", middleware.AuthRequired())
	authed.POST("/logout", h.Logout)
	authed.GET("/me", h.Me)
}

func registerUsers(v1 *gin.RouterGroup, h *handler.UserHandler, admin gin.HandlerFunc) {
	users := v1.Group("/users", middleware.AuthRequired())
	users.GET("/me", h.GetMe)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)

	// 管理端
	adm := users.Group("", admin)
	adm.GET("", h.ListUsers)
	adm.DELETE("/:id", h.DeleteUser)
	adm.POST("/:id/restore", h.RestoreUser)
	adm.POST("/:id/set-admin", h.SetAdmin)
}

func registerRelations(v1 *gin.RouterGroup, h *handler.RelationHandler) {
	relations := v1.Group("/relations", middleware.AuthRequired())
	relations.POST("/follow/:id", h.Follow)
	relations.POST("/unfollow/:id", h.Unfollow)

	relations.GET("/following/:id", h.GetFollowing)
	relations.GET("/followers/:id", h.GetFollowers)
	relations.GET("/following/:id/status", h.GetFollowStatus)

	relations.GET("/following/my/list", h.GetMyFollowing)
	relations.GET("/followers/my/list", h.GetMyFollowers)
	relations.GET("/mutual", h.GetMutualFollows)

	relations.POST("/batch/status", h.BatchFollowStatus)
}

func registerVideos(v1 *gin.RouterGroup, feed *handler.FeedHandler, h *handler.VideoHandler) {
	videos := v1.Group("/videos")

	// 推荐流匿名可访问，登录用户透传身份；广告拼接取决于会话标识
	videos.GET("/feed", middleware.AuthOptional(), feed.GetFeed)

	// 详情和作者主页对匿名开放，私有视频由服务层过滤；点赞点踩是匿名计数
	videos.GET("/:id", middleware.AuthOptional(), h.GetDetail)
	videos.GET("/user/:id", middleware.AuthOptional(), h.GetUserVideos)
	videos.POST("/:id/like", h.Like)
	videos.POST("/:id/dislike", h.Dislike)

	authed := videos.Group("", middleware.AuthRequired())
	authed.POST("/upload", h.Upload)
	authed.GET("/my/list", h.GetMyVideos)
	authed.PUT("/:id", h.UpdateVideo)
	authed.DELETE("/:id", h.DeleteVideo)
}

func registerComments(v1 *gin.RouterGroup, h *handler.CommentHandler) {
	comments := v1.Group("/comments")

	// 评论树和回复列表公开可读，点赞为匿名计数
	comments.GET("/video/:video_id", h.GetTree)
	comments.GET("/:id/replies", h.GetReplies)
	comments.POST("/:id/like", h.Like)

	authed := comments.Group("", middleware.AuthRequired())
	authed.POST("/video/:video_id", h.Create)
	authed.PUT("/:id", h.Update)
	authed.DELETE("/:id", h.Delete)
	authed.GET("/my/list", h.ListMyComments)
}

func registerAds(v1 *gin.RouterGroup, h *handler.AdHandler, admin gin.HandlerFunc) {
	ads := v1.Group("/ads")

	// 随机取广告和展示/点击上报公开，登录用户透传身份
	ads.GET("/random", middleware.AuthOptional(), h.GetRandomAd)
	ads.POST("/views", middleware.AuthOptional(), h.RecordView)
	ads.POST("/:id/click", h.Click)

	// 投放管理
	adm := ads.Group("", middleware.AuthRequired(), admin)
	adm.GET("", h.ListAds)
	adm.POST("", h.CreateAd)
	adm.GET("/:id", h.GetAd)
	adm.PUT("/:id", h.UpdateAd)
	adm.DELETE("/:id", h.DeleteAd)
}

func registerSearch(v1 *gin.RouterGroup, h *handler.SearchHandler, admin gin.HandlerFunc) {
	search := v1.Group("/search")
	search.GET("/videos", h.SearchVideos)
	search.POST("/sync", middleware.AuthRequired(), admin, h.RebuildIndex)
}
