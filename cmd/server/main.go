package main

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oa-suite-cn/oa-auth-backend/internal/config"
	"github.com/oa-suite-cn/oa-auth-backend/internal/database"
	"github.com/oa-suite-cn/oa-auth-backend/internal/handler"
	"github.com/oa-suite-cn/oa-auth-backend/internal/middleware"
	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
	"github.com/oa-suite-cn/oa-auth-backend/internal/redis"
	"github.com/oa-suite-cn/oa-auth-backend/internal/repository"
	"github.com/oa-suite-cn/oa-auth-backend/internal/service"
	"github.com/oa-suite-cn/oa-auth-backend/pkg/response"
	"github.com/oa-suite-cn/oa-auth-backend/web"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库连接
	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer database.Close()
	log.Println("数据库连接成功")

	// 初始化 Redis 连接
	if err := redis.Init(&cfg.Redis); err != nil {
		log.Fatalf("初始化 Redis 失败: %v", err)
	}
	defer redis.Close()
	log.Println("Redis 连接成功")

	// 自动迁移数据库表
	if err := database.AutoMigrate(
		&model.User{},
		&model.Department{},
		&model.Role{},
		&model.PermissionNode{},
		&model.UserRole{},
		&model.RolePermission{},
		&model.DictType{},
		&model.DictEntry{},
	); err != nil {
		log.Fatalf("数据库迁移失败: %v", err)
	}
	log.Println("数据库迁移完成")

	logger := middleware.GetLogger()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(database.GetDB())
	deptRepo := repository.NewDepartmentRepository(database.GetDB())
	roleRepo := repository.NewRoleRepository(database.GetDB())
	permRepo := repository.NewPermissionRepository(database.GetDB())
	userRoleRepo := repository.NewUserRoleRepository(database.GetDB())
	dictRepo := repository.NewDictRepository(database.GetDB())

	// 生成 RSA 密钥对（生产环境应从配置文件加载）
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatalf("生成 RSA 密钥失败: %v", err)
	}

	// 权限缓存
	permCache := service.NewPermissionCache(redis.GetClient(), &service.PermissionCacheConfig{
		KeyPrefix:  cfg.Cache.KeyPrefix,
		UserSetTTL: cfg.Cache.UserSetTTL,
		DictTTL:    cfg.Cache.DictTTL,
	}, logger)

	// 初始化 Service
	authzService := service.NewAuthzService(userRoleRepo, permRepo, permCache, logger)
	rbacService := service.NewRBACService(roleRepo, permRepo, userRoleRepo, authzService)
	userService := service.NewUserService(userRepo, deptRepo)
	authService := service.NewAuthService(userRepo, deptRepo)
	deptService := service.NewDepartmentService(deptRepo)
	dictService := service.NewDictService(dictRepo, permCache, logger)
	tokenService := service.NewTokenService(&service.TokenServiceConfig{
		PrivateKey:    privateKey,
		PublicKey:     &privateKey.PublicKey,
		KeyID:         "key-1",
		Issuer:        cfg.JWT.Issuer,
		AccessExpiry:  cfg.JWT.AccessExpiry,
		RefreshExpiry: cfg.JWT.RefreshExpiry,
	})

	// 路由守卫：解析失败按会话失效处理，顺带清掉缓存的权限集合
	routeGuard := service.NewRouteGuard(authzService, &service.GuardConfig{
		LoginPath:     cfg.Guard.LoginPath,
		ForbiddenPath: cfg.Guard.ForbiddenPath,
		PublicPaths:   cfg.Guard.PublicPaths,
	}, func(ctx context.Context, userID string) {
		if err := authzService.InvalidateUserPermissions(ctx, userID); err != nil {
			log.Printf("清理用户 %s 权限缓存失败: %v", userID, err)
		}
	}, logger)

	// 初始化预置角色与权限目录
	if err := rbacService.InitDefaultRolesAndPermissions(context.Background()); err != nil {
		log.Fatalf("初始化预置角色权限失败: %v", err)
	}
	log.Println("预置角色与权限目录就绪")

	// 初始化 Handler
	authHandler := handler.NewAuthHandler(userService, authService, tokenService)
	userHandler := handler.NewUserHandler(userService)
	rbacHandler := handler.NewRBACHandler(rbacService, authzService)
	deptHandler := handler.NewDeptHandler(deptService)
	dictHandler := handler.NewDictHandler(dictService)
	guardHandler := handler.NewGuardHandler(routeGuard)

	// 设置 Gin 模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()

	// 全局中间件
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())

	// 健康检查
	router.GET("/health", func(c *gin.Context) {
		// 检查数据库连接
		dbStatus := "ok"
		if err := database.Ping(); err != nil {
			dbStatus = "error"
		}

		// 检查 Redis 连接
		redisStatus := "ok"
		redisClient := redis.GetClient()
		if redisClient == nil {
			redisStatus = "error"
		} else if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			redisStatus = "error"
		}

		response.Success(c, gin.H{
			"status":   "ok",
			"time":     time.Now().Format(time.RFC3339),
			"database": dbStatus,
			"redis":    redisStatus,
		})
	})

	// API 路由组
	api := router.Group("/api/v1")
	{
		api.GET("/ping", func(c *gin.Context) {
			response.Success(c, "pong")
		})

		// 认证路由（公开）
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			// 前端导航裁决，未登录也可调用
			auth.POST("/guard", middleware.OptionalJWTAuth(tokenService), guardHandler.CheckNavigation)
		}

		// 需要认证的路由
		authed := api.Group("")
		authed.Use(middleware.JWTAuth(tokenService))
		{
			authed.POST("/auth/logout", authHandler.Logout)
			authed.GET("/auth/me", authHandler.GetCurrentUser)
			authed.PUT("/auth/me", userHandler.UpdateCurrentUser)
			authed.POST("/auth/change-password", userHandler.ChangePassword)
			authed.GET("/auth/permissions", rbacHandler.GetCurrentUserPermissions)
			authed.GET("/auth/menus", rbacHandler.GetCurrentUserMenus)

			// 用户管理
			users := authed.Group("/users")
			{
				users.GET("", middleware.RequirePermission(authzService, "system:user:list"), userHandler.ListUsers)
				users.POST("", middleware.RequirePermission(authzService, "system:user:create"), userHandler.CreateUser)
				users.GET("/:id", middleware.RequirePermission(authzService, "system:user:list"), userHandler.GetUser)
				users.PUT("/:id", middleware.RequirePermission(authzService, "system:user:update"), userHandler.UpdateUser)
				users.DELETE("/:id", middleware.RequirePermission(authzService, "system:user:delete"), userHandler.DeleteUser)
				users.PUT("/:id/department", middleware.RequirePermission(authzService, "system:user:update"), userHandler.AssignDepartment)
				users.GET("/:id/roles", middleware.RequirePermission(authzService, "system:role:list"), rbacHandler.GetUserRoles)
				users.POST("/:id/roles", middleware.RequirePermission(authzService, "system:role:assign"), rbacHandler.AssignRole)
				users.DELETE("/:id/roles/:role_id", middleware.RequirePermission(authzService, "system:role:assign"), rbacHandler.RevokeRole)
			}

			// 角色管理
			roles := authed.Group("/roles")
			{
				roles.GET("", middleware.RequirePermission(authzService, "system:role:list"), rbacHandler.ListRoles)
				roles.POST("", middleware.RequirePermission(authzService, "system:role:create"), rbacHandler.CreateRole)
				roles.GET("/:id", middleware.RequirePermission(authzService, "system:role:list"), rbacHandler.GetRole)
				roles.PUT("/:id", middleware.RequirePermission(authzService, "system:role:update"), rbacHandler.UpdateRole)
				roles.DELETE("/:id", middleware.RequirePermission(authzService, "system:role:delete"), rbacHandler.DeleteRole)
				roles.GET("/:id/permissions", middleware.RequirePermission(authzService, "system:role:list"), rbacHandler.GetRolePermissions)
				roles.POST("/:id/permissions", middleware.RequirePermission(authzService, "system:role:grant"), rbacHandler.AddPermissionsToRole)
				roles.DELETE("/:id/permissions", middleware.RequirePermission(authzService, "system:role:grant"), rbacHandler.RemovePermissionsFromRole)
			}

			// 权限目录管理
			perms := authed.Group("/permissions")
			{
				perms.GET("", middleware.RequirePermission(authzService, "system:menu:list"), rbacHandler.ListPermissions)
				perms.GET("/tree", middleware.RequirePermission(authzService, "system:menu:list"), rbacHandler.GetPermissionTree)
				perms.POST("", middleware.RequirePermission(authzService, "system:menu:create"), rbacHandler.CreatePermission)
				perms.GET("/:id", middleware.RequirePermission(authzService, "system:menu:list"), rbacHandler.GetPermission)
				perms.DELETE("/:id", middleware.RequirePermission(authzService, "system:menu:delete"), rbacHandler.DeletePermission)
			}

			// 部门管理
			depts := authed.Group("/departments")
			{
				depts.GET("", deptHandler.ListDepts)
				depts.GET("/tree", deptHandler.GetDeptTree)
				depts.POST("", middleware.RequirePermission(authzService, "system:dept:create"), deptHandler.CreateDept)
				depts.GET("/:id", deptHandler.GetDept)
				depts.PUT("/:id", middleware.RequirePermission(authzService, "system:dept:update"), deptHandler.UpdateDept)
				depts.DELETE("/:id", middleware.RequirePermission(authzService, "system:dept:delete"), deptHandler.DeleteDept)
			}

			// 数据字典
			dicts := authed.Group("/dicts")
			{
				dicts.GET("/types", dictHandler.ListDictTypes)
				dicts.POST("/types", middleware.RequirePermission(authzService, "system:dict:manage"), dictHandler.CreateDictType)
				dicts.DELETE("/types/:code", middleware.RequirePermission(authzService, "system:dict:manage"), dictHandler.DeleteDictType)
				dicts.POST("/entries", middleware.RequirePermission(authzService, "system:dict:manage"), dictHandler.CreateDictEntry)
				dicts.PUT("/entries/:id", middleware.RequirePermission(authzService, "system:dict:manage"), dictHandler.UpdateDictEntry)
				dicts.DELETE("/entries/:id", middleware.RequirePermission(authzService, "system:dict:manage"), dictHandler.DeleteDictEntry)
				dicts.GET("/:code/entries", dictHandler.GetDictEntries)
			}
		}
	}

	// 前端静态资源（嵌入式 SPA）
	spa := web.NewSPAServer(web.DefaultSPAConfig())
	spa.Mount(router)

	// 创建 HTTP 服务器
	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		log.Printf("服务启动，监听地址: %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭，等待 5 秒
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务关闭失败: %v", err)
	}

	// 关闭数据库和 Redis 连接
	database.Close()
	redis.Close()

	log.Println("服务已关闭")
}
