// Package web 嵌入并服务管理前端的构建产物
// 所有未命中 API 的页面路径回落到 index.html，由前端路由接管
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oa-suite-cn/oa-auth-backend/pkg/response"
)

//go:embed dist/*
var distFS embed.FS

// SPAConfig 前端服务配置
type SPAConfig struct {
	// DiskPath 非空且目录存在时优先从磁盘读取，便于前端联调时热更新
	DiskPath string
	// IndexFile 单页应用入口文件
	IndexFile string
	// APIPrefixes 以这些前缀开头的路径不做静态服务
	APIPrefixes []string
	// AssetMaxAge 指纹化静态资源的浏览器缓存秒数
	AssetMaxAge int
}

// DefaultSPAConfig 返回默认配置
func DefaultSPAConfig() *SPAConfig {
	return &SPAConfig{
		DiskPath:    "./web/dist",
		IndexFile:   "index.html",
		APIPrefixes: []string{"/api/", "/health"},
		AssetMaxAge: 86400 * 30,
	}
}

// SPAServer 单页应用静态服务
type SPAServer struct {
	config   *SPAConfig
	fs       http.FileSystem
	fromDisk bool
}

// NewSPAServer 创建前端静态服务
// 构建产物优先取磁盘目录，缺失时使用编译期嵌入的文件
func NewSPAServer(config *SPAConfig) *SPAServer {
	if config == nil {
		config = DefaultSPAConfig()
	}

	s := &SPAServer{config: config}

	if config.DiskPath != "" {
		if info, err := os.Stat(config.DiskPath); err == nil && info.IsDir() {
			s.fs = http.Dir(config.DiskPath)
			s.fromDisk = true
			return s
		}
	}

	sub, err := fs.Sub(distFS, "dist")
	if err != nil {
		// 既无磁盘目录也无嵌入产物，返回空目录服务
		s.fs = http.Dir(config.DiskPath)
		return s
	}
	s.fs = http.FS(sub)
	return s
}

// FromDisk 返回是否在磁盘联调模式
func (s *SPAServer) FromDisk() bool {
	return s.fromDisk
}

// isAPIPath 检查路径是否为后端接口
func (s *SPAServer) isAPIPath(path string) bool {
	for _, prefix := range s.config.APIPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// 静态资源扩展名
var assetExtensions = []string{
	".js", ".css", ".png", ".jpg", ".jpeg", ".gif", ".svg",
	".ico", ".woff", ".woff2", ".ttf", ".eot", ".map",
	".json", ".xml", ".txt",
}

// isAssetPath 检查路径是否为静态资源文件
func (s *SPAServer) isAssetPath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// serveAsset 服务静态资源
// 构建产物在 assets 目录下带内容指纹，可长期缓存；其余资源不缓存
func (s *SPAServer) serveAsset(c *gin.Context, path string) {
	if _, err := s.fs.Open(path); err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	if strings.HasPrefix(path, "/assets/") {
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d, immutable", s.config.AssetMaxAge))
	} else {
		c.Header("Cache-Control", "no-cache")
	}
	c.FileFromFS(path, s.fs)
}

// serveIndex 返回入口页面
// 入口页不缓存，前端发版后刷新即生效
// 不走 FileFromFS，避免 net/http 对 index.html 的 301 重定向
func (s *SPAServer) serveIndex(c *gin.Context) {
	file, err := s.fs.Open(s.config.IndexFile)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Header("Cache-Control", "no-cache")
	http.ServeContent(c.Writer, c.Request, s.config.IndexFile, stat.ModTime(), file)
}

// middleware 静态资源中间件，接口与非 GET 请求直接放行
func (s *SPAServer) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if s.isAPIPath(path) {
			c.Next()
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}
		if s.isAssetPath(path) {
			s.serveAsset(c, path)
			c.Abort()
			return
		}

		c.Next()
	}
}

// fallback 未注册路由的兜底处理
// 接口路径返回标准错误响应，页面路径统一回落到 index.html，
// /login、/403、/404 等前端页面由前端路由渲染
func (s *SPAServer) fallback() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		if s.isAPIPath(path) {
			response.Error(c, response.CodeRouteNotFound)
			return
		}
		if c.Request.Method != http.MethodGet {
			c.JSON(http.StatusMethodNotAllowed, response.Response{
				Code: response.CodeInvalidRequest,
				Msg:  "方法不允许",
			})
			return
		}

		s.serveIndex(c)
	}
}

// Mount 挂载前端静态服务到路由
func (s *SPAServer) Mount(router *gin.Engine) {
	router.Use(s.middleware())
	router.NoRoute(s.fallback())
}
