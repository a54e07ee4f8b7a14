// Package main 数据库迁移工具
package main

import (
	"flag"
	"log"

	"github.com/oa-suite-cn/oa-auth-backend/internal/config"
	"github.com/oa-suite-cn/oa-auth-backend/internal/database"
	"github.com/oa-suite-cn/oa-auth-backend/internal/model"
)

func main() {
	// 命令行参数
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 加载配置
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.LoadFromFile(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 初始化数据库连接
	if err := database.Init(&cfg.Database); err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}
	defer database.Close()
	log.Println("数据库连接成功")

	// 执行迁移
	log.Println("开始执行数据库迁移...")

	// 迁移所有模型
	models := []any{
		&model.User{},
		&model.Department{},
		&model.Role{},
		&model.PermissionNode{},
		&model.UserRole{},
		&model.RolePermission{},
		&model.DictType{},
		&model.DictEntry{},
	}

	for _, m := range models {
		if err := database.AutoMigrate(m); err != nil {
			log.Fatalf("迁移失败: %v", err)
		}
	}

	log.Println("数据库迁移完成！")

	// 打印创建的表
	log.Println("已创建/更新的表:")
	log.Println("  - users (用户表)")
	log.Println("  - departments (部门表)")
	log.Println("  - roles (角色表)")
	log.Println("  - permission_nodes (权限目录表)")
	log.Println("  - user_roles (用户角色关联表)")
	log.Println("  - role_permissions (角色权限关联表)")
	log.Println("  - dict_types (字典类型表)")
	log.Println("  - dict_entries (字典条目表)")
}
