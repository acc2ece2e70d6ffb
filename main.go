// @title QBank 题库后端 API
// @version 1.0
// @description 题库管理与随机组卷测验服务。
// @termsOfService http://swagger.io/terms/

// @contact.name API支持
// @contact.url http://www.swagger.io/support
// @contact.email support@swagger.io

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"log"
	"os"
	"qbank_backend/internal/app"
	"qbank_backend/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "qbank",
		Short: "题库与测验后端服务",
	}
	root.PersistentFlags().StringP("config", "c", "configs", "配置文件所在目录")

	serve := serveCmd()
	root.AddCommand(serve, migrateCmd())

	// 未指定子命令时默认启动服务
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE:  runServe,
	}
	cmd.Flags().Bool("migrate", false, "启动时强制执行数据库迁移（即使是 release 模式）")
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "只执行数据库迁移，完成后退出",
		RunE:  runMigrate,
	}
	f := cmd.Flags()
	f.String("admin-email", "", "同时创建或提升该邮箱为管理员")
	f.String("admin-password", "", "管理员账号密码（至少 6 位）")
	return cmd
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dir, _ := cmd.Flags().GetString("config")
	return config.LoadConfig(dir)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return err
	}
	cfg.ForceMigrate, _ = cmd.Flags().GetBool("migrate")

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Printf("Failed to initialize application: %v", err)
		return err
	}

	application.Run()
	return nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		return err
	}
	cfg.MigrateOnly = true

	email, _ := cmd.Flags().GetString("admin-email")
	password, _ := cmd.Flags().GetString("admin-password")
	if err := app.Migrate(cmd.Context(), cfg, email, password); err != nil {
		return err
	}

	log.Println("数据库迁移完成，退出程序")
	return nil
}
