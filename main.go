package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/testwork/bookadmin/config"
	"github.com/testwork/bookadmin/database"
	"github.com/testwork/bookadmin/logger"
	"github.com/testwork/bookadmin/web"
	"github.com/testwork/bookadmin/web/service"
)

func initDB() error {
	cfg, err := config.LoadDatabaseConfig(config.GetConfigPath())
	if err != nil {
		return err
	}
	return database.InitDB(cfg)
}

func runWebServer() {
	log.Printf("%v %v", config.GetName(), config.GetVersion())

	level, err := logger.ParseLevel(config.GetLogLevel())
	if err != nil {
		log.Fatal(err)
	}
	logger.InitLogger(level)
	defer logger.CloseLogger()

	mode, err := config.GetAuthMode()
	if err != nil {
		log.Fatal(err)
	}

	if err := initDB(); err != nil {
		log.Fatal(err)
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warning("close database err:", err)
		}
	}()

	server := web.NewServer(mode)
	if err := server.Start(); err != nil {
		log.Println(err)
		return
	}

	sigCh := make(chan os.Signal, 1)
	// Trap shutdown signals
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGHUP:
			logger.Info("Received SIGHUP signal. Restarting server...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			server = web.NewServer(mode)
			if err := server.Start(); err != nil {
				log.Println(err)
				return
			}
		default:
			logger.Info("Shutting down server...")
			if err := server.Stop(); err != nil {
				logger.Warning("stop server err:", err)
			}
			return
		}
	}
}

func migrateDb() {
	if err := initDB(); err != nil {
		log.Fatal(err)
	}
	defer database.CloseDB()
	fmt.Println("Migration done!")
}

func resetSetting() {
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}
	if err := settingService.ResetSettings(); err != nil {
		fmt.Println("reset setting failed:", err)
	} else {
		fmt.Println("reset setting success")
	}
}

func showSetting() {
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}
	allSetting, err := settingService.GetAllSetting()
	if err != nil {
		fmt.Println("get current settings failed, error info:", err)
		return
	}
	mode, err := config.GetAuthMode()
	if err != nil {
		fmt.Println(err)
	}
	fmt.Println("current panel settings as follows:")
	fmt.Println("auth mode:", mode)
	fmt.Println("listen:", allSetting.WebListen)
	fmt.Println("port:", allSetting.WebPort)
	fmt.Println("session max age (minutes):", allSetting.SessionMaxAge)
	fmt.Println("page size:", allSetting.PageSize)
	fmt.Println("time location:", allSetting.TimeLocation)
	fmt.Println("checkpoint cron:", allSetting.CheckpointCron)
}

type settingUpdate struct {
	port          int
	listen        string
	sessionMaxAge int
	pageSize      int
	timeLocation  string
	email         string
	password      string
}

func updateSetting(u settingUpdate) {
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	settingService := service.SettingService{}

	if u.port > 0 {
		if err := settingService.SetPort(u.port); err != nil {
			fmt.Println("set port failed:", err)
		} else {
			fmt.Printf("set port %v success\n", u.port)
		}
	}
	if u.listen != "" {
		if err := settingService.SetListen(u.listen); err != nil {
			fmt.Println("set listen failed:", err)
		} else {
			fmt.Printf("set listen %v success\n", u.listen)
		}
	}
	if u.sessionMaxAge >= 0 {
		if err := settingService.SetSessionMaxAge(u.sessionMaxAge); err != nil {
			fmt.Println("set session max age failed:", err)
		} else {
			fmt.Printf("set session max age %v success\n", u.sessionMaxAge)
		}
	}
	if u.pageSize > 0 {
		if err := settingService.SetPageSize(u.pageSize); err != nil {
			fmt.Println("set page size failed:", err)
		} else {
			fmt.Printf("set page size %v success\n", u.pageSize)
		}
	}
	if u.timeLocation != "" {
		if err := settingService.SetTimeLocation(u.timeLocation); err != nil {
			fmt.Println("set time location failed:", err)
		} else {
			fmt.Printf("set time location %v success\n", u.timeLocation)
		}
	}
	if u.email != "" || u.password != "" {
		userService := service.UserService{}
		if err := userService.UpdateFirstUser(u.email, u.password); err != nil {
			fmt.Println("set email and password failed:", err)
		} else {
			fmt.Println("set email and password success")
		}
	}
}

func addUser(name, email, password string) {
	if err := initDB(); err != nil {
		fmt.Println(err)
		return
	}
	defer database.CloseDB()

	userService := service.UserService{}
	user, err := userService.AddUser(name, email, password)
	if err != nil {
		fmt.Println("add user failed:", err)
		return
	}
	fmt.Printf("user #%d <%s> added\n", user.Id, *user.Email)
}

func main() {
	if err := config.LoadEnv(); err != nil {
		fmt.Println("load .env failed:", err)
	}

	var rootCmd = &cobra.Command{
		Use: config.GetName(),
	}

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the web server",
		Run: func(cmd *cobra.Command, args []string) {
			runWebServer()
		},
	}

	var migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Run: func(cmd *cobra.Command, args []string) {
			migrateDb()
		},
	}

	var settingCmd = &cobra.Command{
		Use:   "setting",
		Short: "Set settings",
	}

	var resetCmd = &cobra.Command{
		Use:   "reset",
		Short: "Reset all settings",
		Run: func(cmd *cobra.Command, args []string) {
			resetSetting()
		},
	}

	var showCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current settings",
		Run: func(cmd *cobra.Command, args []string) {
			showSetting()
		},
	}

	var updateCmd = &cobra.Command{
		Use:   "update",
		Short: "Update settings",
		Run: func(cmd *cobra.Command, args []string) {
			var u settingUpdate
			u.port, _ = cmd.Flags().GetInt("port")
			u.listen, _ = cmd.Flags().GetString("listen")
			u.sessionMaxAge, _ = cmd.Flags().GetInt("sessionMaxAge")
			u.pageSize, _ = cmd.Flags().GetInt("pageSize")
			u.timeLocation, _ = cmd.Flags().GetString("timeLocation")
			u.email, _ = cmd.Flags().GetString("email")
			u.password, _ = cmd.Flags().GetString("password")
			updateSetting(u)
		},
	}

	updateCmd.Flags().Int("port", 0, "set panel port")
	updateCmd.Flags().String("listen", "", "set panel listen address")
	updateCmd.Flags().Int("sessionMaxAge", -1, "set session max age in minutes, 0 for browser session")
	updateCmd.Flags().Int("pageSize", 0, "set rows per admin list page")
	updateCmd.Flags().String("timeLocation", "", "set scheduler time zone")
	updateCmd.Flags().String("email", "", "set email of the demo identity")
	updateCmd.Flags().String("password", "", "set password of the demo identity")

	settingCmd.AddCommand(resetCmd, showCmd, updateCmd)

	var userCmd = &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}

	var addCmd = &cobra.Command{
		Use:   "add",
		Short: "Add an active user",
		Run: func(cmd *cobra.Command, args []string) {
			name, _ := cmd.Flags().GetString("name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			addUser(name, email, password)
		},
	}

	addCmd.Flags().String("name", "", "display name")
	addCmd.Flags().String("email", "", "login email")
	addCmd.Flags().String("password", "", "login password")
	_ = addCmd.MarkFlagRequired("email")
	_ = addCmd.MarkFlagRequired("password")

	userCmd.AddCommand(addCmd)

	rootCmd.AddCommand(runCmd, migrateCmd, settingCmd, userCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
