package main

import (
	"coursemanager/config"
	"coursemanager/controllers/attendance"
	"coursemanager/database"
	"coursemanager/routers"
	"coursemanager/utils"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	config.LoadConfig()
	utils.InitErrorReporter(config.AppConfig)
	defer utils.CloseErrorReporter()

	database.ConnectDb()

	// Attendance expiry sweep
	scheduler := utils.NewAttendanceScheduler(database.Database.Db, config.AppConfig.AttendanceSweepSpec, nil)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start attendance scheduler: %v", err)
	}
	attendanceController.Sweeper = scheduler

	app := routers.NewApp()

	go func() {
		log.Printf("Server is running on port %s", config.AppConfig.Port)
		if err := app.Listen(":" + config.AppConfig.Port); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	<-scheduler.Stop().Done()
	if err := app.Shutdown(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}
