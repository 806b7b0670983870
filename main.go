package main

import (
	"Cadence/CronJobs"
	"Cadence/FiberConfig"
	"Cadence/Models"
	"log"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	Models.Connect()

	go func() {
		checker := CronJobs.NewAlertChecker(Models.DB, false)
		if err := checker.Start(); err != nil {
			log.Println("Failed to start alert checker:", err)
		}
	}()

	FiberConfig.FiberConfig()
}
