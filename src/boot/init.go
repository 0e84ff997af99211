package boot

import (
	"eventify/src/common"
	"eventify/src/db"
	"eventify/src/lib"
	"eventify/src/models"
	"log"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Category{},
		&models.Ticket{},
		&models.Booking{},
		&models.Payment{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	common.StartSweep()
	sched.Start()
	log.Printf("Scheduler started with %d job(s) in queue\n", len(sched.Jobs()))
}
