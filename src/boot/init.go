package boot

import (
	"context"
	"log"
	"starcall/src/common"
	"starcall/src/config"
	"starcall/src/db"
	"starcall/src/lib"
	"starcall/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Celebrity{},
		&models.Booking{},
		&models.Tip{},
		&models.Review{},
		&models.Payout{},
		&models.TrailLog{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func reconcileJob() {
	settled, err := common.ReconcilePendingTransfers(context.Background())
	if err != nil {
		log.Printf("[Reconciler] run failed: %s\n", err.Error())
		return
	}
	if settled > 0 {
		log.Printf("[Reconciler] settled %d orders\n", settled)
	}
}

// InitScheduler registers the recurring jobs and starts the scheduler.
func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	id, err := lib.CreateCronJob("reconcile-transfers", reconcileJob, config.ReconcileInterval())
	if err != nil {
		log.Printf("Error scheduling reconciler: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: reconcile-transfers %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while shutting stopping Scheduler. Check logs for info")
		return
	}
}

func InitConsumers(ctx context.Context) {
	common.SQSConsumers(ctx)
}
