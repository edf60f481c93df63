package common

import (
	"context"
	"fmt"
	"log"
	"os"
	awslib "starcall/src/lib/aws"
	"starcall/src/lib/mailer"
	"starcall/src/models"
	"starcall/src/types"
	"starcall/src/utils"

	"gorm.io/gorm"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   uint
	Role types.Role
}

func (a *Actor) authenticated() bool {
	return a != nil && a.ID > 0
}

func (a *Actor) isAdmin() bool {
	return a.authenticated() && a.Role == types.ROLE_ADMIN
}

func (a *Actor) label() string {
	if a == nil {
		return "anonymous"
	}
	return fmt.Sprintf("%s:%d", a.Role, a.ID)
}

const systemReconciler = "system:reconciler"

func recordTrail(tx *gorm.DB, bookingID uint, kind string, from string, to string, initiator string, note *string) error {
	return tx.Create(&models.TrailLog{
		BookingID:  bookingID,
		Type:       kind,
		FromStatus: from,
		ToStatus:   to,
		Initiator:  initiator,
		Note:       note,
	}).Error
}

// SQSConsumers starts the queue workers. The email outbox is drained into SMTP.
func SQSConsumers(ctx context.Context) {
	emailQueue := os.Getenv("EMAIL_QUEUE")
	if emailQueue == "" {
		log.Println("EMAIL_QUEUE not set, emails are sent inline")
		return
	}
	awslib.NewSQSConsumer(utils.WithSuffix(emailQueue), mailer.DeliverQueuedMessage).Listen(ctx)
}
