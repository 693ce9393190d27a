package models

import (
	"log"

	"github.com/nplaceworks/adrank_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{}, &Wallet{},
		&Campaign{}, &RankSnapshot{},
		&GuaranteeSlotRequest{}, &GuaranteeSlotNegotiation{},
		&GuaranteeSlot{}, &GuaranteeSlotHolding{}, &GuaranteeSlotSettlement{}, &GuaranteeSlotTransaction{},
		&Inquiry{}, &InquiryMessage{},
		&Notification{}, &Attachment{},
		&OutboxMessageRecord{}, &IdempotencyKey{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
