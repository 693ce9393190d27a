package main

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/nplaceworks/adrank_backend/config"
	"github.com/nplaceworks/adrank_backend/models"
	"github.com/nplaceworks/adrank_backend/utils"
	"github.com/nplaceworks/adrank_backend/workflow"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	businessMutexMap = make(map[string]*sync.Mutex)
	globalMutex      = &sync.Mutex{}
)

// RunSlotWorkflow starts a pull subscriber for deployments that are not
// behind a Pub/Sub push endpoint. The push handler at /pubsub and this
// consumer share ProcessMessage, so either delivery mode is safe.
func RunSlotWorkflow() error {
	logger := config.GetLogger()
	ctx := context.Background()
	client, err := config.GetClient(ctx)
	if err != nil {
		return err
	}
	topic, err := config.CreateTopicIfNotExists(client, os.Getenv("PUBSUB_TOPIC"))
	if err != nil {
		return err
	}
	sub, err := config.CreateSubscriptionIfNotExists(client, os.Getenv("PUBSUB_SUBSCRIPTION"), topic)
	if err != nil {
		return err
	}
	sub.ReceiveSettings.MaxOutstandingMessages = 10

	callback := func(ctx context.Context, msg *pubsub.Message) {
		m := config.PubSubMessage{}
		if err := json.Unmarshal(msg.Data, &m); err != nil {
			config.LogError(logger, "slotWorkflow.go", "RunSlotWorkflow", "Unmarshaling pubsub message", msg.Data, err)
			return
		}

		// Serialize per business within this instance; the advisory lock
		// in ProcessMessage covers cross-instance ordering.
		globalMutex.Lock()
		mutex, exists := businessMutexMap[m.BusinessId]
		if !exists {
			mutex = &sync.Mutex{}
			businessMutexMap[m.BusinessId] = mutex
		}
		globalMutex.Unlock()

		mutex.Lock()
		defer mutex.Unlock()

		correlationID := m.CorrelationId
		if correlationID == "" {
			correlationID = msg.ID
		}
		ctx = utils.SetBusinessIdInContext(ctx, m.BusinessId)
		ctx = utils.SetUserIdInContext(ctx, 0)
		ctx = utils.SetUserNameInContext(ctx, "System")
		ctx = utils.SetCorrelationIdInContext(ctx, correlationID)
		if err := ProcessMessage(ctx, logger, m); err != nil {
			logger.WithFields(logrus.Fields{
				"field":          "RunSlotWorkflow",
				"business_id":    m.BusinessId,
				"reference_type": m.ReferenceType,
				"reference_id":   m.ReferenceId,
				"message_id":     msg.ID,
			}).Error("pubsub processing failed: " + err.Error())
			msg.Nack()
			return
		}
		msg.Ack()
	}

	go func() {
		if err := sub.Receive(ctx, callback); err != nil {
			config.LogError(logger, "slotWorkflow.go", "RunSlotWorkflow", "Failed to receive messages", nil, err)
		}
	}()

	return nil
}

// ProcessMessage runs one workflow message inside a single DB transaction.
// Per-business ordering is enforced with a MySQL advisory lock, and the
// DB-backed idempotency key makes redelivery a no-op.
func ProcessMessage(ctx context.Context, logger *logrus.Logger, m config.PubSubMessage) error {
	db := config.GetDB()
	return db.Transaction(func(tx *gorm.DB) error {
		// Enforce strict per-business ordering across instances.
		if err := workflow.AcquireBusinessPostingLock(tx.WithContext(ctx), m.BusinessId); err != nil {
			return err
		}
		defer workflow.ReleaseBusinessPostingLock(tx.WithContext(ctx), m.BusinessId)

		handlerName := m.ReferenceType
		messageId := strconv.Itoa(m.ID)

		skip, err := workflow.BeginIdempotency(tx.WithContext(ctx), m.BusinessId, handlerName, messageId)
		if err != nil {
			return err
		}
		if skip {
			return nil
		}

		if err := ProcessWorkflow(tx.WithContext(ctx), logger, m); err != nil {
			_ = workflow.MarkIdempotencyFailed(tx.WithContext(ctx), m.BusinessId, handlerName, messageId, err)
			return err
		}
		if err := workflow.MarkIdempotencySucceeded(tx.WithContext(ctx), m.BusinessId, handlerName, messageId); err != nil {
			return err
		}

		now := time.Now().UTC()
		_ = tx.WithContext(ctx).Model(&models.OutboxMessageRecord{}).
			Where("id = ?", m.ID).
			Updates(map[string]interface{}{
				"is_processed": true,
				"processed_at": &now,
			}).Error
		return nil
	})
}

// ProcessWorkflow dispatches a message to the handler that owns its
// reference type. Unknown types are dropped so poisoned messages cannot
// loop forever.
func ProcessWorkflow(tx *gorm.DB, logger *logrus.Logger, msg config.PubSubMessage) error {
	switch msg.ReferenceType {
	case string(models.SlotReferenceTypePurchase):
		return workflow.ProcessSlotPurchaseWorkflow(tx, logger, msg)
	case string(models.SlotReferenceTypeSettlement):
		return workflow.ProcessSlotSettlementWorkflow(tx, logger, msg)
	case string(models.SlotReferenceTypeRefund):
		return workflow.ProcessSlotRefundWorkflow(tx, logger, msg)
	case string(models.SlotReferenceTypeRequestExpiry):
		return workflow.ProcessRequestExpiryWorkflow(tx, logger, msg)
	case string(models.SlotReferenceTypeNotification):
		return workflow.ProcessNotificationWorkflow(tx, logger, msg)
	}
	if logger != nil {
		logger.WithFields(logrus.Fields{
			"field":          "ProcessWorkflow",
			"business_id":    msg.BusinessId,
			"reference_type": msg.ReferenceType,
			"message_id":     msg.ID,
		}).Warn("unknown reference type; dropping message")
	}
	return nil
}
