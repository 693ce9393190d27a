package workflow

import (
	"context"
	"time"

	"github.com/nplaceworks/adrank_backend/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ExpirySweeper polls for guarantee-slot requests past their deadline and
// expires them one by one. Each expiry is its own transaction, so a
// single bad row cannot wedge the sweep.
type ExpirySweeper struct {
	DB           *gorm.DB
	Logger       *logrus.Logger
	PollInterval time.Duration
	BatchSize    int
}

func NewExpirySweeper(db *gorm.DB, logger *logrus.Logger) *ExpirySweeper {
	return &ExpirySweeper{
		DB:           db,
		Logger:       logger,
		PollInterval: time.Minute,
		BatchSize:    100,
	}
}

func (s *ExpirySweeper) Run(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.sweepOnce(ctx)
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.PollInterval):
		}
	}
}

func (s *ExpirySweeper) sweepOnce(ctx context.Context) {
	now := time.Now()
	ids, err := models.FindExpirableRequestIds(ctx, now, s.BatchSize)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithFields(logrus.Fields{
				"field": "ExpirySweeper",
			}).Error("find expirable requests: " + err.Error())
		}
		return
	}
	for _, id := range ids {
		if err := models.ExpireSlotRequest(ctx, id, now); err != nil {
			if s.Logger != nil {
				s.Logger.WithFields(logrus.Fields{
					"field":      "ExpirySweeper",
					"request_id": id,
				}).Error("expire request: " + err.Error())
			}
		}
	}
}
